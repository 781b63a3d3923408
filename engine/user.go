package engine

import (
	"github.com/huddlechat/huddle/errors"
	"github.com/huddlechat/huddle/types"
)

// CreateUser adds a new identity record. Usernames are unique across the
// collection.
func (e *Engine) CreateUser(u *types.User) (*types.User, error) {
	if u.Id == "" || u.Username == "" {
		return nil, errors.Validation("Required fields: id, username")
	}
	if _, taken := e.users.GetByUsername(u.Username); taken {
		return nil, errors.Validation("Username already exists. Please choose another one.")
	}
	for _, list := range []*types.StringList{
		&u.Roles, &u.Groups, &u.InterestGroups, &u.Channels,
		&u.InterestChannels, &u.BannedChannels, &u.ReportedInGroups,
	} {
		if *list == nil {
			*list = types.StringList{}
		}
	}
	if err := e.users.Add(u); err != nil {
		return nil, err
	}
	e.log.Info("user created", "user", u.Id, "username", u.Username)
	return u, nil
}

func (e *Engine) ListUsers() []*types.User { return e.users.List() }

func (e *Engine) GetUser(userId string) (*types.User, error) {
	return e.users.Get(userId)
}

// UpdateRole replaces the user's roles with the single given role.
func (e *Engine) UpdateRole(userId, role string) (*types.User, error) {
	user, err := e.users.Get(userId)
	if err != nil {
		return nil, err
	}
	user.Roles = types.StringList{role}
	if err := e.users.Save(); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile updates username/email and optionally the profile image
// path. Empty fields keep their current value.
func (e *Engine) UpdateProfile(userId, username, email, imgPath string) (*types.User, error) {
	user, err := e.users.Get(userId)
	if err != nil {
		return nil, err
	}
	if username != "" {
		if other, taken := e.users.GetByUsername(username); taken && other.Id != userId {
			return nil, errors.Validation("Username already exists. Please choose another one.")
		}
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	if imgPath != "" {
		user.ProfileImgPath = imgPath
	}
	if err := e.users.Save(); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the identity record and cascades the removal into
// every group's users/pendingUsers/reported_users lists.
func (e *Engine) DeleteUser(userId string) error {
	if err := e.users.Delete(userId); err != nil {
		return err
	}
	for _, group := range e.groups.List() {
		group.Users = without(group.Users, userId)
		group.PendingUsers = without(group.PendingUsers, userId)
		group.ReportedUsers = without(group.ReportedUsers, userId)
	}
	if err := e.groups.Save(); err != nil {
		return &errors.PartialWrite{Op: "delete user", Err: err}
	}
	e.log.Info("user deleted", "user", userId)
	return nil
}
