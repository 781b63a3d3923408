package engine

import (
	"github.com/huddlechat/huddle/errors"
	"github.com/huddlechat/huddle/types"
	"github.com/samber/lo"
)

// CreateGroup adds a new group and records it in the admin's groups list.
func (e *Engine) CreateGroup(g *types.Group) (*types.Group, error) {
	if g.Id == "" || g.Groupname == "" || g.AdminId == "" {
		return nil, errors.Validation("Required fields: id, groupname, adminId")
	}
	if g.Users == nil {
		g.Users = types.StringList{}
	}
	if g.PendingUsers == nil {
		g.PendingUsers = types.StringList{}
	}
	if g.Channels == nil {
		g.Channels = types.StringList{}
	}
	if g.ReportedUsers == nil {
		g.ReportedUsers = types.StringList{}
	}
	if err := e.groups.Add(g); err != nil {
		return nil, err
	}
	if admin, err := e.users.Get(g.AdminId); err == nil {
		admin.Groups = appendUnique(admin.Groups, g.Id)
		if err := e.users.Save(); err != nil {
			return nil, &errors.PartialWrite{Op: "create group", Err: err}
		}
	}
	e.log.Info("group created", "group", g.Id, "admin", g.AdminId)
	return g, nil
}

// ListGroups returns all groups, optionally restricted to the given admin
// ids.
func (e *Engine) ListGroups(adminIds []string) []*types.Group {
	groups := e.groups.List()
	if len(adminIds) == 0 {
		return groups
	}
	return lo.Filter(groups, func(g *types.Group, _ int) bool {
		return lo.Contains(adminIds, g.AdminId)
	})
}

func (e *Engine) GetGroup(groupId string) (*types.Group, error) {
	return e.groups.Get(groupId)
}

// RenameGroup updates the group name.
func (e *Engine) RenameGroup(groupId, newName string) (*types.Group, error) {
	group, err := e.groups.Get(groupId)
	if err != nil {
		return nil, err
	}
	group.Groupname = newName
	if err := e.groups.Save(); err != nil {
		return nil, err
	}
	return group, nil
}

// DeleteGroup removes the group and cascades the removal into the admin's
// and every member's groups list. Only the group admin (or the sentinel,
// once the group is orphaned) may delete.
func (e *Engine) DeleteGroup(groupId, requesterId string) error {
	group, err := e.groups.Get(groupId)
	if err != nil || (group.AdminId != requesterId && group.AdminId != types.SuperAdminId) {
		return errors.Forbidden("Forbidden: You don't have permission to delete this group.")
	}
	memberIds := append([]string{requesterId}, group.Users...)
	for _, memberId := range lo.Uniq(memberIds) {
		if member, err := e.users.Get(memberId); err == nil {
			member.Groups = without(member.Groups, groupId)
		}
	}
	if err := e.groups.Delete(groupId); err != nil {
		return err
	}
	if err := e.users.Save(); err != nil {
		return &errors.PartialWrite{Op: "delete group", Err: err}
	}
	e.log.Info("group deleted", "group", groupId, "requester", requesterId)
	return nil
}

// RegisterInterest records a join request: the user lands in the group's
// pending list, the group in the user's interest list. Idempotent.
func (e *Engine) RegisterInterest(groupId, userId string) (*types.Group, error) {
	group, user, err := e.groupAndUser(groupId, userId)
	if err != nil {
		return nil, err
	}
	group.PendingUsers = appendUnique(group.PendingUsers, userId)
	user.InterestGroups = appendUnique(user.InterestGroups, groupId)
	if err := e.saveBoth("register interest"); err != nil {
		return nil, err
	}
	return group, nil
}

// Approve moves a pending user into the member list and mirrors the change
// on the user record.
func (e *Engine) Approve(groupId, userId string) (*types.Group, error) {
	group, user, err := e.groupAndUser(groupId, userId)
	if err != nil {
		return nil, err
	}
	group.PendingUsers = without(group.PendingUsers, userId)
	group.Users = appendUnique(group.Users, userId)
	user.Groups = appendUnique(user.Groups, groupId)
	user.InterestGroups = without(user.InterestGroups, groupId)
	if err := e.saveBoth("approve"); err != nil {
		return nil, err
	}
	return group, nil
}

// Decline clears the pending request without any membership change.
func (e *Engine) Decline(groupId, userId string) (*types.Group, error) {
	group, user, err := e.groupAndUser(groupId, userId)
	if err != nil {
		return nil, err
	}
	group.PendingUsers = without(group.PendingUsers, userId)
	user.InterestGroups = without(user.InterestGroups, groupId)
	if err := e.saveBoth("decline"); err != nil {
		return nil, err
	}
	return group, nil
}

// Remove takes a user out of the member list and the group out of the
// user's groups list.
func (e *Engine) Remove(groupId, userId string) (*types.Group, error) {
	group, user, err := e.groupAndUser(groupId, userId)
	if err != nil {
		return nil, err
	}
	group.Users = without(group.Users, userId)
	user.Groups = without(user.Groups, groupId)
	if err := e.saveBoth("remove"); err != nil {
		return nil, err
	}
	return group, nil
}

// Report flags a user to the super admin. Independent of the current
// membership state, idempotent.
func (e *Engine) Report(groupId, userId string) (*types.Group, error) {
	group, user, err := e.groupAndUser(groupId, userId)
	if err != nil {
		return nil, err
	}
	group.ReportedUsers = appendUnique(group.ReportedUsers, userId)
	user.ReportedInGroups = appendUnique(user.ReportedInGroups, groupId)
	if err := e.saveBoth("report"); err != nil {
		return nil, err
	}
	return group, nil
}

// PromoteAdminToSuper hands the group over to the sentinel admin.
func (e *Engine) PromoteAdminToSuper(groupId string) (*types.Group, error) {
	group, err := e.groups.Get(groupId)
	if err != nil {
		return nil, err
	}
	group.AdminId = types.SuperAdminId
	if err := e.groups.Save(); err != nil {
		return nil, err
	}
	e.log.Info("group admin promoted to super", "group", groupId)
	return group, nil
}

func (e *Engine) groupAndUser(groupId, userId string) (*types.Group, *types.User, error) {
	group, gerr := e.groups.Get(groupId)
	user, uerr := e.users.Get(userId)
	if gerr != nil || uerr != nil {
		return nil, nil, errors.NotFound("Group or user not found")
	}
	return group, user, nil
}

// saveBoth persists both snapshot collections. The group-side write comes
// first; if the user-side write fails the group side stays applied.
func (e *Engine) saveBoth(op string) error {
	if err := e.groups.Save(); err != nil {
		return err
	}
	if err := e.users.Save(); err != nil {
		return &errors.PartialWrite{Op: op, Err: err}
	}
	return nil
}
