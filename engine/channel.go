package engine

import (
	"github.com/google/uuid"
	"github.com/huddlechat/huddle/errors"
	"github.com/huddlechat/huddle/types"
	"github.com/samber/lo"
)

// validateChannelId rejects syntactically malformed channel ids before any
// store lookup.
func validateChannelId(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Validation("Invalid channel ID format")
	}
	return nil
}

// CreateChannel creates a channel document within a group. Three writes in
// sequence: the channel document, the group's channel list, the channels
// list of every initial user. A failure on a later write leaves the earlier
// ones applied.
func (e *Engine) CreateChannel(groupId, name string, initialUsers []string) (*types.Group, *types.Channel, error) {
	group, err := e.groups.Get(groupId)
	if err != nil {
		return nil, nil, err
	}
	e.crossMu.Lock()
	defer e.crossMu.Unlock()
	ch := &types.Channel{
		Id:           uuid.New().String(),
		Name:         name,
		ChannelUsers: initialUsers,
		PendingUsers: []string{},
		BannedUsers:  []string{},
	}
	if ch.ChannelUsers == nil {
		ch.ChannelUsers = []string{}
	}
	if err := e.channels.CreateChannel(ch); err != nil {
		return nil, nil, err
	}
	group.Channels = appendUnique(group.Channels, ch.Id)
	if err := e.groups.Save(); err != nil {
		return nil, nil, &errors.PartialWrite{Op: "create channel", Err: err}
	}
	for _, user := range e.users.List() {
		if lo.Contains(ch.ChannelUsers, user.Id) {
			user.Channels = appendUnique(user.Channels, ch.Id)
		}
	}
	if err := e.users.Save(); err != nil {
		return nil, nil, &errors.PartialWrite{Op: "create channel", Err: err}
	}
	e.log.Info("channel created", "channel", ch.Id, "group", groupId)
	return group, ch, nil
}

func (e *Engine) GetChannel(channelId string) (*types.Channel, error) {
	if err := validateChannelId(channelId); err != nil {
		return nil, err
	}
	return e.channels.GetChannel(channelId)
}

// RenameChannel updates the channel name. Renaming to the current name is
// accepted without a store write.
func (e *Engine) RenameChannel(channelId, newName string) (*types.Channel, bool, error) {
	if err := validateChannelId(channelId); err != nil {
		return nil, false, err
	}
	ch, err := e.channels.GetChannel(channelId)
	if err != nil {
		return nil, false, err
	}
	if ch.Name == newName {
		return ch, false, nil
	}
	ch.Name = newName
	if err := e.channels.UpdateChannel(ch); err != nil {
		return nil, false, err
	}
	return ch, true, nil
}

// DeleteChannel removes the channel id from the group, then deletes the
// document. The two stages report not-found distinctly; a missing document
// after the group-side write is a partial application, not a no-op.
func (e *Engine) DeleteChannel(groupId, channelId string) error {
	group, err := e.groups.Get(groupId)
	if err != nil {
		return err
	}
	e.crossMu.Lock()
	defer e.crossMu.Unlock()
	if !lo.Contains([]string(group.Channels), channelId) {
		return errors.NotFound("Channel not found in group")
	}
	group.Channels = without(group.Channels, channelId)
	if err := e.groups.Save(); err != nil {
		return err
	}
	if err := e.channels.DeleteChannel(channelId); err != nil {
		return err
	}
	e.log.Info("channel deleted", "channel", channelId, "group", groupId)
	return nil
}

// RequestJoin adds the user to the channel's pending list and the channel
// to the user's interest list. Both lookups are checked independently and
// the first failing one is reported. A request by a current member is a
// no-op: a user id is never pending and a member at the same time.
func (e *Engine) RequestJoin(channelId, userId string) (*types.Channel, *types.User, error) {
	if err := validateChannelId(channelId); err != nil {
		return nil, nil, err
	}
	e.crossMu.Lock()
	defer e.crossMu.Unlock()
	ch, err := e.channels.GetChannel(channelId)
	if err != nil {
		return nil, nil, err
	}
	user, err := e.users.Get(userId)
	if err != nil {
		return nil, nil, err
	}
	if lo.Contains(ch.ChannelUsers, userId) {
		return ch, user, nil
	}
	if !lo.Contains(ch.PendingUsers, userId) {
		ch.PendingUsers = append(ch.PendingUsers, userId)
	}
	user.InterestChannels = appendUnique(user.InterestChannels, channelId)
	if err := e.channels.UpdateChannel(ch); err != nil {
		return nil, nil, err
	}
	if err := e.users.Save(); err != nil {
		return nil, nil, &errors.PartialWrite{Op: "request to join channel", Err: err}
	}
	return ch, user, nil
}

// ApproveUser moves the user from the pending list to the channel members,
// mirrored on the user record.
func (e *Engine) ApproveUser(channelId, userId string) (*types.Channel, *types.User, error) {
	if err := validateChannelId(channelId); err != nil {
		return nil, nil, err
	}
	e.crossMu.Lock()
	defer e.crossMu.Unlock()
	ch, err := e.channels.GetChannel(channelId)
	if err != nil {
		return nil, nil, err
	}
	user, err := e.users.Get(userId)
	if err != nil {
		return nil, nil, err
	}
	ch.PendingUsers = lo.Without(ch.PendingUsers, userId)
	if !lo.Contains(ch.ChannelUsers, userId) {
		ch.ChannelUsers = append(ch.ChannelUsers, userId)
	}
	user.InterestChannels = without(user.InterestChannels, channelId)
	user.Channels = appendUnique(user.Channels, channelId)
	if err := e.channels.UpdateChannel(ch); err != nil {
		return nil, nil, err
	}
	if err := e.users.Save(); err != nil {
		return nil, nil, &errors.PartialWrite{Op: "approve channel user", Err: err}
	}
	return ch, user, nil
}

// DeclineUser clears the pending request on both sides, the member lists
// stay untouched.
func (e *Engine) DeclineUser(channelId, userId string) (*types.Channel, *types.User, error) {
	if err := validateChannelId(channelId); err != nil {
		return nil, nil, err
	}
	e.crossMu.Lock()
	defer e.crossMu.Unlock()
	ch, err := e.channels.GetChannel(channelId)
	if err != nil {
		return nil, nil, err
	}
	user, err := e.users.Get(userId)
	if err != nil {
		return nil, nil, err
	}
	ch.PendingUsers = lo.Without(ch.PendingUsers, userId)
	user.InterestChannels = without(user.InterestChannels, channelId)
	if err := e.channels.UpdateChannel(ch); err != nil {
		return nil, nil, err
	}
	if err := e.users.Save(); err != nil {
		return nil, nil, &errors.PartialWrite{Op: "decline channel user", Err: err}
	}
	return ch, user, nil
}

// BanUser removes the user from the channel members and adds them to the
// banned list, mirrored as channels/banned_channels on the user record.
func (e *Engine) BanUser(channelId, userId string) (*types.Channel, *types.User, error) {
	if err := validateChannelId(channelId); err != nil {
		return nil, nil, err
	}
	e.crossMu.Lock()
	defer e.crossMu.Unlock()
	ch, err := e.channels.GetChannel(channelId)
	if err != nil {
		return nil, nil, err
	}
	user, err := e.users.Get(userId)
	if err != nil {
		return nil, nil, err
	}
	ch.ChannelUsers = lo.Without(ch.ChannelUsers, userId)
	if !lo.Contains(ch.BannedUsers, userId) {
		ch.BannedUsers = append(ch.BannedUsers, userId)
	}
	user.Channels = without(user.Channels, channelId)
	user.BannedChannels = appendUnique(user.BannedChannels, channelId)
	if err := e.channels.UpdateChannel(ch); err != nil {
		return nil, nil, err
	}
	if err := e.users.Save(); err != nil {
		return nil, nil, &errors.PartialWrite{Op: "ban channel user", Err: err}
	}
	return ch, user, nil
}

// Messages returns the message log of one channel in chronological order.
func (e *Engine) Messages(channelId string) ([]*types.ChatMessage, error) {
	return e.channels.GetMessages(channelId)
}
