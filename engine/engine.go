// Package engine enforces every membership invariant across the user/group
// snapshot store and the channel document store.
package engine

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/huddlechat/huddle/persistence"
	"github.com/huddlechat/huddle/types"
	"github.com/samber/lo"
)

// Engine applies membership mutations. Operations that span both stores
// (channel document store + user collection) are serialized behind crossMu
// so the two halves of one mutation are never interleaved within this
// process. There is no rollback: if the second write fails the first stays
// applied and the error reports the partial application.
type Engine struct {
	users    *persistence.Users
	groups   *persistence.Groups
	channels *persistence.ChannelLog
	log      hclog.Logger

	crossMu sync.Mutex
}

func New(users *persistence.Users, groups *persistence.Groups, channels *persistence.ChannelLog, logger hclog.Logger) *Engine {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Engine{
		users:    users,
		groups:   groups,
		channels: channels,
		log:      logger,
	}
}

func without(list types.StringList, id string) types.StringList {
	return types.StringList(lo.Without([]string(list), id))
}

func appendUnique(list types.StringList, id string) types.StringList {
	if lo.Contains([]string(list), id) {
		return list
	}
	return append(list, id)
}
