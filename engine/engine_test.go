package engine

import (
	"testing"

	"github.com/huddlechat/huddle/config"
	"github.com/huddlechat/huddle/persistence"
	"github.com/huddlechat/huddle/types"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg := &config.Config{}
	cfg.PersistenceConfig.DataDir = t.TempDir()
	backend, err := persistence.NewFileBackend(cfg)
	require.NoError(t, err)
	users, err := persistence.LoadUsers(backend)
	require.NoError(t, err)
	groups, err := persistence.LoadGroups(backend)
	require.NoError(t, err)
	channels, err := persistence.NewChannelLog(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { channels.Close() })
	return New(users, groups, channels, nil)
}

func mustUser(t *testing.T, e *Engine, id string) *types.User {
	t.Helper()
	u, err := e.CreateUser(&types.User{Id: id, Username: "name-" + id})
	require.NoError(t, err)
	return u
}

func mustGroup(t *testing.T, e *Engine, id, adminId string) *types.Group {
	t.Helper()
	g, err := e.CreateGroup(&types.Group{Id: id, Groupname: "group-" + id, AdminId: adminId})
	require.NoError(t, err)
	return g
}
