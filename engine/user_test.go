package engine

import (
	stderrors "errors"
	"testing"

	"github.com/huddlechat/huddle/errors"
	"github.com/huddlechat/huddle/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.CreateUser(&types.User{Id: "u1", Username: "alice"})
	require.NoError(t, err)
	_, err = e.CreateUser(&types.User{Id: "u2", Username: "alice"})
	assert.True(t, stderrors.Is(err, errors.ErrValidation))
}

func TestUpdateRoleReplacesRoles(t *testing.T) {
	e := newTestEngine(t)
	user := mustUser(t, e, "u1")
	user.Roles = types.StringList{"Chat_user", "Group_Admin"}

	updated, err := e.UpdateRole("u1", "Super_Admin")
	require.NoError(t, err)
	assert.Equal(t, types.StringList{"Super_Admin"}, updated.Roles)
}

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.CreateUser(&types.User{Id: "u1", Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	_, err = e.CreateUser(&types.User{Id: "u2", Username: "bob"})
	require.NoError(t, err)

	updated, err := e.UpdateProfile("u1", "", "new@example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", updated.Username)
	assert.Equal(t, "new@example.com", updated.Email)

	_, err = e.UpdateProfile("u2", "alice", "", "")
	assert.True(t, stderrors.Is(err, errors.ErrValidation))
}

func TestDeleteUserCascadesIntoGroups(t *testing.T) {
	e := newTestEngine(t)
	mustUser(t, e, "u1")
	mustUser(t, e, "u2")
	mustUser(t, e, "u3")
	mustGroup(t, e, "g1", "u1")

	_, err := e.RegisterInterest("g1", "u2")
	require.NoError(t, err)
	_, err = e.Approve("g1", "u2")
	require.NoError(t, err)
	_, err = e.Report("g1", "u2")
	require.NoError(t, err)
	_, err = e.RegisterInterest("g1", "u3")
	require.NoError(t, err)

	require.NoError(t, e.DeleteUser("u2"))

	_, err = e.GetUser("u2")
	assert.True(t, stderrors.Is(err, errors.ErrNotFound))
	group, _ := e.GetGroup("g1")
	assert.Empty(t, group.Users)
	assert.Empty(t, group.ReportedUsers)
	assert.Equal(t, types.StringList{"u3"}, group.PendingUsers)
}
