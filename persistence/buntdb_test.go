package persistence

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/huddlechat/huddle/errors"
	"github.com/huddlechat/huddle/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLog(t *testing.T) *ChannelLog {
	t.Helper()
	log, err := NewChannelLog(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestChannelDocumentLifecycle(t *testing.T) {
	log := newTestLog(t)

	ch := &types.Channel{Id: "c1", Name: "general", ChannelUsers: []string{"u1"}}
	require.NoError(t, log.CreateChannel(ch))

	got, err := log.GetChannel("c1")
	require.NoError(t, err)
	assert.Equal(t, ch, got)

	got.Name = "random"
	require.NoError(t, log.UpdateChannel(got))
	got, err = log.GetChannel("c1")
	require.NoError(t, err)
	assert.Equal(t, "random", got.Name)

	require.NoError(t, log.DeleteChannel("c1"))
	_, err = log.GetChannel("c1")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrNotFound))
	assert.Equal(t, "Channel not found", err.Error())
}

func TestDeleteChannelMissing(t *testing.T) {
	log := newTestLog(t)
	err := log.DeleteChannel("c1")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrNotFound))
	assert.Equal(t, "Channel not found in store", err.Error())
}

func TestMessagesAreChronologicalPerChannel(t *testing.T) {
	log := newTestLog(t)
	base := time.Now()

	for i, text := range []string{"first", "second", "third"} {
		msg := &types.ChatMessage{
			ChannelId: "c1",
			UserId:    "u1",
			Message:   text,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, log.AppendMessage(msg))
		assert.NotEmpty(t, msg.Id)
	}
	require.NoError(t, log.AppendMessage(&types.ChatMessage{
		ChannelId: "c2",
		UserId:    "u2",
		Message:   "other room",
		Timestamp: base,
	}))

	messages, err := log.GetMessages("c1")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "first", messages[0].Message)
	assert.Equal(t, "second", messages[1].Message)
	assert.Equal(t, "third", messages[2].Message)

	other, err := log.GetMessages("c2")
	require.NoError(t, err)
	require.Len(t, other, 1)

	empty, err := log.GetMessages("c3")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAppendMessageDefaultsZeroTimestamp(t *testing.T) {
	log := newTestLog(t)
	require.NoError(t, log.AppendMessage(&types.ChatMessage{
		ChannelId: "c1",
		UserId:    "u1",
		Message:   "early",
		Timestamp: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, log.AppendMessage(&types.ChatMessage{
		ChannelId: "c1",
		UserId:    "u1",
		Message:   "no timestamp",
	}))

	messages, err := log.GetMessages("c1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	// the stamped-on-append row sorts after the older one, not before
	assert.Equal(t, "early", messages[0].Message)
	assert.Equal(t, "no timestamp", messages[1].Message)
	assert.False(t, messages[1].Timestamp.IsZero())
}

func TestAppendMessageKeepsGivenId(t *testing.T) {
	log := newTestLog(t)
	msg := &types.ChatMessage{
		Id:        "deadbeefdeadbeef",
		ChannelId: "c1",
		UserId:    "u1",
		Message:   "hi",
		Timestamp: time.Now(),
	}
	require.NoError(t, log.AppendMessage(msg))
	messages, err := log.GetMessages("c1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "deadbeefdeadbeef", messages[0].Id)
}
