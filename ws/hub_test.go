package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/huddlechat/huddle/persistence"
	"github.com/huddlechat/huddle/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelay(t *testing.T) *Relay {
	t.Helper()
	log, err := persistence.NewChannelLog(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	relay := NewRelay(log, nil)
	go relay.Run()
	return relay
}

func recvFrame(t *testing.T, s *Session) *types.WebsocketMessage {
	t.Helper()
	select {
	case raw := <-s.Send:
		frame := &types.WebsocketMessage{}
		require.NoError(t, json.Unmarshal(raw, frame))
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return nil
	}
}

func assertNoFrame(t *testing.T, s *Session) {
	t.Helper()
	select {
	case raw := <-s.Send:
		t.Fatalf("unexpected frame: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSendChatReachesEveryRoomMember(t *testing.T) {
	relay := newTestRelay(t)
	alice := NewSession(relay, nil, "alice")
	bob := NewSession(relay, nil, "bob")
	carol := NewSession(relay, nil, "carol")
	relay.Join("c1", alice)
	relay.Join("c1", bob)
	relay.Join("c2", carol)

	msg := &types.ChatMessage{ChannelId: "c1", UserId: "u1", Message: "hi", Timestamp: time.Now()}
	require.NoError(t, relay.SendChat(msg))

	for _, s := range []*Session{alice, bob} {
		frame := recvFrame(t, s)
		assert.Equal(t, types.WireEventChatMessage, frame.Event)
		got := &types.ChatMessage{}
		require.NoError(t, json.Unmarshal(frame.Data, got))
		assert.Equal(t, "hi", got.Message)
		assert.Equal(t, msg.Id, got.Id)
	}
	assertNoFrame(t, carol)

	stored, err := relay.channelLog.GetMessages("c1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, msg.Id, stored[0].Id)
}

func TestSendSystemIsNeverLogged(t *testing.T) {
	relay := newTestRelay(t)
	alice := NewSession(relay, nil, "alice")
	relay.Join("c1", alice)

	relay.SendSystem("c1", "bob has joined the chat")

	frame := recvFrame(t, alice)
	assert.Equal(t, types.WireEventSystemMessage, frame.Event)
	notice := &types.SystemMessage{}
	require.NoError(t, json.Unmarshal(frame.Data, notice))
	assert.True(t, notice.System)
	assert.Equal(t, "bob has joined the chat", notice.Message)

	stored, err := relay.channelLog.GetMessages("c1")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestLeaveStopsDelivery(t *testing.T) {
	relay := newTestRelay(t)
	alice := NewSession(relay, nil, "alice")
	bob := NewSession(relay, nil, "bob")
	relay.Join("c1", alice)
	relay.Join("c1", bob)
	relay.Leave("c1", bob)

	relay.SendSystem("c1", "ping")

	recvFrame(t, alice)
	assertNoFrame(t, bob)
}

func TestSlowSessionIsEvicted(t *testing.T) {
	relay := newTestRelay(t)
	alice := NewSession(relay, nil, "alice")
	bob := NewSession(relay, nil, "bob")
	relay.Join("c1", alice)
	relay.Join("c1", bob)

	for i := 0; i < sendChannelSize; i++ {
		bob.Send <- []byte("backlog")
	}
	relay.SendSystem("c1", "ping")

	recvFrame(t, alice)

	// bob's backlog is still readable, then the channel is closed
	for i := 0; i < sendChannelSize; i++ {
		<-bob.Send
	}
	select {
	case _, ok := <-bob.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel of the evicted session was not closed")
	}

	// the room keeps working for the remaining session
	relay.SendSystem("c1", "pong")
	recvFrame(t, alice)
}

func TestBroadcastToEmptyRoomIsDropped(t *testing.T) {
	relay := newTestRelay(t)
	msg := &types.ChatMessage{ChannelId: "c9", UserId: "u1", Message: "into the void", Timestamp: time.Now()}
	// the append still happens even when nobody is subscribed
	require.NoError(t, relay.SendChat(msg))
	stored, err := relay.channelLog.GetMessages("c9")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}
