package ws

import (
	"encoding/json"
	"time"

	"github.com/folkengine/goname"
	"github.com/gorilla/websocket"
	"github.com/huddlechat/huddle/globals"
	"github.com/huddlechat/huddle/types"
	"github.com/mitchellh/mapstructure"
)

// Session is a middleman between one websocket connection and the relay.
// It owns the set of rooms it has joined: on disconnect every joined room
// is left explicitly, so each join has a matching leave.
type Session struct {
	relay *Relay

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	username string

	// rooms this session has joined, touched only from the read loop
	joined map[string]struct{}

	doneChan chan struct{}
}

func NewSession(relay *Relay, conn *websocket.Conn, username string) *Session {
	if username == "" {
		username = goname.New(goname.FantasyMap).FirstLast() + " (guest)"
	}
	return &Session{
		relay:    relay,
		conn:     conn,
		Send:     make(chan []byte, sendChannelSize),
		username: username,
		joined:   make(map[string]struct{}),
		doneChan: make(chan struct{}),
	}
}

// ReadLoop pumps events from the websocket connection to the relay.
//
// The application runs ReadLoop in a per-connection goroutine. The
// application ensures that there is at most one reader on a connection by
// executing all reads from this goroutine.
func (s *Session) ReadLoop() {
	defer func() {
		s.leaveAll()
		s.conn.Close()
		close(s.doneChan)
	}()
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error { s.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				globals.AppLogger.Info("websocket closed unexpectedly", "error", err)
			}
			return
		}

		message := &types.WebsocketMessage{}
		if err := json.Unmarshal(raw, message); err != nil {
			globals.AppLogger.Error("could not unmarshal ws message", "error", err)
			return
		}

		switch message.Event {
		case types.WireEventChatMessage:
			s.handleChatMessage(message.Data)

		case types.WireEventJoinChannel:
			s.handleJoin(message.Data)

		case types.WireEventLeaveChannel:
			s.handleLeave(message.Data)
		}
	}
}

func (s *Session) handleChatMessage(data json.RawMessage) {
	payload := make(map[string]interface{})
	if err := json.Unmarshal(data, &payload); err != nil {
		globals.AppLogger.Error("could not unmarshal chat message", "error", err)
		return
	}
	chatMsg := types.ChatMessage{}
	if err := mapstructure.WeakDecode(payload, &chatMsg); err != nil {
		globals.AppLogger.Error("could not decode chat message", "error", err)
		return
	}
	chatMsg.Timestamp = time.Now()
	if err := chatMsg.CreateId(); err != nil {
		globals.AppLogger.Error("could not hash chat message", "error", err)
		return
	}
	if err := s.relay.SendChat(&chatMsg); err != nil {
		globals.AppLogger.Error("could not persist chat message", "error", err)
	}
}

func (s *Session) handleJoin(data json.RawMessage) {
	payload, ok := s.decodeJoinLeave(data)
	if !ok {
		return
	}
	s.joined[payload.ChannelId] = struct{}{}
	s.relay.Join(payload.ChannelId, s)
	s.relay.SendSystem(payload.ChannelId, s.noticeName(payload.Username)+" has joined the chat")
}

func (s *Session) handleLeave(data json.RawMessage) {
	payload, ok := s.decodeJoinLeave(data)
	if !ok {
		return
	}
	delete(s.joined, payload.ChannelId)
	s.relay.Leave(payload.ChannelId, s)
	s.relay.SendSystem(payload.ChannelId, s.noticeName(payload.Username)+" has left the chat")
}

func (s *Session) decodeJoinLeave(data json.RawMessage) (types.JoinLeave, bool) {
	raw := make(map[string]interface{})
	if err := json.Unmarshal(data, &raw); err != nil {
		globals.AppLogger.Error("could not unmarshal join/leave payload", "error", err)
		return types.JoinLeave{}, false
	}
	payload := types.JoinLeave{}
	if err := mapstructure.WeakDecode(raw, &payload); err != nil {
		globals.AppLogger.Error("could not decode join/leave payload", "error", err)
		return types.JoinLeave{}, false
	}
	if payload.ChannelId == "" {
		return types.JoinLeave{}, false
	}
	return payload, true
}

func (s *Session) noticeName(payloadUsername string) string {
	if payloadUsername != "" {
		return payloadUsername
	}
	return s.username
}

// leaveAll leaves every room this session is still in, with a leave notice
// per room.
func (s *Session) leaveAll() {
	for room := range s.joined {
		s.relay.Leave(room, s)
		s.relay.SendSystem(room, s.username+" has left the chat")
		delete(s.joined, room)
	}
}

// WriteLoop pumps messages from the relay to the websocket connection.
//
// A goroutine running WriteLoop is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()
	for {
		select {
		case message, ok := <-s.Send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// the relay evicted this session
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := s.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)
			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.doneChan:
			return
		}
	}
}
