package ws

import (
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/huddlechat/huddle/persistence"
	"github.com/huddlechat/huddle/types"
)

const (
	maxMessageSize       = 4096
	pongWait             = 2 * time.Minute
	pingPeriod           = time.Minute
	writeWait            = 10 * time.Second
	sendChannelSize      = 1000
	broadcastChannelSize = 1000
)

type subscription struct {
	room    string
	session *Session
}

type broadcastReq struct {
	room    string
	payload []byte
}

// Relay is the per-channel broadcast hub. One room per channel id, created
// on first join. Join, leave and broadcast are processed sequentially by
// the run loop, so fan-out within a room never interleaves.
type Relay struct {
	rooms map[string]map[*Session]struct{}

	join      chan subscription
	leave     chan subscription
	broadcast chan broadcastReq

	// the message log backing chatMessage events
	channelLog *persistence.ChannelLog

	log hclog.Logger
}

func NewRelay(channelLog *persistence.ChannelLog, logger hclog.Logger) *Relay {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Relay{
		rooms:      make(map[string]map[*Session]struct{}),
		join:       make(chan subscription),
		leave:      make(chan subscription),
		broadcast:  make(chan broadcastReq, broadcastChannelSize),
		channelLog: channelLog,
		log:        logger,
	}
}

// Run is the main relay event loop handling join, leave and broadcast
// requests. Call it in its own goroutine.
func (r *Relay) Run() {
	for {
		select {
		case sub := <-r.join:
			room, ok := r.rooms[sub.room]
			if !ok {
				room = make(map[*Session]struct{})
				r.rooms[sub.room] = room
			}
			room[sub.session] = struct{}{}
			r.log.Debug("session joined room", "room", sub.room, "sessions", len(room))

		case sub := <-r.leave:
			if room, ok := r.rooms[sub.room]; ok {
				delete(room, sub.session)
				if len(room) == 0 {
					delete(r.rooms, sub.room)
				}
			}
			r.log.Debug("session left room", "room", sub.room)

		case req := <-r.broadcast:
			// at-least-once towards every subscriber, no cross-session
			// ordering guarantee
			for session := range r.rooms[req.room] {
				select {
				case session.Send <- req.payload:
				default:
					// a session that cannot keep up is evicted rather
					// than skipped, it never misses single frames
					r.log.Warn("send buffer full, evicting session", "room", req.room)
					r.evict(session)
				}
			}
		}
	}
}

// evict drops a session from every room and closes its send channel, which
// terminates its write loop. Only called from the run loop.
func (r *Relay) evict(s *Session) {
	for name, room := range r.rooms {
		if _, ok := room[s]; ok {
			delete(room, s)
			if len(room) == 0 {
				delete(r.rooms, name)
			}
		}
	}
	close(s.Send)
}

// Join subscribes a session to a room.
func (r *Relay) Join(room string, s *Session) {
	r.join <- subscription{room: room, session: s}
}

// Leave unsubscribes a session from a room.
func (r *Relay) Leave(room string, s *Session) {
	r.leave <- subscription{room: room, session: s}
}

// Broadcast fans one wire frame out to every session currently in the
// room, including the sender.
func (r *Relay) Broadcast(room, event string, data interface{}) {
	payload, err := types.NewWireMessage(event, data)
	if err != nil {
		r.log.Error("could not marshal wire message", "error", err)
		return
	}
	r.broadcast <- broadcastReq{room: room, payload: payload}
}

// SendChat appends the message to the log first, then broadcasts the
// identical payload to the message's room. A failed append is returned and
// nothing is broadcast.
func (r *Relay) SendChat(msg *types.ChatMessage) error {
	if err := r.channelLog.AppendMessage(msg); err != nil {
		return err
	}
	r.Broadcast(msg.ChannelId, types.WireEventChatMessage, msg)
	return nil
}

// SendSystem broadcasts a join/leave notice. System notices are never
// written to the message log.
func (r *Relay) SendSystem(room, text string) {
	r.Broadcast(room, types.WireEventSystemMessage, types.SystemMessage{
		Message: text,
		System:  true,
	})
}
