package persistence

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huddlechat/huddle/errors"
	"github.com/huddlechat/huddle/types"
	"github.com/tidwall/buntdb"
)

// ChannelLog is the document store holding the channel documents and the
// append-only message log. It is independent of the user/group snapshot
// store; operations are safe at document granularity.
type ChannelLog struct {
	db *buntdb.DB
}

// NewChannelLog opens the buntdb file at the given path (":memory:" is
// accepted for tests).
func NewChannelLog(path string) (*ChannelLog, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &ChannelLog{db: db}, nil
}

func channelKey(id string) string { return "channel:" + id }

// messageKey orders the log chronologically per channel: the 19-digit
// zero-padded nanosecond timestamp makes lexicographic order time order,
// the message id disconnects collisions within the same nanosecond.
func messageKey(m *types.ChatMessage) string {
	return fmt.Sprintf("message:%s:%019d:%s", m.ChannelId, m.Timestamp.UnixNano(), m.Id)
}

func (l *ChannelLog) CreateChannel(ch *types.Channel) error {
	raw, err := json.Marshal(ch)
	if err != nil {
		return errors.Store(err, "could not marshal channel")
	}
	err = l.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(channelKey(ch.Id), string(raw), nil)
		return err
	})
	if err != nil {
		return errors.Store(err, "could not store channel")
	}
	return nil
}

func (l *ChannelLog) GetChannel(id string) (*types.Channel, error) {
	ch := &types.Channel{}
	err := l.db.View(func(tx *buntdb.Tx) error {
		raw, err := tx.Get(channelKey(id))
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(raw), ch)
	})
	if err == buntdb.ErrNotFound {
		return nil, errors.NotFound("Channel not found")
	}
	if err != nil {
		return nil, errors.Store(err, "could not load channel")
	}
	return ch, nil
}

// UpdateChannel overwrites the channel document.
func (l *ChannelLog) UpdateChannel(ch *types.Channel) error {
	return l.CreateChannel(ch)
}

func (l *ChannelLog) DeleteChannel(id string) error {
	err := l.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(channelKey(id))
		return err
	})
	if err == buntdb.ErrNotFound {
		return errors.NotFound("Channel not found in store")
	}
	if err != nil {
		return errors.Store(err, "could not delete channel")
	}
	return nil
}

// AppendMessage appends one row to the message log. Rows are never updated
// afterwards. A zero timestamp would sort before every real row, so it is
// replaced with the append time.
func (l *ChannelLog) AppendMessage(m *types.ChatMessage) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	if m.Id == "" {
		if err := m.CreateId(); err != nil {
			return errors.Store(err, "could not hash message")
		}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return errors.Store(err, "could not marshal message")
	}
	err = l.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(messageKey(m), string(raw), nil)
		return err
	})
	if err != nil {
		return errors.Store(err, "could not store message")
	}
	return nil
}

// GetMessages returns the full log of one channel in chronological order.
func (l *ChannelLog) GetMessages(channelId string) ([]*types.ChatMessage, error) {
	messages := make([]*types.ChatMessage, 0)
	prefix := "message:" + channelId + ":"
	err := l.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(prefix+"*", func(key, val string) bool {
			if !strings.HasPrefix(key, prefix) {
				return true
			}
			m := &types.ChatMessage{}
			if err := json.Unmarshal([]byte(val), m); err == nil {
				messages = append(messages, m)
			}
			return true
		})
	})
	if err != nil {
		return nil, errors.Store(err, "could not load messages")
	}
	return messages, nil
}

// Shrink compacts the underlying database file, scheduled via cron from
// the server main.
func (l *ChannelLog) Shrink() error {
	err := l.db.Shrink()
	if err == buntdb.ErrDatabaseClosed {
		return nil
	}
	return err
}

func (l *ChannelLog) Close() error {
	return l.db.Close()
}
