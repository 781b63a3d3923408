package types

import (
	"fmt"
	"time"

	"github.com/mitchellh/hashstructure/v2"
)

// ChatMessage is one row of the append-only message log. Rows are never
// mutated after the append.
type ChatMessage struct {
	Id        string    `json:"id" mapstructure:"-"`
	ChannelId string    `json:"channelId" mapstructure:"channelId"`
	UserId    string    `json:"userId" mapstructure:"userId"`
	Message   string    `json:"message" mapstructure:"message"`
	ImageUrl  string    `json:"imageUrl,omitempty" mapstructure:"imageUrl"`
	Timestamp time.Time `json:"timestamp" mapstructure:"-" hash:"ignore"`
}

// CreateId sets the message id to a hash over the message contents.
func (m *ChatMessage) CreateId() error {
	h, err := hashstructure.Hash(m, hashstructure.FormatV2, nil)
	if err != nil {
		return err
	}
	m.Id = fmt.Sprintf("%016x", h)
	return nil
}

// SystemMessage is a broadcast-only notice (join/leave), never written to
// the message log.
type SystemMessage struct {
	Message string `json:"message"`
	System  bool   `json:"system"`
}
