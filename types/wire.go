package types

import "encoding/json"

// Event names of the realtime protocol.
const (
	WireEventChatMessage   = "chatMessage"
	WireEventJoinChannel   = "joinChannel"
	WireEventLeaveChannel  = "leaveChannel"
	WireEventSystemMessage = "systemMessage"
)

// JSON-serialized WebsocketMessage is what is actually sent via the
// websocket connection.
type WebsocketMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinLeave is the client payload of joinChannel/leaveChannel events.
type JoinLeave struct {
	ChannelId string `json:"channelId" mapstructure:"channelId"`
	Username  string `json:"username" mapstructure:"username"`
}

func NewWireMessage(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(WebsocketMessage{Event: event, Data: raw})
}
