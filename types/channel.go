package types

// Channel is a document in the channel store, independent of the user/group
// snapshot store. All fields hold user ids except Id/Name.
type Channel struct {
	Id           string   `json:"id"`
	Name         string   `json:"name"`
	ChannelUsers []string `json:"channelUsers"`
	PendingUsers []string `json:"pendingUsers"`
	BannedUsers  []string `json:"banned_users"`
}
