package types

// SuperAdminId is the sentinel admin id a group is handed over to when its
// original admin departs.
const SuperAdminId = "super"

// Group is a durable record in the same snapshot store as User.
type Group struct {
	Id            string     `json:"id" gorm:"primaryKey"`
	Groupname     string     `json:"groupname"`
	AdminId       string     `json:"adminId"`
	Users         StringList `json:"users"`
	PendingUsers  StringList `json:"pendingUsers"`
	Channels      StringList `json:"channels"`
	ReportedUsers StringList `json:"reported_users"`
}
