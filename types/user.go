package types

// User is a durable identity record. The list fields hold ids of the
// groups/channels the user is related to, mirrored on the group/channel
// side (see the engine package for the mirroring rules).
type User struct {
	Id               string     `json:"id" gorm:"primaryKey"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	Password         string     `json:"password,omitempty"` // checked by the auth collaborator, never hashed here
	ProfileImgPath   string     `json:"profile_img_path"`
	Roles            StringList `json:"roles"` // f.e. Super_Admin, Group_Admin, Chat_user
	Groups           StringList `json:"groups"`
	InterestGroups   StringList `json:"interest_groups"`
	Channels         StringList `json:"channels"`
	InterestChannels StringList `json:"interest_channels"`
	BannedChannels   StringList `json:"banned_channels"`
	ReportedInGroups StringList `json:"reported_in_groups"`
}

// PublicUser is the reduced record returned by the single-user lookup.
type PublicUser struct {
	Id             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	ProfileImgPath string `json:"profile_img_path"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		Id:             u.Id,
		Username:       u.Username,
		Email:          u.Email,
		ProfileImgPath: u.ProfileImgPath,
	}
}
