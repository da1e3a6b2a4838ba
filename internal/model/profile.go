package model

// Profile is a user with the follow graph resolved and the posts they wrote.
type Profile struct {
	User           *User         `json:"user"`
	Followers      []UserSummary `json:"followers"`
	Following      []UserSummary `json:"following"`
	FollowersCount int           `json:"followers_count"`
	FollowingCount int           `json:"following_count"`
	Posts          []Post        `json:"posts"`
}
