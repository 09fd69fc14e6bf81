package model

import (
	"time"
)

// Follow is a directed edge: follower follows following.
//
// The table carries two namings for the pair. user_id/followed_user_id
// are the historical columns and are populated on every row, old and
// new; follower_id/following_id arrived with the role split and are
// empty on rows written before the migration. The unique index lives
// on the historical pair so it covers all rows — it doubles as the
// concurrency arbiter for duplicate follow requests.
type Follow struct {
	ID string `gorm:"primaryKey;type:varchar(36)"`

	// legacy naming, always written
	UserID         string `gorm:"column:user_id;type:varchar(36);not null;index:idx_follow_pair,unique"`
	FollowedUserID string `gorm:"column:followed_user_id;type:varchar(36);not null;index:idx_follow_pair,unique;index:idx_follow_followed"`

	// current naming, written by this codebase
	FollowerID  string `gorm:"column:follower_id;type:varchar(36);index:idx_follow_follower"`
	FollowingID string `gorm:"column:following_id;type:varchar(36);index:idx_follow_following"`

	FollowerRole  Role `gorm:"type:varchar(16)"`
	FollowingRole Role `gorm:"type:varchar(16)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Follow) TableName() string { return "follows" }

// Follower returns the follower id regardless of which naming the row
// was written under.
func (f *Follow) Follower() string {
	if f.UserID != "" {
		return f.UserID
	}
	return f.FollowerID
}

// Followed returns the followed id regardless of naming.
func (f *Follow) Followed() string {
	if f.FollowedUserID != "" {
		return f.FollowedUserID
	}
	return f.FollowingID
}
