package model

import "time"

// OwnerProfile is the profile store for business owners. Disjoint from
// visitor profiles; handles are unique within this store only.
type OwnerProfile struct {
	ActorID        string `gorm:"primaryKey;type:varchar(36)"`
	FirstName      string `gorm:"type:varchar(64)"`
	LastName       string `gorm:"type:varchar(64)"`
	Handle         string `gorm:"type:varchar(64);uniqueIndex:idx_owner_handle"`
	AvatarURL      string `gorm:"type:varchar(255)"`
	FollowersCount int64  // display cache, maintained best-effort
	FollowingCount int64  // display cache, maintained best-effort
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (OwnerProfile) TableName() string { return "owner_profiles" }

// VisitorProfile is the profile store for directory visitors.
type VisitorProfile struct {
	ActorID        string `gorm:"primaryKey;type:varchar(36)"`
	FirstName      string `gorm:"type:varchar(64)"`
	LastName       string `gorm:"type:varchar(64)"`
	Handle         string `gorm:"type:varchar(64);uniqueIndex:idx_visitor_handle"`
	AvatarURL      string `gorm:"type:varchar(255)"`
	FollowersCount int64
	FollowingCount int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (VisitorProfile) TableName() string { return "visitor_profiles" }
