package model

import "time"

// VisitorPost lives in the visitor content source.
// AuthorName is denormalized at write time so a post stays renderable
// when the author's profile cannot be resolved.
type VisitorPost struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	AuthorID   string `gorm:"type:varchar(36);index:idx_vpost_author"`
	AuthorName string `gorm:"type:varchar(128)"`
	Body       string `gorm:"type:text"`
	MediaURL   string `gorm:"type:varchar(255)"`
	CreatedAt  time.Time `gorm:"index:idx_vpost_created"`
	UpdatedAt  time.Time
}

func (VisitorPost) TableName() string { return "visitor_posts" }

// OwnerPost lives in the owner content source.
type OwnerPost struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	AuthorID   string `gorm:"type:varchar(36);index:idx_opost_author"`
	AuthorName string `gorm:"type:varchar(128)"`
	Body       string `gorm:"type:text"`
	MediaURL   string `gorm:"type:varchar(255)"`
	CreatedAt  time.Time `gorm:"index:idx_opost_created"`
	UpdatedAt  time.Time
}

func (OwnerPost) TableName() string { return "owner_posts" }
