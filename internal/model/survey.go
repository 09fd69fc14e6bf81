package model

import "time"

// Survey is the third content source. Author role is not implied by
// the store: both owners and visitors may publish surveys.
type Survey struct {
	ID         string `gorm:"primaryKey;type:varchar(36)"`
	AuthorID   string `gorm:"type:varchar(36);index:idx_survey_author"`
	AuthorName string `gorm:"type:varchar(128)"`
	Question   string `gorm:"type:text"`
	CreatedAt  time.Time `gorm:"index:idx_survey_created"`
	UpdatedAt  time.Time

	Options []SurveyOption `gorm:"foreignKey:SurveyID"`
}

func (Survey) TableName() string { return "surveys" }

type SurveyOption struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	SurveyID string `gorm:"type:varchar(36);index:idx_survey_option_survey"`
	Text     string `gorm:"type:varchar(255)"`
	Position int
}

func (SurveyOption) TableName() string { return "survey_options" }

// SurveyVote records one vote per (survey, voter); the unique pair
// index arbitrates duplicate votes the same way follow edges do.
type SurveyVote struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	SurveyID  string `gorm:"type:varchar(36);not null;index:idx_vote_pair,unique"`
	VoterID   string `gorm:"type:varchar(36);not null;index:idx_vote_pair,unique"`
	OptionID  string `gorm:"type:varchar(36);index:idx_vote_option"`
	CreatedAt time.Time
}

func (SurveyVote) TableName() string { return "survey_votes" }
