package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/localspot/social-core/internal/model"
)

type SurveyRepository interface {
	Create(ctx context.Context, s *model.Survey) error
	GetByID(ctx context.Context, id string) (*model.Survey, error)
	FindCreatedBefore(ctx context.Context, before time.Time, limit int, authorIDs []string) ([]*model.Survey, error)
	// Vote is idempotent per (survey, voter): the unique pair index
	// swallows the duplicate and voted=false is returned.
	Vote(ctx context.Context, surveyID, voterID, optionID string) (voted bool, err error)
	// Tallies returns per-option vote counts for a batch of surveys.
	Tallies(ctx context.Context, surveyIDs []string) (map[string]map[string]int64, error)
}

type surveyRepository struct{ db *gorm.DB }

func NewSurveyRepository(db *gorm.DB) SurveyRepository { return &surveyRepository{db: db} }

func (r *surveyRepository) Create(ctx context.Context, s *model.Survey) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *surveyRepository) GetByID(ctx context.Context, id string) (*model.Survey, error) {
	var s model.Survey
	err := r.db.WithContext(ctx).Preload("Options").Where("id = ?", id).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *surveyRepository) FindCreatedBefore(ctx context.Context, before time.Time, limit int, authorIDs []string) ([]*model.Survey, error) {
	var res []*model.Survey
	q := r.db.WithContext(ctx).Preload("Options").Where("created_at < ?", before)
	if len(authorIDs) > 0 {
		q = q.Where("author_id IN ?", authorIDs)
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&res).Error
	return res, err
}

func (r *surveyRepository) Vote(ctx context.Context, surveyID, voterID, optionID string) (bool, error) {
	v := &model.SurveyVote{
		ID:       uuid.New().String(),
		SurveyID: surveyID,
		VoterID:  voterID,
		OptionID: optionID,
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(v)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *surveyRepository) Tallies(ctx context.Context, surveyIDs []string) (map[string]map[string]int64, error) {
	if len(surveyIDs) == 0 {
		return map[string]map[string]int64{}, nil
	}
	type row struct {
		SurveyID string
		OptionID string
		Cnt      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.SurveyVote{}).
		Select("survey_id", "option_id", "COUNT(*) AS cnt").
		Where("survey_id IN ?", surveyIDs).
		Group("survey_id").Group("option_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]int64, len(surveyIDs))
	for _, rw := range rows {
		m, ok := out[rw.SurveyID]
		if !ok {
			m = make(map[string]int64)
			out[rw.SurveyID] = m
		}
		m[rw.OptionID] = rw.Cnt
	}
	return out, nil
}
