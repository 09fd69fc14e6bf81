package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/localspot/social-core/internal/model"
)

// Content sources share one query shape: items strictly older than the
// cursor, newest first, optionally restricted to a set of authors.
// The aggregator treats each source as opaque and independently
// fallible.

type VisitorPostRepository interface {
	Create(ctx context.Context, p *model.VisitorPost) error
	FindCreatedBefore(ctx context.Context, before time.Time, limit int, authorIDs []string) ([]*model.VisitorPost, error)
}

type OwnerPostRepository interface {
	Create(ctx context.Context, p *model.OwnerPost) error
	FindCreatedBefore(ctx context.Context, before time.Time, limit int, authorIDs []string) ([]*model.OwnerPost, error)
}

type visitorPostRepository struct{ db *gorm.DB }

func NewVisitorPostRepository(db *gorm.DB) VisitorPostRepository {
	return &visitorPostRepository{db: db}
}

func (r *visitorPostRepository) Create(ctx context.Context, p *model.VisitorPost) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *visitorPostRepository) FindCreatedBefore(ctx context.Context, before time.Time, limit int, authorIDs []string) ([]*model.VisitorPost, error) {
	var res []*model.VisitorPost
	q := r.db.WithContext(ctx).Where("created_at < ?", before)
	if len(authorIDs) > 0 {
		q = q.Where("author_id IN ?", authorIDs)
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&res).Error
	return res, err
}

type ownerPostRepository struct{ db *gorm.DB }

func NewOwnerPostRepository(db *gorm.DB) OwnerPostRepository {
	return &ownerPostRepository{db: db}
}

func (r *ownerPostRepository) Create(ctx context.Context, p *model.OwnerPost) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ownerPostRepository) FindCreatedBefore(ctx context.Context, before time.Time, limit int, authorIDs []string) ([]*model.OwnerPost, error) {
	var res []*model.OwnerPost
	q := r.db.WithContext(ctx).Where("created_at < ?", before)
	if len(authorIDs) > 0 {
		q = q.Where("author_id IN ?", authorIDs)
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&res).Error
	return res, err
}
