package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/localspot/social-core/internal/model"
)

// ProfileRepository fronts the two disjoint profile stores. Nothing
// here joins across them; the resolver layers its own fallbacks.
type ProfileRepository interface {
	CreateOwner(ctx context.Context, p *model.OwnerProfile) error
	CreateVisitor(ctx context.Context, p *model.VisitorProfile) error
	OwnersByIDs(ctx context.Context, ids []string) ([]*model.OwnerProfile, error)
	VisitorsByIDs(ctx context.Context, ids []string) ([]*model.VisitorProfile, error)
	// ExistsWithRole reports whether the actor has a profile in the
	// store matching role.
	ExistsWithRole(ctx context.Context, actorID string, role model.Role) (bool, error)
	// AddCounts applies best-effort deltas to the denormalized
	// follower/following counters on the profile row. The counters are
	// a display cache only; Stats never reads them.
	AddCounts(ctx context.Context, actorID string, role model.Role, followersDelta, followingDelta int64) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository { return &profileRepository{db: db} }

func (r *profileRepository) CreateOwner(ctx context.Context, p *model.OwnerProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *profileRepository) CreateVisitor(ctx context.Context, p *model.VisitorProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *profileRepository) OwnersByIDs(ctx context.Context, ids []string) ([]*model.OwnerProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var res []*model.OwnerProfile
	err := r.db.WithContext(ctx).Where("actor_id IN ?", ids).Find(&res).Error
	return res, err
}

func (r *profileRepository) VisitorsByIDs(ctx context.Context, ids []string) ([]*model.VisitorProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var res []*model.VisitorProfile
	err := r.db.WithContext(ctx).Where("actor_id IN ?", ids).Find(&res).Error
	return res, err
}

func (r *profileRepository) ExistsWithRole(ctx context.Context, actorID string, role model.Role) (bool, error) {
	var cnt int64
	q := r.db.WithContext(ctx)
	if role == model.RoleOwner {
		q = q.Model(&model.OwnerProfile{})
	} else {
		q = q.Model(&model.VisitorProfile{})
	}
	if err := q.Where("actor_id = ?", actorID).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *profileRepository) AddCounts(ctx context.Context, actorID string, role model.Role, followersDelta, followingDelta int64) error {
	updates := map[string]interface{}{}
	if followersDelta != 0 {
		updates["followers_count"] = gorm.Expr("followers_count + ?", followersDelta)
	}
	if followingDelta != 0 {
		updates["following_count"] = gorm.Expr("following_count + ?", followingDelta)
	}
	if len(updates) == 0 {
		return nil
	}
	q := r.db.WithContext(ctx)
	if role == model.RoleOwner {
		q = q.Model(&model.OwnerProfile{})
	} else {
		q = q.Model(&model.VisitorProfile{})
	}
	return q.Where("actor_id = ?", actorID).Updates(updates).Error
}
