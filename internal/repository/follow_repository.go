package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/localspot/social-core/internal/model"
)

// pairWhere matches an edge under either the legacy or the current
// column naming, so rows written before the rename stay visible.
const pairWhere = "(user_id = ? OR follower_id = ?) AND (followed_user_id = ? OR following_id = ?)"

type FollowRepository interface {
	// Create inserts the edge and reports whether a new row was
	// written. A duplicate (sequential or racing) returns
	// created=false with no error: the unique pair index is the
	// arbiter, there is no separate existence check.
	Create(ctx context.Context, followerID string, followerRole model.Role, followingID string, followingRole model.Role) (created bool, err error)
	// Delete reports whether an edge was actually removed; deleting a
	// missing edge is not an error.
	Delete(ctx context.Context, followerID, followingID string) (removed bool, err error)
	// Get returns the edge or nil when absent.
	Get(ctx context.Context, followerID, followingID string) (*model.Follow, error)
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowing(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error)
	ListFollowers(ctx context.Context, followingID string, offset, limit int) ([]*model.Follow, error)
	// FollowingIDs returns the full followed set for feed ranking.
	FollowingIDs(ctx context.Context, followerID string) ([]string, error)
	CountFollowing(ctx context.Context, followerID string) (int64, error)
	CountFollowers(ctx context.Context, followingID string) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) Create(ctx context.Context, followerID string, followerRole model.Role, followingID string, followingRole model.Role) (bool, error) {
	f := &model.Follow{
		ID: uuid.New().String(),
		// both namings are written so either query path sees the edge
		UserID:         followerID,
		FollowedUserID: followingID,
		FollowerID:     followerID,
		FollowingID:    followingID,
		FollowerRole:   followerRole,
		FollowingRole:  followingRole,
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(f)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where(pairWhere, followerID, followerID, followingID, followingID).
		Delete(&model.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Get(ctx context.Context, followerID, followingID string) (*model.Follow, error) {
	var rows []*model.Follow
	err := r.db.WithContext(ctx).
		Where(pairWhere, followerID, followerID, followingID, followingID).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where(pairWhere, followerID, followerID, followingID, followingID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) ListFollowing(ctx context.Context, followerID string, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Where("user_id = ? OR follower_id = ?", followerID, followerID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *followRepository) ListFollowers(ctx context.Context, followingID string, offset, limit int) ([]*model.Follow, error) {
	var res []*model.Follow
	err := r.db.WithContext(ctx).
		Where("followed_user_id = ? OR following_id = ?", followingID, followingID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *followRepository) FollowingIDs(ctx context.Context, followerID string) ([]string, error) {
	var rows []*model.Follow
	if err := r.db.WithContext(ctx).
		Select("followed_user_id", "following_id").
		Where("user_id = ? OR follower_id = ?", followerID, followerID).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Followed())
	}
	return ids, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, followerID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("user_id = ? OR follower_id = ?", followerID, followerID).
		Count(&cnt).Error
	return cnt, err
}

func (r *followRepository) CountFollowers(ctx context.Context, followingID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("followed_user_id = ? OR following_id = ?", followingID, followingID).
		Count(&cnt).Error
	return cnt, err
}
