package service

import (
	"context"
	"fmt"

	"github.com/localspot/social-core/internal/model"
	"github.com/localspot/social-core/internal/repository"
)

// FollowResult distinguishes a fresh edge from an idempotent repeat.
type FollowResult struct {
	Created          bool `json:"created"`
	AlreadyFollowing bool `json:"alreadyFollowing"`
}

// FollowStats is always recomputed from edges. The denormalized
// profile counters may drift; they are never consulted here.
type FollowStats struct {
	FollowingCount int64 `json:"followingCount"`
	FollowersCount int64 `json:"followersCount"`
}

type FollowService interface {
	Follow(ctx context.Context, followerID string, followerRole model.Role, targetID string, targetRole model.Role) (FollowResult, error)
	Unfollow(ctx context.Context, followerID, targetID string) error
	IsFollowing(ctx context.Context, followerID, targetID string) (bool, error)
	Followers(ctx context.Context, actorID string, page, pageSize int) ([]string, error)
	Following(ctx context.Context, actorID string, page, pageSize int) ([]string, error)
	Stats(ctx context.Context, actorID string) (FollowStats, error)
}

type followService struct {
	followRepo  repository.FollowRepository
	profileRepo repository.ProfileRepository
	replicator  *CounterReplicator
	notifier    Notifier
}

func NewFollowService(followRepo repository.FollowRepository, profileRepo repository.ProfileRepository, replicator *CounterReplicator, notifier Notifier) FollowService {
	return &followService{followRepo: followRepo, profileRepo: profileRepo, replicator: replicator, notifier: notifier}
}

func (s *followService) Follow(ctx context.Context, followerID string, followerRole model.Role, targetID string, targetRole model.Role) (FollowResult, error) {
	if followerID == targetID {
		return FollowResult{}, ErrFollowSelf
	}
	if !followerRole.Valid() || !targetRole.Valid() {
		return FollowResult{}, ErrInvalidRole
	}
	// owners may not follow visitors; every other pair is allowed
	if followerRole == model.RoleOwner && targetRole == model.RoleVisitor {
		return FollowResult{}, ErrForbiddenRolePair
	}
	exists, err := s.profileRepo.ExistsWithRole(ctx, targetID, targetRole)
	if err != nil {
		return FollowResult{}, fmt.Errorf("check target: %w", err)
	}
	if !exists {
		return FollowResult{}, ErrTargetNotFound
	}

	// single atomic test-and-set against the pair index; two racing
	// identical requests yield one created=true and one created=false
	created, err := s.followRepo.Create(ctx, followerID, followerRole, targetID, targetRole)
	if err != nil {
		return FollowResult{}, err
	}
	if !created {
		return FollowResult{AlreadyFollowing: true}, nil
	}

	if s.replicator != nil {
		s.replicator.EnqueueFollow(followerID, followerRole, targetID, targetRole)
	}
	if s.notifier != nil {
		go s.notifier.Notify(context.WithoutCancel(ctx), Notification{
			RecipientID: targetID,
			SenderID:    followerID,
			Type:        NotificationTypeFollow,
			Title:       "New follower",
			Message:     "You have a new follower",
			ContentRef:  followerID,
		})
	}
	return FollowResult{Created: true}, nil
}

func (s *followService) Unfollow(ctx context.Context, followerID, targetID string) error {
	// fetch first so the counter delta knows both roles; the edge is
	// the only place they are recorded together
	edge, err := s.followRepo.Get(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if edge == nil {
		return nil // idempotent: absent edge is success
	}
	removed, err := s.followRepo.Delete(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if removed && s.replicator != nil {
		s.replicator.EnqueueUnfollow(followerID, edge.FollowerRole, targetID, edge.FollowingRole)
	}
	return nil
}

func (s *followService) IsFollowing(ctx context.Context, followerID, targetID string) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, targetID)
}

func (s *followService) Followers(ctx context.Context, actorID string, page, pageSize int) ([]string, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	edges, err := s.followRepo.ListFollowers(ctx, actorID, offset, pageSize)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(edges))
	for i, e := range edges {
		res[i] = e.Follower()
	}
	return res, nil
}

func (s *followService) Following(ctx context.Context, actorID string, page, pageSize int) ([]string, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize
	edges, err := s.followRepo.ListFollowing(ctx, actorID, offset, pageSize)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(edges))
	for i, e := range edges {
		res[i] = e.Followed()
	}
	return res, nil
}

func (s *followService) Stats(ctx context.Context, actorID string) (FollowStats, error) {
	following, err := s.followRepo.CountFollowing(ctx, actorID)
	if err != nil {
		return FollowStats{}, err
	}
	followers, err := s.followRepo.CountFollowers(ctx, actorID)
	if err != nil {
		return FollowStats{}, err
	}
	return FollowStats{FollowingCount: following, FollowersCount: followers}, nil
}
