package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/localspot/social-core/internal/model"
	"github.com/localspot/social-core/internal/repository"
	"github.com/localspot/social-core/pkg/logger"
)

type counterDelta struct {
	followerID    string
	followerRole  model.Role
	followingID   string
	followingRole model.Role
	delta         int64 // +1 follow, -1 unfollow
	enqAt         time.Time
}

// CounterReplicator applies follower/following counter deltas to the
// profile rows off the mutation path. The counters are a display cache:
// a dropped job or a crash between edge write and counter write leaves
// them stale, which Stats tolerates by recounting edges.
type CounterReplicator struct {
	profileRepo repository.ProfileRepository
	ch          chan counterDelta
	metricsCh   chan time.Duration
}

func NewCounterReplicator(profileRepo repository.ProfileRepository, queueSize int) *CounterReplicator {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &CounterReplicator{
		profileRepo: profileRepo,
		ch:          make(chan counterDelta, queueSize),
		metricsCh:   make(chan time.Duration, 65536),
	}
}

func (r *CounterReplicator) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case job := <-r.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					// follower gains/loses a following, followee a follower
					if err := r.profileRepo.AddCounts(ctx, job.followerID, job.followerRole, 0, job.delta); err != nil {
						logger.Warn("counter replicate failed", zap.String("actor", job.followerID), zap.Error(err))
					}
					if err := r.profileRepo.AddCounts(ctx, job.followingID, job.followingRole, job.delta, 0); err != nil {
						logger.Warn("counter replicate failed", zap.String("actor", job.followingID), zap.Error(err))
					}
					cancel()
					if !job.enqAt.IsZero() {
						select {
						case r.metricsCh <- time.Since(job.enqAt):
						default:
						}
					}
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(r.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

func (r *CounterReplicator) EnqueueFollow(followerID string, followerRole model.Role, followingID string, followingRole model.Role) {
	r.enqueue(counterDelta{followerID: followerID, followerRole: followerRole, followingID: followingID, followingRole: followingRole, delta: 1, enqAt: time.Now()})
}

func (r *CounterReplicator) EnqueueUnfollow(followerID string, followerRole model.Role, followingID string, followingRole model.Role) {
	r.enqueue(counterDelta{followerID: followerID, followerRole: followerRole, followingID: followingID, followingRole: followingRole, delta: -1, enqAt: time.Now()})
}

func (r *CounterReplicator) enqueue(job counterDelta) {
	select {
	case r.ch <- job:
	default:
		logger.Warn("counter replicator queue full, drop delta",
			zap.String("follower", job.followerID), zap.String("following", job.followingID))
	}
}

// Metrics returns a read-only channel of apply latencies.
func (r *CounterReplicator) Metrics() <-chan time.Duration { return r.metricsCh }

// QueueLen returns the current queue length (sampled).
func (r *CounterReplicator) QueueLen() int { return len(r.ch) }
