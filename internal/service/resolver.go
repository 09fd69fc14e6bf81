package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/localspot/social-core/internal/model"
	"github.com/localspot/social-core/internal/repository"
	"github.com/localspot/social-core/pkg/logger"
)

// Identity is the display identity attached to feed items. Unknown is
// set when neither profile store knows the actor and no denormalized
// name was at hand — callers can tell enrichment failed instead of
// rendering silent empty strings.
type Identity struct {
	Role        model.Role `json:"role"`
	DisplayName string     `json:"displayName"`
	Handle      string     `json:"handle,omitempty"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	Unknown     bool       `json:"unknown,omitempty"`
}

// AuthorRef carries an actor id plus whatever denormalized name the
// content row already had, used as the pre-placeholder fallback.
type AuthorRef struct {
	ID           string
	FallbackName string
}

// IdentityResolver resolves display identities across the two disjoint
// profile stores. Batched: N distinct ids cost at most two bulk store
// lookups, never N point reads.
type IdentityResolver interface {
	ResolveBatch(ctx context.Context, refs []AuthorRef) map[string]Identity
}

const identityCacheTTL = 5 * time.Minute

type identityResolver struct {
	profileRepo repository.ProfileRepository
	cache       *redis.Client // optional
}

func NewIdentityResolver(profileRepo repository.ProfileRepository, cache *redis.Client) IdentityResolver {
	return &identityResolver{profileRepo: profileRepo, cache: cache}
}

func identityKey(id string) string { return fmt.Sprintf("identity:%s", id) }

func displayName(first, last, handle string) string {
	name := strings.TrimSpace(first + " " + last)
	if name != "" {
		return name
	}
	return handle
}

func (r *identityResolver) ResolveBatch(ctx context.Context, refs []AuthorRef) map[string]Identity {
	out := make(map[string]Identity, len(refs))
	fallbacks := make(map[string]string, len(refs))
	ids := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if ref.ID == "" || seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		ids = append(ids, ref.ID)
		if ref.FallbackName != "" {
			fallbacks[ref.ID] = ref.FallbackName
		}
	}
	if len(ids) == 0 {
		return out
	}

	missing := r.fromCache(ctx, ids, out)

	// at most two bulk lookups, one per store
	if len(missing) > 0 {
		resolved := make(map[string]Identity, len(missing))
		owners, err := r.profileRepo.OwnersByIDs(ctx, missing)
		if err != nil {
			logger.Warn("resolve identities: owner store lookup failed", zap.Error(err))
		}
		for _, p := range owners {
			resolved[p.ActorID] = Identity{
				Role:        model.RoleOwner,
				DisplayName: displayName(p.FirstName, p.LastName, p.Handle),
				Handle:      p.Handle,
				AvatarURL:   p.AvatarURL,
			}
		}
		rest := make([]string, 0, len(missing))
		for _, id := range missing {
			if _, ok := resolved[id]; !ok {
				rest = append(rest, id)
			}
		}
		visitors, err := r.profileRepo.VisitorsByIDs(ctx, rest)
		if err != nil {
			logger.Warn("resolve identities: visitor store lookup failed", zap.Error(err))
		}
		for _, p := range visitors {
			resolved[p.ActorID] = Identity{
				Role:        model.RoleVisitor,
				DisplayName: displayName(p.FirstName, p.LastName, p.Handle),
				Handle:      p.Handle,
				AvatarURL:   p.AvatarURL,
			}
		}
		r.fillCache(ctx, resolved)
		for id, ident := range resolved {
			out[id] = ident
		}
	}

	// layered fallback for actors neither store knows
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		if name, ok := fallbacks[id]; ok {
			out[id] = Identity{Role: model.RoleVisitor, DisplayName: name}
			continue
		}
		out[id] = Identity{Role: model.RoleVisitor, DisplayName: "Unknown", Unknown: true}
	}
	return out
}

// fromCache fills out from the identity cache and returns the ids that
// still need a store lookup. Cache trouble degrades to a full lookup.
func (r *identityResolver) fromCache(ctx context.Context, ids []string, out map[string]Identity) []string {
	if r.cache == nil {
		return ids
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = identityKey(id)
	}
	vals, err := r.cache.MGet(ctx, keys...).Result()
	if err != nil {
		return ids
	}
	missing := make([]string, 0, len(ids))
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var ident Identity
		if err := json.Unmarshal([]byte(str), &ident); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		out[ids[i]] = ident
	}
	return missing
}

func (r *identityResolver) fillCache(ctx context.Context, resolved map[string]Identity) {
	if r.cache == nil || len(resolved) == 0 {
		return
	}
	pipe := r.cache.Pipeline()
	for id, ident := range resolved {
		if payload, err := json.Marshal(ident); err == nil {
			pipe.Set(ctx, identityKey(id), payload, identityCacheTTL)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Debug("identity cache fill failed", zap.Error(err))
	}
}
