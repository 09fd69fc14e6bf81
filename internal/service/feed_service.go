package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/localspot/social-core/internal/model"
	"github.com/localspot/social-core/internal/repository"
	"github.com/localspot/social-core/pkg/logger"
)

type ContentKind string

const (
	KindPost   ContentKind = "post"
	KindSurvey ContentKind = "survey"
)

// Source names as recorded when a branch fails. Operational only,
// never part of an error response.
const (
	SourceVisitorPosts = "visitor_posts"
	SourceOwnerPosts   = "owner_posts"
	SourceSurveys      = "surveys"
)

type PostBody struct {
	Text     string `json:"text"`
	MediaURL string `json:"mediaUrl,omitempty"`
}

type SurveyOptionResult struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Position int    `json:"position"`
	Votes    int64  `json:"votes"`
}

type SurveyBody struct {
	Question string               `json:"question"`
	Options  []SurveyOptionResult `json:"options"`
}

// FeedItem is the normalized envelope: one shape regardless of which
// source produced the record. Built per request, never persisted.
type FeedItem struct {
	ID         string      `json:"id"`
	Kind       ContentKind `json:"kind"`
	AuthorID   string      `json:"authorId"`
	AuthorRole model.Role  `json:"authorRole"`
	Author     Identity    `json:"author"`
	CreatedAt  time.Time   `json:"createdAt"`
	Post       *PostBody   `json:"post,omitempty"`
	Survey     *SurveyBody `json:"survey,omitempty"`

	fallbackName string
}

type FeedPage struct {
	Items      []FeedItem `json:"items"`
	NextCursor *string    `json:"nextCursor"`
	// FailedSources is operational visibility; a failing source
	// shortens the page, it never fails the request.
	FailedSources []string `json:"-"`
}

type FeedService interface {
	// GetFeed merges the three content sources into one page. An empty
	// requesterID produces the anonymous public feed. cursor is the
	// opaque value from a previous page; empty means "now".
	GetFeed(ctx context.Context, requesterID string, limit int, cursor string) (*FeedPage, error)
}

type feedService struct {
	visitorPosts repository.VisitorPostRepository
	ownerPosts   repository.OwnerPostRepository
	surveys      repository.SurveyRepository
	followRepo   repository.FollowRepository
	resolver     IdentityResolver
	defaultLimit int
	maxLimit     int
}

func NewFeedService(
	visitorPosts repository.VisitorPostRepository,
	ownerPosts repository.OwnerPostRepository,
	surveys repository.SurveyRepository,
	followRepo repository.FollowRepository,
	resolver IdentityResolver,
	defaultLimit, maxLimit int,
) FeedService {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	if maxLimit <= 0 {
		maxLimit = 50
	}
	return &feedService{
		visitorPosts: visitorPosts,
		ownerPosts:   ownerPosts,
		surveys:      surveys,
		followRepo:   followRepo,
		resolver:     resolver,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

func formatCursor(t time.Time) string { return strconv.FormatInt(t.UnixNano(), 10) }

// parseCursor treats anything unparseable like an absent cursor; the
// read path degrades instead of rejecting.
func parseCursor(raw string) time.Time {
	if raw == "" {
		return time.Now()
	}
	nanos, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || nanos <= 0 {
		return time.Now()
	}
	return time.Unix(0, nanos)
}

type branchResult struct {
	source string
	items  []FeedItem
	err    error
}

func (s *feedService) GetFeed(ctx context.Context, requesterID string, limit int, cursor string) (*FeedPage, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	before := parseCursor(cursor)

	// the followed set only ranks; losing it degrades to pure
	// time ordering rather than failing the request
	followed := map[string]bool{}
	if requesterID != "" {
		ids, err := s.followRepo.FollowingIDs(ctx, requesterID)
		if err != nil {
			logger.Warn("feed: follow graph unavailable, serving unranked", zap.String("requester", requesterID), zap.Error(err))
		}
		for _, id := range ids {
			followed[id] = true
		}
	}

	// fan out to the three sources; each branch owns its slice, no
	// shared state until the join
	results := make([]branchResult, 3)
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		items, err := s.queryVisitorPosts(ctx, before, limit)
		results[0] = branchResult{source: SourceVisitorPosts, items: items, err: err}
	}()
	go func() {
		defer wg.Done()
		items, err := s.queryOwnerPosts(ctx, before, limit)
		results[1] = branchResult{source: SourceOwnerPosts, items: items, err: err}
	}()
	go func() {
		defer wg.Done()
		items, err := s.querySurveys(ctx, before, limit)
		results[2] = branchResult{source: SourceSurveys, items: items, err: err}
	}()
	wg.Wait()

	var (
		merged []FeedItem
		failed []string
	)
	for _, res := range results {
		if res.err != nil {
			// a failing source must not blank out its siblings
			failed = append(failed, res.source)
			logger.Warn("feed: source failed", zap.String("source", res.source), zap.Error(res.err))
			continue
		}
		merged = append(merged, res.items...)
	}

	s.enrich(ctx, merged)

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		// equal timestamps: followed authors first
		return followed[a.AuthorID] && !followed[b.AuthorID]
	})

	var nextCursor *string
	if len(merged) > limit {
		merged = merged[:limit]
	}
	if len(merged) == limit {
		c := formatCursor(merged[len(merged)-1].CreatedAt)
		nextCursor = &c
	}
	if merged == nil {
		merged = []FeedItem{}
	}
	return &FeedPage{Items: merged, NextCursor: nextCursor, FailedSources: failed}, nil
}

func (s *feedService) queryVisitorPosts(ctx context.Context, before time.Time, limit int) ([]FeedItem, error) {
	rows, err := s.visitorPosts.FindCreatedBefore(ctx, before, limit, nil)
	if err != nil {
		return nil, err
	}
	items := make([]FeedItem, 0, len(rows))
	for _, p := range rows {
		items = append(items, FeedItem{
			ID:           p.ID,
			Kind:         KindPost,
			AuthorID:     p.AuthorID,
			AuthorRole:   model.RoleVisitor,
			CreatedAt:    p.CreatedAt,
			Post:         &PostBody{Text: p.Body, MediaURL: p.MediaURL},
			fallbackName: p.AuthorName,
		})
	}
	return items, nil
}

func (s *feedService) queryOwnerPosts(ctx context.Context, before time.Time, limit int) ([]FeedItem, error) {
	rows, err := s.ownerPosts.FindCreatedBefore(ctx, before, limit, nil)
	if err != nil {
		return nil, err
	}
	items := make([]FeedItem, 0, len(rows))
	for _, p := range rows {
		items = append(items, FeedItem{
			ID:           p.ID,
			Kind:         KindPost,
			AuthorID:     p.AuthorID,
			AuthorRole:   model.RoleOwner,
			CreatedAt:    p.CreatedAt,
			Post:         &PostBody{Text: p.Body, MediaURL: p.MediaURL},
			fallbackName: p.AuthorName,
		})
	}
	return items, nil
}

func (s *feedService) querySurveys(ctx context.Context, before time.Time, limit int) ([]FeedItem, error) {
	rows, err := s.surveys.FindCreatedBefore(ctx, before, limit, nil)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(rows))
	for i, sv := range rows {
		ids[i] = sv.ID
	}
	tallies, err := s.surveys.Tallies(ctx, ids)
	if err != nil {
		// tallies are enrichment; surveys still render with zero votes
		logger.Warn("feed: survey tallies unavailable", zap.Error(err))
		tallies = map[string]map[string]int64{}
	}
	items := make([]FeedItem, 0, len(rows))
	for _, sv := range rows {
		body := &SurveyBody{Question: sv.Question, Options: make([]SurveyOptionResult, 0, len(sv.Options))}
		for _, opt := range sv.Options {
			body.Options = append(body.Options, SurveyOptionResult{
				ID:       opt.ID,
				Text:     opt.Text,
				Position: opt.Position,
				Votes:    tallies[sv.ID][opt.ID],
			})
		}
		sort.Slice(body.Options, func(i, j int) bool { return body.Options[i].Position < body.Options[j].Position })
		items = append(items, FeedItem{
			ID:       sv.ID,
			Kind:     KindSurvey,
			AuthorID: sv.AuthorID,
			// the survey store does not imply a role; the resolved
			// identity decides during enrichment
			AuthorRole:   model.RoleVisitor,
			CreatedAt:    sv.CreatedAt,
			Survey:       body,
			fallbackName: sv.AuthorName,
		})
	}
	return items, nil
}

// enrich batch-resolves identities and stamps them onto the items.
// Survey author roles follow the resolved identity.
func (s *feedService) enrich(ctx context.Context, items []FeedItem) {
	if len(items) == 0 {
		return
	}
	refs := make([]AuthorRef, 0, len(items))
	for _, it := range items {
		refs = append(refs, AuthorRef{ID: it.AuthorID, FallbackName: it.fallbackName})
	}
	identities := s.resolver.ResolveBatch(ctx, refs)
	for i := range items {
		ident, ok := identities[items[i].AuthorID]
		if !ok {
			ident = Identity{Role: model.RoleVisitor, DisplayName: "Unknown", Unknown: true}
		}
		items[i].Author = ident
		if items[i].Kind == KindSurvey {
			items[i].AuthorRole = ident.Role
		}
	}
}
