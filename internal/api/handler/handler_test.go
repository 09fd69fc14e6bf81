package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/localspot/social-core/config"
	"github.com/localspot/social-core/internal/model"
	"github.com/localspot/social-core/internal/repository"
	"github.com/localspot/social-core/internal/service"
	"github.com/localspot/social-core/pkg/middleware"
)

const testSecret = "test-secret"

type fixture struct {
	router      *gin.Engine
	profileRepo repository.ProfileRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&model.Follow{}, &model.OwnerProfile{}, &model.VisitorProfile{},
		&model.VisitorPost{}, &model.OwnerPost{},
		&model.Survey{}, &model.SurveyOption{}, &model.SurveyVote{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Server.RateLimit = 1000
	cfg.Server.RateBurst = 1000
	cfg.Auth.JWTSecret = testSecret
	cfg.Feed.DefaultLimit = 20
	cfg.Feed.MaxLimit = 50
	cfg.Tracing.ServiceName = "social-core-test"

	followRepo := repository.NewFollowRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	visitorPosts := repository.NewVisitorPostRepository(db)
	ownerPosts := repository.NewOwnerPostRepository(db)
	surveys := repository.NewSurveyRepository(db)

	resolver := service.NewIdentityResolver(profileRepo, rdb)
	notifier := service.NewRedisNotifier(rdb)
	followSvc := service.NewFollowService(followRepo, profileRepo, nil, notifier)
	feedSvc := service.NewFeedService(visitorPosts, ownerPosts, surveys, followRepo, resolver, cfg.Feed.DefaultLimit, cfg.Feed.MaxLimit)
	contentSvc := service.NewContentService(visitorPosts, ownerPosts, surveys, resolver)

	h := New(cfg, followSvc, feedSvc, contentSvc)
	return &fixture{router: NewRouter(cfg, h), profileRepo: profileRepo}
}

func (f *fixture) seedProfiles(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.profileRepo.CreateOwner(ctx, &model.OwnerProfile{ActorID: "owner1", FirstName: "Olive", LastName: "Owner", Handle: "olives-bakery"}))
	require.NoError(t, f.profileRepo.CreateVisitor(ctx, &model.VisitorProfile{ActorID: "visitor1", FirstName: "Vera", LastName: "Visitor", Handle: "vera"}))
	require.NoError(t, f.profileRepo.CreateVisitor(ctx, &model.VisitorProfile{ActorID: "visitor2", FirstName: "Vik", LastName: "Visitor", Handle: "vik"}))
}

func signToken(t *testing.T, actorID string, role model.Role) string {
	t.Helper()
	claims := middleware.ActorClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestFollowEndpointStatusCodes(t *testing.T) {
	f := newFixture(t)
	f.seedProfiles(t)
	visitorTok := signToken(t, "visitor1", model.RoleVisitor)
	ownerTok := signToken(t, "owner1", model.RoleOwner)

	// no token
	w, _ := f.do(t, http.MethodPost, "/api/v1/follow", "", gin.H{"targetId": "owner1", "targetRole": "owner"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// fresh follow
	w, env := f.do(t, http.MethodPost, "/api/v1/follow", visitorTok, gin.H{"targetId": "owner1", "targetRole": "owner"})
	assert.Equal(t, http.StatusCreated, w.Code)
	var res service.FollowResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.Created)

	// duplicate
	w, env = f.do(t, http.MethodPost, "/api/v1/follow", visitorTok, gin.H{"targetId": "owner1", "targetRole": "owner"})
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.True(t, res.AlreadyFollowing)

	// forbidden role pair
	w, _ = f.do(t, http.MethodPost, "/api/v1/follow", ownerTok, gin.H{"targetId": "visitor1", "targetRole": "visitor"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// self follow
	w, _ = f.do(t, http.MethodPost, "/api/v1/follow", visitorTok, gin.H{"targetId": "visitor1", "targetRole": "visitor"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// missing target
	w, _ = f.do(t, http.MethodPost, "/api/v1/follow", visitorTok, gin.H{"targetRole": "visitor"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// absent target actor
	w, _ = f.do(t, http.MethodPost, "/api/v1/follow", visitorTok, gin.H{"targetId": "ghost", "targetRole": "owner"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnfollowAlwaysSucceeds(t *testing.T) {
	f := newFixture(t)
	f.seedProfiles(t)
	tok := signToken(t, "visitor1", model.RoleVisitor)

	w, _ := f.do(t, http.MethodDelete, "/api/v1/follow", tok, gin.H{"targetId": "owner1"})
	assert.Equal(t, http.StatusOK, w.Code, "unfollow of a missing edge is still a 200")

	f.do(t, http.MethodPost, "/api/v1/follow", tok, gin.H{"targetId": "owner1", "targetRole": "owner"})
	w, _ = f.do(t, http.MethodDelete, "/api/v1/follow", tok, gin.H{"targetId": "owner1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.seedProfiles(t)

	f.do(t, http.MethodPost, "/api/v1/follow", signToken(t, "visitor1", model.RoleVisitor), gin.H{"targetId": "owner1", "targetRole": "owner"})
	f.do(t, http.MethodPost, "/api/v1/follow", signToken(t, "visitor2", model.RoleVisitor), gin.H{"targetId": "owner1", "targetRole": "owner"})

	w, env := f.do(t, http.MethodGet, "/api/v1/follow/stats/owner1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats service.FollowStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.EqualValues(t, 2, stats.FollowersCount)
	assert.EqualValues(t, 0, stats.FollowingCount)
}

func TestFeedEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.seedProfiles(t)
	visitorTok := signToken(t, "visitor1", model.RoleVisitor)
	ownerTok := signToken(t, "owner1", model.RoleOwner)

	w, _ := f.do(t, http.MethodPost, "/api/v1/posts", visitorTok, gin.H{"body": "great tacos on 5th"})
	require.Equal(t, http.StatusCreated, w.Code)
	w, _ = f.do(t, http.MethodPost, "/api/v1/posts", ownerTok, gin.H{"body": "new menu this week"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := f.do(t, http.MethodGet, "/api/v1/feed", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.FeedPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 2)

	names := []string{page.Items[0].Author.DisplayName, page.Items[1].Author.DisplayName}
	assert.ElementsMatch(t, []string{"Vera Visitor", "Olive Owner"}, names)
	assert.Nil(t, page.NextCursor, "short page carries no cursor")

	// the anonymous and authenticated views differ only in ranking
	w, env = f.do(t, http.MethodGet, "/api/v1/feed?limit=1", visitorTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.NextCursor, "full page links to the next one")
}

func TestSurveyVoteFlow(t *testing.T) {
	f := newFixture(t)
	f.seedProfiles(t)
	ownerTok := signToken(t, "owner1", model.RoleOwner)
	visitorTok := signToken(t, "visitor1", model.RoleVisitor)

	w, env := f.do(t, http.MethodPost, "/api/v1/surveys", ownerTok, gin.H{
		"question": "extend opening hours?",
		"options":  []string{"yes", "no"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &created))
	surveyID := created["id"]
	require.NotEmpty(t, surveyID)

	// need an option id; fetch via feed
	w, env = f.do(t, http.MethodGet, "/api/v1/feed", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page service.FeedPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 1)
	require.NotNil(t, page.Items[0].Survey)
	optionID := page.Items[0].Survey.Options[0].ID

	w, env = f.do(t, http.MethodPost, "/api/v1/surveys/"+surveyID+"/vote", visitorTok, gin.H{"optionId": optionID})
	require.Equal(t, http.StatusOK, w.Code)
	var vote service.VoteResult
	require.NoError(t, json.Unmarshal(env.Data, &vote))
	assert.True(t, vote.Voted)

	w, env = f.do(t, http.MethodPost, "/api/v1/surveys/"+surveyID+"/vote", visitorTok, gin.H{"optionId": optionID})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &vote))
	assert.True(t, vote.AlreadyVoted)

	w, _ = f.do(t, http.MethodPost, "/api/v1/surveys/ghost/vote", visitorTok, gin.H{"optionId": optionID})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
