// Seeds a local database with profiles, follows, posts and surveys so
// the feed has something to serve during development.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/localspot/social-core/config"
	"github.com/localspot/social-core/internal/model"
	"github.com/localspot/social-core/internal/repository"
	"github.com/localspot/social-core/pkg/database"
	"github.com/localspot/social-core/pkg/logger"
)

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic(err)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		panic(err)
	}

	owners := envInt("OWNERS", 20)
	visitors := envInt("VISITORS", 100)
	posts := envInt("POSTS", 400)
	surveys := envInt("SURVEYS", 40)
	follows := envInt("FOLLOWS", 600)

	ctx := context.Background()
	profileRepo := repository.NewProfileRepository(db)
	followRepo := repository.NewFollowRepository(db)
	visitorPosts := repository.NewVisitorPostRepository(db)
	ownerPosts := repository.NewOwnerPostRepository(db)
	surveyRepo := repository.NewSurveyRepository(db)

	gofakeit.Seed(time.Now().UnixNano())

	ownerIDs := make([]string, owners)
	for i := range ownerIDs {
		id := uuid.New().String()
		ownerIDs[i] = id
		p := &model.OwnerProfile{
			ActorID:   id,
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Handle:    fmt.Sprintf("%s-%s", gofakeit.Company(), id[:8]),
			AvatarURL: gofakeit.ImageURL(128, 128),
		}
		if err := profileRepo.CreateOwner(ctx, p); err != nil {
			panic(err)
		}
	}

	visitorIDs := make([]string, visitors)
	for i := range visitorIDs {
		id := uuid.New().String()
		visitorIDs[i] = id
		p := &model.VisitorProfile{
			ActorID:   id,
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Handle:    fmt.Sprintf("%s%s", gofakeit.Username(), id[:6]),
			AvatarURL: gofakeit.ImageURL(128, 128),
		}
		if err := profileRepo.CreateVisitor(ctx, p); err != nil {
			panic(err)
		}
	}

	pick := func(ids []string) string { return ids[rand.Intn(len(ids))] }

	for i := 0; i < follows; i++ {
		// visitors follow anyone, owners follow only owners
		if rand.Intn(4) == 0 {
			_, _ = followRepo.Create(ctx, pick(ownerIDs), model.RoleOwner, pick(ownerIDs), model.RoleOwner)
			continue
		}
		if rand.Intn(2) == 0 {
			_, _ = followRepo.Create(ctx, pick(visitorIDs), model.RoleVisitor, pick(ownerIDs), model.RoleOwner)
		} else {
			_, _ = followRepo.Create(ctx, pick(visitorIDs), model.RoleVisitor, pick(visitorIDs), model.RoleVisitor)
		}
	}

	for i := 0; i < posts; i++ {
		created := time.Now().Add(-time.Duration(rand.Intn(14*24)) * time.Hour)
		if rand.Intn(3) == 0 {
			p := &model.OwnerPost{
				ID:         uuid.New().String(),
				AuthorID:   pick(ownerIDs),
				AuthorName: gofakeit.Company(),
				Body:       gofakeit.Sentence(12),
				CreatedAt:  created,
			}
			_ = ownerPosts.Create(ctx, p)
		} else {
			p := &model.VisitorPost{
				ID:         uuid.New().String(),
				AuthorID:   pick(visitorIDs),
				AuthorName: gofakeit.Name(),
				Body:       gofakeit.Sentence(12),
				CreatedAt:  created,
			}
			_ = visitorPosts.Create(ctx, p)
		}
	}

	for i := 0; i < surveys; i++ {
		sv := &model.Survey{
			ID:         uuid.New().String(),
			AuthorID:   pick(append(ownerIDs, visitorIDs...)),
			AuthorName: gofakeit.Name(),
			Question:   gofakeit.Question(),
			CreatedAt:  time.Now().Add(-time.Duration(rand.Intn(14*24)) * time.Hour),
		}
		n := 2 + rand.Intn(3)
		for j := 0; j < n; j++ {
			sv.Options = append(sv.Options, model.SurveyOption{
				ID:       uuid.New().String(),
				SurveyID: sv.ID,
				Text:     gofakeit.Word(),
				Position: j,
			})
		}
		if err := surveyRepo.Create(ctx, sv); err != nil {
			panic(err)
		}
		for v := 0; v < rand.Intn(20); v++ {
			opt := sv.Options[rand.Intn(len(sv.Options))]
			_, _ = surveyRepo.Vote(ctx, sv.ID, pick(visitorIDs), opt.ID)
		}
	}

	fmt.Printf("seeded %d owners, %d visitors, %d follows, %d posts, %d surveys\n",
		owners, visitors, follows, posts, surveys)
}
