package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localspot/social-core/internal/model"
)

func seedSurvey(t *testing.T, repo SurveyRepository, authorID string, createdAt time.Time) *model.Survey {
	t.Helper()
	sv := &model.Survey{
		ID:       uuid.New().String(),
		AuthorID: authorID,
		Question: "best coffee nearby?",
		Options: []model.SurveyOption{
			{ID: uuid.New().String(), Text: "north cafe", Position: 0},
			{ID: uuid.New().String(), Text: "south cafe", Position: 1},
		},
		CreatedAt: createdAt,
	}
	for i := range sv.Options {
		sv.Options[i].SurveyID = sv.ID
	}
	require.NoError(t, repo.Create(context.Background(), sv))
	return sv
}

func TestSurveyVoteIdempotent(t *testing.T) {
	db := setupDB(t)
	repo := NewSurveyRepository(db)
	ctx := context.Background()
	sv := seedSurvey(t, repo, "author1", time.Now())

	voted, err := repo.Vote(ctx, sv.ID, "voter1", sv.Options[0].ID)
	require.NoError(t, err)
	assert.True(t, voted)

	// same voter again, even on a different option: swallowed
	voted, err = repo.Vote(ctx, sv.ID, "voter1", sv.Options[1].ID)
	require.NoError(t, err)
	assert.False(t, voted)

	var cnt int64
	require.NoError(t, db.Model(&model.SurveyVote{}).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)
}

func TestSurveyTallies(t *testing.T) {
	db := setupDB(t)
	repo := NewSurveyRepository(db)
	ctx := context.Background()
	sv := seedSurvey(t, repo, "author1", time.Now())

	for i, voter := range []string{"v1", "v2", "v3"} {
		opt := sv.Options[i%2]
		_, err := repo.Vote(ctx, sv.ID, voter, opt.ID)
		require.NoError(t, err)
	}

	tallies, err := repo.Tallies(ctx, []string{sv.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, tallies[sv.ID][sv.Options[0].ID])
	assert.EqualValues(t, 1, tallies[sv.ID][sv.Options[1].ID])
}

func TestSurveyFindCreatedBefore(t *testing.T) {
	db := setupDB(t)
	repo := NewSurveyRepository(db)
	ctx := context.Background()

	base := time.Now()
	old := seedSurvey(t, repo, "a1", base.Add(-2*time.Hour))
	mid := seedSurvey(t, repo, "a2", base.Add(-1*time.Hour))
	seedSurvey(t, repo, "a3", base.Add(time.Hour)) // newer than cursor

	rows, err := repo.FindCreatedBefore(ctx, base, 10, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, mid.ID, rows[0].ID, "newest first")
	assert.Equal(t, old.ID, rows[1].ID)
	require.Len(t, rows[0].Options, 2, "options preloaded")

	rows, err = repo.FindCreatedBefore(ctx, base, 10, []string{"a1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, old.ID, rows[0].ID)
}
