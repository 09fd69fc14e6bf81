package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/localspot/social-core/internal/model"
	"github.com/localspot/social-core/internal/repository"
)

// VoteResult mirrors FollowResult: duplicates are reported, not
// rejected.
type VoteResult struct {
	Voted        bool `json:"voted"`
	AlreadyVoted bool `json:"alreadyVoted"`
}

// ContentService owns the write paths into the three content sources.
// The author's display name is denormalized onto every row so the feed
// can still render it when profile resolution fails later.
type ContentService interface {
	CreatePost(ctx context.Context, authorID string, authorRole model.Role, body, mediaURL string) (string, error)
	CreateSurvey(ctx context.Context, authorID string, question string, options []string) (string, error)
	VoteSurvey(ctx context.Context, surveyID, voterID, optionID string) (VoteResult, error)
}

type contentService struct {
	visitorPosts repository.VisitorPostRepository
	ownerPosts   repository.OwnerPostRepository
	surveys      repository.SurveyRepository
	resolver     IdentityResolver
}

func NewContentService(
	visitorPosts repository.VisitorPostRepository,
	ownerPosts repository.OwnerPostRepository,
	surveys repository.SurveyRepository,
	resolver IdentityResolver,
) ContentService {
	return &contentService{visitorPosts: visitorPosts, ownerPosts: ownerPosts, surveys: surveys, resolver: resolver}
}

func (s *contentService) authorName(ctx context.Context, authorID string) string {
	identities := s.resolver.ResolveBatch(ctx, []AuthorRef{{ID: authorID}})
	if ident, ok := identities[authorID]; ok && !ident.Unknown {
		return ident.DisplayName
	}
	return ""
}

func (s *contentService) CreatePost(ctx context.Context, authorID string, authorRole model.Role, body, mediaURL string) (string, error) {
	if !authorRole.Valid() {
		return "", ErrInvalidRole
	}
	id := uuid.New().String()
	name := s.authorName(ctx, authorID)
	if authorRole == model.RoleOwner {
		p := &model.OwnerPost{ID: id, AuthorID: authorID, AuthorName: name, Body: body, MediaURL: mediaURL}
		return id, s.ownerPosts.Create(ctx, p)
	}
	p := &model.VisitorPost{ID: id, AuthorID: authorID, AuthorName: name, Body: body, MediaURL: mediaURL}
	return id, s.visitorPosts.Create(ctx, p)
}

func (s *contentService) CreateSurvey(ctx context.Context, authorID string, question string, options []string) (string, error) {
	sv := &model.Survey{
		ID:         uuid.New().String(),
		AuthorID:   authorID,
		AuthorName: s.authorName(ctx, authorID),
		Question:   question,
		Options:    make([]model.SurveyOption, 0, len(options)),
	}
	for i, text := range options {
		sv.Options = append(sv.Options, model.SurveyOption{
			ID:       uuid.New().String(),
			SurveyID: sv.ID,
			Text:     text,
			Position: i,
		})
	}
	if err := s.surveys.Create(ctx, sv); err != nil {
		return "", err
	}
	return sv.ID, nil
}

func (s *contentService) VoteSurvey(ctx context.Context, surveyID, voterID, optionID string) (VoteResult, error) {
	sv, err := s.surveys.GetByID(ctx, surveyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return VoteResult{}, ErrSurveyNotFound
		}
		return VoteResult{}, err
	}
	valid := false
	for _, opt := range sv.Options {
		if opt.ID == optionID {
			valid = true
			break
		}
	}
	if !valid {
		return VoteResult{}, ErrOptionNotFound
	}
	voted, err := s.surveys.Vote(ctx, surveyID, voterID, optionID)
	if err != nil {
		return VoteResult{}, err
	}
	if !voted {
		return VoteResult{AlreadyVoted: true}, nil
	}
	return VoteResult{Voted: true}, nil
}
