package handler

import (
	"github.com/localspot/social-core/config"
	"github.com/localspot/social-core/internal/service"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	cfg        *config.Config
	followSvc  service.FollowService
	feedSvc    service.FeedService
	contentSvc service.ContentService
}

func New(cfg *config.Config, followSvc service.FollowService, feedSvc service.FeedService, contentSvc service.ContentService) *Handler {
	return &Handler{cfg: cfg, followSvc: followSvc, feedSvc: feedSvc, contentSvc: contentSvc}
}
