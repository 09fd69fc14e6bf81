package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/localspot/social-core/internal/model"
	"github.com/localspot/social-core/internal/service"
	"github.com/localspot/social-core/pkg/middleware"
	"github.com/localspot/social-core/pkg/response"
)

type followRequest struct {
	TargetID   string `json:"targetId" binding:"required"`
	TargetRole string `json:"targetRole" binding:"required,oneof=owner visitor"`
}

type unfollowRequest struct {
	TargetID string `json:"targetId" binding:"required"`
}

func bindingError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return "invalid field: " + verrs[0].Field()
	}
	return err.Error()
}

// Follow creates a follow edge from the authenticated actor.
// @Summary Follow an actor
// @Tags follow
// @Accept json
// @Produce json
// @Param request body followRequest true "follow target"
// @Success 201 {object} response.Response
// @Success 200 {object} response.Response "already following"
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	actorID, actorRole, _ := middleware.ActorFrom(c)
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingError(err))
		return
	}
	res, err := h.followSvc.Follow(c.Request.Context(), actorID, actorRole, req.TargetID, model.Role(req.TargetRole))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFollowSelf), errors.Is(err, service.ErrInvalidRole):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrForbiddenRolePair):
			response.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrTargetNotFound):
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	if res.AlreadyFollowing {
		response.Success(c, res)
		return
	}
	response.Created(c, res)
}

// Unfollow removes a follow edge; removing a missing edge succeeds.
// @Summary Unfollow an actor
// @Tags follow
// @Accept json
// @Produce json
// @Param request body unfollowRequest true "unfollow target"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/follow [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	actorID, _, _ := middleware.ActorFrom(c)
	var req unfollowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingError(err))
		return
	}
	if err := h.followSvc.Unfollow(c.Request.Context(), actorID, req.TargetID); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}

// IsFollowing reports whether the authenticated actor follows target.
// @Summary Check a follow edge
// @Tags follow
// @Param target query string true "target actor id"
// @Success 200 {object} response.Response{data=map[string]bool}
// @Router /api/v1/follow/check [get]
func (h *Handler) IsFollowing(c *gin.Context) {
	actorID, _, _ := middleware.ActorFrom(c)
	target := c.Query("target")
	if target == "" {
		response.BadRequest(c, "target is required")
		return
	}
	ok, err := h.followSvc.IsFollowing(c.Request.Context(), actorID, target)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"following": ok})
}

// Stats returns edge-derived counts for an actor. Counts are always
// recomputed from the graph, not read from cached counters.
// @Summary Follow stats
// @Tags follow
// @Param id path string true "actor id"
// @Success 200 {object} response.Response{data=service.FollowStats}
// @Router /api/v1/follow/stats/{id} [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.followSvc.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, stats)
}

// Followers lists the ids following an actor.
// @Summary List followers
// @Tags follow
// @Param id path string true "actor id"
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/follow/{id}/followers [get]
func (h *Handler) Followers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.followSvc.Followers(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// Following lists the ids an actor follows.
// @Summary List following
// @Tags follow
// @Param id path string true "actor id"
// @Param page query int false "page" default(1)
// @Param page_size query int false "page size" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /api/v1/follow/{id}/following [get]
func (h *Handler) Following(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	list, err := h.followSvc.Following(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}
