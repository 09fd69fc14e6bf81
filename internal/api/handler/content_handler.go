package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/localspot/social-core/internal/service"
	"github.com/localspot/social-core/pkg/middleware"
	"github.com/localspot/social-core/pkg/response"
)

type createPostRequest struct {
	Body     string `json:"body" binding:"required"`
	MediaURL string `json:"mediaUrl"`
}

type createSurveyRequest struct {
	Question string   `json:"question" binding:"required"`
	Options  []string `json:"options" binding:"required,min=2,dive,required"`
}

type voteRequest struct {
	OptionID string `json:"optionId" binding:"required"`
}

// CreatePost writes into the content source matching the author role.
// @Summary Create a post
// @Tags content
// @Accept json
// @Produce json
// @Param request body createPostRequest true "post body"
// @Success 201 {object} response.Response{data=map[string]string}
// @Failure 400 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	actorID, actorRole, _ := middleware.ActorFrom(c)
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingError(err))
		return
	}
	id, err := h.contentSvc.CreatePost(c.Request.Context(), actorID, actorRole, req.Body, req.MediaURL)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRole) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{"id": id})
}

// CreateSurvey publishes a survey with at least two options.
// @Summary Create a survey
// @Tags content
// @Accept json
// @Produce json
// @Param request body createSurveyRequest true "survey"
// @Success 201 {object} response.Response{data=map[string]string}
// @Failure 400 {object} response.Response
// @Router /api/v1/surveys [post]
func (h *Handler) CreateSurvey(c *gin.Context) {
	actorID, _, _ := middleware.ActorFrom(c)
	var req createSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingError(err))
		return
	}
	id, err := h.contentSvc.CreateSurvey(c.Request.Context(), actorID, req.Question, req.Options)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, gin.H{"id": id})
}

// VoteSurvey records one vote per voter; repeats report alreadyVoted.
// @Summary Vote on a survey
// @Tags content
// @Accept json
// @Produce json
// @Param id path string true "survey id"
// @Param request body voteRequest true "vote"
// @Success 200 {object} response.Response{data=service.VoteResult}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/surveys/{id}/vote [post]
func (h *Handler) VoteSurvey(c *gin.Context) {
	actorID, _, _ := middleware.ActorFrom(c)
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingError(err))
		return
	}
	res, err := h.contentSvc.VoteSurvey(c.Request.Context(), c.Param("id"), actorID, req.OptionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSurveyNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrOptionNotFound):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.Success(c, res)
}
