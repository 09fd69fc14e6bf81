package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/localspot/social-core/pkg/middleware"
	"github.com/localspot/social-core/pkg/response"
)

// GetFeed returns one merged, time-ordered page across all content
// sources. Anonymous callers get the public feed; authenticated ones
// get followed authors ranked first on timestamp ties. Source outages
// shorten the page, they never fail it.
// @Summary Unified feed
// @Tags feed
// @Param limit query int false "page size" default(20)
// @Param cursor query string false "opaque cursor from the previous page"
// @Success 200 {object} response.Response{data=service.FeedPage}
// @Router /api/v1/feed [get]
func (h *Handler) GetFeed(c *gin.Context) {
	requesterID, _, _ := middleware.ActorFrom(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	page, err := h.feedSvc.GetFeed(c.Request.Context(), requesterID, limit, c.Query("cursor"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, page)
}
