package match

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crickettrack/cricket-api/internal/handler"
	"github.com/crickettrack/cricket-api/internal/service/match"
)

type Handler struct {
	service *match.Service
}

func NewHandler(service *match.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	matches := r.Group("/matches")
	{
		matches.GET("/live", h.LiveMatches)
		matches.GET("/schedule", h.Schedule)
	}
}

func (h *Handler) LiveMatches(c *gin.Context) {
	matches, err := h.service.LiveMatches(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to fetch live matches"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(matches))
}

func (h *Handler) Schedule(c *gin.Context) {
	schedule, err := h.service.Schedule(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to fetch schedule"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(schedule))
}
