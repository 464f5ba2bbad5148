package favorite

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/crickettrack/cricket-api/pkg/errors"

	"github.com/crickettrack/cricket-api/internal/handler"
	"github.com/crickettrack/cricket-api/internal/middleware"
	"github.com/crickettrack/cricket-api/internal/model"
	"github.com/crickettrack/cricket-api/internal/repository"
)

type Handler struct {
	repo repository.FavoriteRepository
}

func NewHandler(repo repository.FavoriteRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	favorites := r.Group("/favorites")
	{
		favorites.POST("", h.CreateFavorite)
		favorites.GET("", h.ListFavorites)
		favorites.DELETE("/:id", h.DeleteFavorite)
	}
}

func (h *Handler) CreateFavorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.CreateFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	favorite := &model.Favorite{
		UserID: userID,
		ItemID: req.ItemID,
		Type:   req.Type,
		Title:  req.Title,
		Data:   req.Data,
	}

	if err := h.repo.Create(c.Request.Context(), favorite); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to create favorite"))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(favorite))
}

func (h *Handler) ListFavorites(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	favorites, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to fetch favorites"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(favorites))
}

func (h *Handler) DeleteFavorite(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	favoriteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid favorite ID"))
		return
	}

	if err := h.repo.DeleteByOwner(c.Request.Context(), favoriteID, userID); err != nil {
		if apperrors.IsNotFound(err) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("favorite not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to delete favorite"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "favorite deleted"}))
}
