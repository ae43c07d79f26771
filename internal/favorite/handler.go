// File: internal/favorite/handler.go
package favorite

import (
	"carmatch_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for favorites. Every route requires a caller.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireUser gin.HandlerFunc) {
	group := router.Group("/favorites", requireUser)
	{
		group.GET("", h.listFavorites)
		group.POST("/:wantListingId", h.addFavorite)
		group.DELETE("/:wantListingId", h.removeFavorite)
	}
}

func (h *Handler) listFavorites(c *gin.Context) {
	ids, err := h.service.ListFavoriteIDs(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Favorites retrieved successfully", ListResponse{WantListingIDs: ids})
}

func (h *Handler) addFavorite(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "wantListingId")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.service.AddFavorite(c.Request.Context(), common.GetUserIDFromContext(c), id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) removeFavorite(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "wantListingId")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.service.RemoveFavorite(c.Request.Context(), common.GetUserIDFromContext(c), id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}
