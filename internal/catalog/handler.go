// File: internal/catalog/handler.go
package catalog

import (
	"carmatch_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for catalog handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new catalog handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the public reference-data routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/catalog")
	{
		group.GET("/makes", h.listMakes)
		group.GET("/makes/:make/models", h.listModels)
	}
}

func (h *Handler) listMakes(c *gin.Context) {
	makes, err := h.service.ListMakes(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Makes retrieved successfully", makes)
}

func (h *Handler) listModels(c *gin.Context) {
	models, err := h.service.ListModels(c.Request.Context(), c.Param("make"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Models retrieved successfully", models)
}
