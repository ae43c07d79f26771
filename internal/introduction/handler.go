// File: internal/introduction/handler.go
package introduction

import (
	"carmatch_backend/internal/common"
	"carmatch_backend/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for introduction handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
	cfg     *config.Config
}

// NewHandler creates a new introduction handler.
func NewHandler(service Service, logger *zap.Logger, cfg *config.Config) *Handler {
	return &Handler{service: service, logger: logger, cfg: cfg}
}

// RegisterRoutes sets up the routes for introduction operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireUser gin.HandlerFunc) {
	group := router.Group("/introductions", requireUser)
	{
		group.POST("", h.createIntroduction)
		group.GET("/received", h.listReceived)
		group.GET("/sent", h.listSent)
		group.POST("/:id/accept", h.acceptIntroduction)
		group.POST("/:id/reject", h.rejectIntroduction)
	}
}

func (h *Handler) createIntroduction(c *gin.Context) {
	var req CreateIntroductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Create introduction: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	intro, err := h.service.CreateIntroduction(c.Request.Context(), common.GetUserIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Introduction sent successfully", ToIntroductionResponse(intro))
}

func (h *Handler) acceptIntroduction(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	intro, err := h.service.AcceptIntroduction(c.Request.Context(), id, common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Introduction accepted", ToIntroductionResponse(intro))
}

func (h *Handler) rejectIntroduction(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	intro, err := h.service.RejectIntroduction(c.Request.Context(), id, common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Introduction rejected", ToIntroductionResponse(intro))
}

func (h *Handler) listReceived(c *gin.Context) {
	pq := common.GetPaginationParams(c, h.cfg.SearchMaxPageSize)
	page, err := h.service.ListReceived(c.Request.Context(), common.GetUserIDFromContext(c), c.Query("status"), pq)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Received introductions retrieved successfully", common.MapPage(page, ToViewResponse))
}

func (h *Handler) listSent(c *gin.Context) {
	pq := common.GetPaginationParams(c, h.cfg.SearchMaxPageSize)
	page, err := h.service.ListSent(c.Request.Context(), common.GetUserIDFromContext(c), c.Query("status"), pq)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Sent introductions retrieved successfully", common.MapPage(page, ToViewResponse))
}
