// File: internal/user/handler.go
package user

import (
	"carmatch_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for user handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the routes for the caller's own profile.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireUser gin.HandlerFunc) {
	me := router.Group("/users/me", requireUser)
	{
		me.GET("", h.getMe)
		me.PUT("", h.upsertMe)
	}
}

func (h *Handler) getMe(c *gin.Context) {
	u, err := h.service.GetProfile(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile retrieved successfully", ToUserResponse(u))
}

func (h *Handler) upsertMe(c *gin.Context) {
	var req UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Upsert profile: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	u, err := h.service.UpsertProfile(c.Request.Context(), common.GetUserIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile saved successfully", ToUserResponse(u))
}
