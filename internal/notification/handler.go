// File: internal/notification/handler.go
package notification

import (
	"net/http"

	"carmatch_backend/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for notification operations.
// Every route requires a caller.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireUser gin.HandlerFunc) {
	group := router.Group("/notifications", requireUser)
	{
		group.GET("", h.getNotifications)
		group.GET("/unread-count", h.getUnreadCount)
		group.POST("/:notification_id/mark-read", h.markNotificationAsRead)
		group.POST("/mark-all-read", h.markAllNotificationsAsRead)
	}
}

func (h *Handler) getNotifications(c *gin.Context) {
	userID := common.GetUserIDFromContext(c)
	page, err := h.service.GetNotificationsForUser(c.Request.Context(), userID, common.GetPaginationParams(c, common.MaxPageSize))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notifications retrieved successfully.", page)
}

func (h *Handler) getUnreadCount(c *gin.Context) {
	count, err := h.service.GetUnreadCount(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Unread count retrieved successfully.", UnreadCountResponse{Unread: count})
}

func (h *Handler) markNotificationAsRead(c *gin.Context) {
	notificationID, err := common.ParseUUIDParam(c, "notification_id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.service.MarkNotificationAsRead(c.Request.Context(), notificationID, common.GetUserIDFromContext(c)); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondSuccess(c, http.StatusOK, "Notification marked as read successfully.", nil)
}

func (h *Handler) markAllNotificationsAsRead(c *gin.Context) {
	count, err := h.service.MarkAllUserNotificationsAsRead(c.Request.Context(), common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondSuccess(c, http.StatusOK, "All notifications marked as read successfully.", gin.H{"updated": count})
}
