// File: internal/vehicle/handler.go
package vehicle

import (
	"carmatch_backend/internal/common"
	"carmatch_backend/internal/config"
	"carmatch_backend/internal/listing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for vehicle listing handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
	cfg     *config.Config
}

// NewHandler creates a new vehicle listing handler.
func NewHandler(service Service, logger *zap.Logger, cfg *config.Config) *Handler {
	return &Handler{service: service, logger: logger, cfg: cfg}
}

// RegisterRoutes sets up the routes for vehicle listing operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireUser gin.HandlerFunc) {
	group := router.Group("/vehicles")
	{
		group.GET("/:id", h.getVehicleByID)

		authed := group.Group("", requireUser)
		{
			authed.POST("", h.createVehicle)
			authed.GET("/mine", h.getMyVehicles)
			authed.POST("/images/upload-url", h.createImageUploadURL)
			authed.PUT("/:id", h.updateVehicle)
			authed.DELETE("/:id", h.deleteVehicle)
			authed.GET("/:id/matches", h.getMatches)
		}
	}
}

func (h *Handler) createVehicle(c *gin.Context) {
	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Create vehicle: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	v, err := h.service.CreateVehicle(c.Request.Context(), common.GetUserIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Vehicle listing created successfully", ToVehicleResponse(v))
}

func (h *Handler) getVehicleByID(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	v, err := h.service.GetVehicleByID(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Vehicle listing retrieved successfully", ToVehicleResponse(v))
}

func (h *Handler) getMyVehicles(c *gin.Context) {
	pq := common.GetPaginationParams(c, h.cfg.SearchMaxPageSize)
	page, err := h.service.GetMyVehicles(c.Request.Context(), common.GetUserIDFromContext(c), pq)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Vehicle listings retrieved successfully", common.MapPage(page, func(v VehicleListing) VehicleResponse {
		return ToVehicleResponse(&v)
	}))
}

func (h *Handler) updateVehicle(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Update vehicle: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	v, err := h.service.UpdateVehicle(c.Request.Context(), id, common.GetUserIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Vehicle listing updated successfully", ToVehicleResponse(v))
}

func (h *Handler) deleteVehicle(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.service.DeleteVehicle(c.Request.Context(), id, common.GetUserIDFromContext(c)); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) getMatches(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	pq := common.GetPaginationParams(c, h.cfg.SearchMaxPageSize)
	page, err := h.service.GetMatches(c.Request.Context(), id, common.GetUserIDFromContext(c), pq)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Matches retrieved successfully", common.MapPage(page, listing.ToSearchResultResponse))
}

func (h *Handler) createImageUploadURL(c *gin.Context) {
	var req ImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	target, err := h.service.CreateImageUploadURL(c.Request.Context(), common.GetUserIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Upload URL created successfully", target)
}
