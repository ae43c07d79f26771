// File: internal/listing/handler.go
package listing

import (
	"strings"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for want listing handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
	cfg     *config.Config
}

// NewHandler creates a new want listing handler.
func NewHandler(service Service, logger *zap.Logger, cfg *config.Config) *Handler {
	return &Handler{service: service, logger: logger, cfg: cfg}
}

// RegisterRoutes sets up the routes for want listing operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireUser, optionalUser gin.HandlerFunc) {
	group := router.Group("/want-listings")
	{
		group.GET("", optionalUser, h.searchWantListings)
		group.GET("/mine", requireUser, h.getMyWantListings)
		group.GET("/:id", h.getWantListingByID)

		authed := group.Group("", requireUser)
		{
			authed.POST("", h.createWantListing)
			authed.PUT("/:id", h.updateWantListing)
			authed.DELETE("/:id", h.deleteWantListing)
			authed.POST("/:id/archive", h.archiveWantListing)
		}
	}
}

// searchRequest is the browse query string.
type searchRequest struct {
	Make         string   `form:"make" binding:"omitempty,max=60"`
	Model        string   `form:"model" binding:"omitempty,max=60"`
	YearMin      *int     `form:"yearMin" binding:"omitempty,gte=1900,lte=2100"`
	YearMax      *int     `form:"yearMax" binding:"omitempty,gte=1900,lte=2100"`
	BudgetMin    *int     `form:"budgetMin" binding:"omitempty,gte=0"`
	BudgetMax    *int     `form:"budgetMax" binding:"omitempty,gte=0"`
	MileageMax   *int     `form:"mileageMax" binding:"omitempty,gte=0"`
	Transmission string   `form:"transmission" binding:"omitempty,max=20"`
	Drivetrain   string   `form:"drivetrain" binding:"omitempty,max=20"`
	VehicleType  []string `form:"vehicleType"`
	Keyword      string   `form:"keyword" binding:"omitempty,max=100"`
	Zip          string   `form:"zip" binding:"omitempty,len=5,numeric"`
	RadiusMiles  *int     `form:"radiusMiles"`
	Sort         string   `form:"sort"`
	Page         int      `form:"page"`
	Limit        int      `form:"limit"`
}

func (r searchRequest) toQuery() SearchQuery {
	var types []string
	for _, raw := range r.VehicleType {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}
	return SearchQuery{
		Filter: SearchFilter{
			Make:         r.Make,
			Model:        r.Model,
			YearMin:      r.YearMin,
			YearMax:      r.YearMax,
			BudgetMin:    r.BudgetMin,
			BudgetMax:    r.BudgetMax,
			MileageMax:   r.MileageMax,
			Transmission: r.Transmission,
			Drivetrain:   r.Drivetrain,
			VehicleTypes: types,
			Keyword:      r.Keyword,
			OriginZip:    r.Zip,
			RadiusMiles:  r.RadiusMiles,
		},
		Sort: r.Sort,
		Page: common.PaginationQuery{Page: r.Page, Limit: r.Limit},
	}
}

func (h *Handler) searchWantListings(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.logger.Warn("Search want listings: invalid query", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	page, err := h.service.SearchWantListings(c.Request.Context(), req.toQuery(), common.GetOptionalUserID(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Want listings retrieved successfully", common.MapPage(page, ToSearchResultResponse))
}

func (h *Handler) createWantListing(c *gin.Context) {
	var req WantListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Create want listing: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	w, err := h.service.CreateWantListing(c.Request.Context(), common.GetUserIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Want listing created successfully", ToWantListingResponse(w))
}

func (h *Handler) getWantListingByID(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	w, err := h.service.GetWantListingByID(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Want listing retrieved successfully", ToWantListingResponse(w))
}

func (h *Handler) getMyWantListings(c *gin.Context) {
	pq := common.GetPaginationParams(c, h.cfg.SearchMaxPageSize)
	page, err := h.service.GetMyWantListings(c.Request.Context(), common.GetUserIDFromContext(c), pq)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Want listings retrieved successfully", common.MapPage(page, func(w WantListing) WantListingResponse {
		return ToWantListingResponse(&w)
	}))
}

func (h *Handler) updateWantListing(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	var req WantListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Update want listing: invalid request body", zap.Error(err))
		common.RespondWithError(c, common.BindingError(err))
		return
	}
	w, err := h.service.UpdateWantListing(c.Request.Context(), id, common.GetUserIDFromContext(c), req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Want listing updated successfully", ToWantListingResponse(w))
}

func (h *Handler) deleteWantListing(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.service.DeleteWantListing(c.Request.Context(), id, common.GetUserIDFromContext(c)); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

func (h *Handler) archiveWantListing(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	w, err := h.service.ArchiveWantListing(c.Request.Context(), id, common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Want listing archived successfully", ToWantListingResponse(w))
}
