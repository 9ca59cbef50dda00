package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/carpool-platform/service-rides/internal/application"
	"github.com/carpool-platform/service-rides/pkg/auth"
	"github.com/carpool-platform/service-rides/pkg/middleware"
	"github.com/carpool-platform/service-rides/pkg/response"
)

// AdminRideHandler handles admin HTTP requests for catalog oversight.
type AdminRideHandler struct {
	rides *application.RideService
}

// NewAdminRideHandler creates a new AdminRideHandler.
func NewAdminRideHandler(rides *application.RideService) *AdminRideHandler {
	return &AdminRideHandler{rides: rides}
}

// RegisterRoutes registers admin ride routes.
func (h *AdminRideHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.GET("/rides", h.ListRides)
		admin.GET("/stats/rides", h.RideStats)
	}
}

// ListRides handles GET /api/v1/admin/rides.
func (h *AdminRideHandler) ListRides(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	rides, total, err := h.rides.ListRidesPaged(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, rides, total, page, limit)
}

// RideStats handles GET /api/v1/admin/stats/rides.
func (h *AdminRideHandler) RideStats(c *gin.Context) {
	stats, err := h.rides.GetRideStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
