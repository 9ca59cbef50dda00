package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carpool-platform/service-rides/internal/application"
	"github.com/carpool-platform/service-rides/pkg/auth"
	"github.com/carpool-platform/service-rides/pkg/middleware"
	"github.com/carpool-platform/service-rides/pkg/response"
)

// ProfileHandler serves read-only driver and rider profile lookups. The
// replicas behind these endpoints are maintained by the identity-service
// event consumer; there is no write surface here.
type ProfileHandler struct {
	profiles *application.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *application.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// RegisterRoutes registers profile routes on the given router group.
func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	r.GET("/api/v1/drivers/:id", authMW, h.GetDriver)
	r.GET("/api/v1/riders/:id", authMW, h.GetRider)
}

// GetDriver handles GET /api/v1/drivers/:id.
func (h *ProfileHandler) GetDriver(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid driver ID")
		return
	}

	result, err := h.profiles.GetDriver(c.Request.Context(), driverID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetRider handles GET /api/v1/riders/:id. Riders can only read their own
// profile; admins can read anyone's.
func (h *ProfileHandler) GetRider(c *gin.Context) {
	riderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid rider ID")
		return
	}

	callerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	role, _ := middleware.GetUserRole(c)
	if callerID != riderID && role != auth.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot view another rider's profile"})
		return
	}

	result, err := h.profiles.GetRider(c.Request.Context(), riderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
