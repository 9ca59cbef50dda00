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

// RideHandler handles HTTP requests for the ride catalog and seat reservations.
type RideHandler struct {
	rides    *application.RideService
	bookings *application.BookingService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rides *application.RideService, bookings *application.BookingService) *RideHandler {
	return &RideHandler{rides: rides, bookings: bookings}
}

// RegisterRoutes registers all ride routes on the given router group.
func (h *RideHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	rides := r.Group("/api/v1/rides")
	rides.Use(authMW)
	{
		rides.POST("", middleware.RequireRole(auth.RoleDriver), h.CreateRide)
		rides.GET("", h.ListRides)
		rides.GET("/:id", h.GetRide)
		rides.DELETE("/:id", middleware.RequireRole(auth.RoleDriver), h.DeleteRide)
		rides.POST("/:id/reservations", middleware.RequireRole(auth.RoleRider), h.ReserveSeats)
		rides.GET("/driver/:driverId", h.ListDriverRides)
		rides.GET("/rider/:riderId", h.ListRiderRides)
	}
}

// CreateRide handles POST /api/v1/rides.
func (h *RideHandler) CreateRide(c *gin.Context) {
	driverID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.rides.CreateRide(c.Request.Context(), driverID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListRides handles GET /api/v1/rides. All rides, soonest departure first.
func (h *RideHandler) ListRides(c *gin.Context) {
	result, err := h.rides.ListAllRides(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetRide handles GET /api/v1/rides/:id.
func (h *RideHandler) GetRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ride ID")
		return
	}

	result, err := h.rides.GetRide(c.Request.Context(), rideID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteRide handles DELETE /api/v1/rides/:id. Drivers may only delete rides
// they own.
func (h *RideHandler) DeleteRide(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ride ID")
		return
	}

	driverID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	ride, err := h.rides.GetRide(c.Request.Context(), rideID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if ride.DriverID != driverID {
		c.JSON(http.StatusForbidden, gin.H{"error": "ride does not belong to this driver"})
		return
	}

	if err := h.bookings.DeleteRide(c.Request.Context(), rideID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"deleted": rideID})
}

// ReserveSeats handles POST /api/v1/rides/:id/reservations.
func (h *RideHandler) ReserveSeats(c *gin.Context) {
	rideID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ride ID")
		return
	}

	riderID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body struct {
		SeatCount int `json:"seat_count"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.ReserveSeats(c.Request.Context(), rideID, riderID, body.SeatCount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListDriverRides handles GET /api/v1/rides/driver/:driverId.
func (h *RideHandler) ListDriverRides(c *gin.Context) {
	driverID, err := uuid.Parse(c.Param("driverId"))
	if err != nil {
		response.BadRequest(c, "invalid driver ID")
		return
	}

	result, err := h.rides.ListDriverRides(c.Request.Context(), driverID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListRiderRides handles GET /api/v1/rides/rider/:riderId. Riders can only
// see their own booking history; admins can see anyone's.
func (h *RideHandler) ListRiderRides(c *gin.Context) {
	riderID, err := uuid.Parse(c.Param("riderId"))
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
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot view another rider's bookings"})
		return
	}

	result, err := h.rides.ListRiderRides(c.Request.Context(), riderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
