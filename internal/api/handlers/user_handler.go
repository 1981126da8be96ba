// server/internal/api/handlers/user_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-rescue-api-server/config"
	"food-rescue-api-server/internal/auth"
	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/store"
)

type UserHandler struct {
	Store store.UserStore
	JWT   config.JWTConfig
	Log   *zap.Logger
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=donor ngo volunteer"`

	Address  string           `json:"address" binding:"required"`
	City     string           `json:"city" binding:"required"`
	State    string           `json:"state" binding:"required"`
	Pincode  string           `json:"pincode" binding:"required"`
	Location *models.GeoPoint `json:"location"`

	// Donor/NGO organisation details
	OrganizationName string `json:"organizationName"`
	OrganizationType string `json:"organizationType"`

	// NGO only
	RegistrationNumber string `json:"registrationNumber"`
	DailyCapacity      int    `json:"dailyCapacity"`

	// Volunteer only
	VolunteerProfile *models.VolunteerProfile `json:"volunteerProfile"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("password hashing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	user := &models.User{
		Email:    req.Email,
		Password: hashed,
		FullName: req.FullName,
		Phone:    req.Phone,
		Role:     req.Role,
		Address:  req.Address,
		City:     req.City,
		State:    req.State,
		Pincode:  req.Pincode,
		Location: req.Location,
	}
	switch req.Role {
	case models.RoleDonor:
		user.OrganizationName = req.OrganizationName
		user.OrganizationType = req.OrganizationType
	case models.RoleNGO:
		user.OrganizationName = req.OrganizationName
		user.OrganizationType = req.OrganizationType
		user.RegistrationNumber = req.RegistrationNumber
		user.DailyCapacity = req.DailyCapacity
	case models.RoleVolunteer:
		user.IsAvailable = true
		user.VolunteerProfile = req.VolunteerProfile
	}

	if err := h.Store.InsertUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		h.Log.Error("user insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	token, err := auth.GenerateJWT(user.ID.Hex(), user.Email, user.Role, user.City, h.JWT.ExpirationDuration())
	if err != nil {
		h.Log.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Store.FindUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.Log.Error("user lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}
	if !auth.CheckPasswordHash(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateJWT(user.ID.Hex(), user.Email, user.Role, user.City, h.JWT.ExpirationDuration())
	if err != nil {
		h.Log.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.Store.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.Log.Error("user lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, user)
}

type VolunteerProfileRequest struct {
	IsAvailable          *bool                             `json:"isAvailable"`
	VehicleType          *string                           `json:"vehicleType"`
	MaxWeight            *float64                          `json:"maxWeight"`
	ServiceRadius        *float64                          `json:"serviceRadius"`
	PreferredAreas       *[]string                         `json:"preferredAreas"`
	AvailabilitySchedule map[string]models.DayAvailability `json:"availabilitySchedule"`
}

// UpdateVolunteerProfile patches the volunteer-specific fields; untouched
// fields keep their current values.
func (h *UserHandler) UpdateVolunteerProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req VolunteerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Store.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.Log.Error("user lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if user.VolunteerProfile == nil {
		user.VolunteerProfile = &models.VolunteerProfile{}
	}
	if req.IsAvailable != nil {
		user.IsAvailable = *req.IsAvailable
	}
	if req.VehicleType != nil {
		user.VolunteerProfile.VehicleType = *req.VehicleType
	}
	if req.MaxWeight != nil {
		user.VolunteerProfile.MaxWeight = *req.MaxWeight
	}
	if req.ServiceRadius != nil {
		user.VolunteerProfile.ServiceRadius = *req.ServiceRadius
	}
	if req.PreferredAreas != nil {
		user.VolunteerProfile.PreferredAreas = *req.PreferredAreas
	}
	if req.AvailabilitySchedule != nil {
		user.VolunteerProfile.AvailabilitySchedule = req.AvailabilitySchedule
	}
	user.UpdatedAt = time.Now()

	if err := h.Store.UpdateUser(c.Request.Context(), user); err != nil {
		h.Log.Error("user update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListVolunteers lets NGOs browse volunteers, optionally by city and
// availability.
func (h *UserHandler) ListVolunteers(c *gin.Context) {
	filter := store.UserFilter{
		Role: models.RoleVolunteer,
		City: c.Query("city"),
	}
	if c.Query("available") == "true" {
		available := true
		filter.Available = &available
	}

	volunteers, err := h.Store.ListUsers(c.Request.Context(), filter)
	if err != nil {
		h.Log.Error("volunteer listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, volunteers)
}
