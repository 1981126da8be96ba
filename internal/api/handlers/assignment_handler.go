// server/internal/api/handlers/assignment_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"food-rescue-api-server/internal/api/middleware"
	"food-rescue-api-server/internal/lifecycle"
	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/store"
)

type AssignmentHandler struct {
	Service *lifecycle.AssignmentService
	Users   store.UserStore
	Log     *zap.Logger
}

type CreateAssignmentRequest struct {
	DonationID  string `json:"donationId" binding:"required"`
	VolunteerID string `json:"volunteerId" binding:"required"`
}

// Create is the NGO-initiated path: pick a volunteer for a donation.
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	donationID, err := primitive.ObjectIDFromHex(req.DonationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid donation id"})
		return
	}
	volunteerID, err := primitive.ObjectIDFromHex(req.VolunteerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid volunteer id"})
		return
	}

	assignment, err := h.Service.Create(c.Request.Context(), donationID, volunteerID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

type ClaimAssignmentRequest struct {
	DonationID string `json:"donationId" binding:"required"`
}

// Claim is the volunteer self-service path: take an available donation.
func (h *AssignmentHandler) Claim(c *gin.Context) {
	volunteerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ClaimAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	donationID, err := primitive.ObjectIDFromHex(req.DonationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid donation id"})
		return
	}

	assignment, err := h.Service.Claim(c.Request.Context(), donationID, volunteerID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// Available lists the donations the volunteer could claim right now.
func (h *AssignmentHandler) Available(c *gin.Context) {
	volunteerID, ok := currentUserID(c)
	if !ok {
		return
	}

	volunteer, err := h.Users.GetUser(c.Request.Context(), volunteerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.Log.Error("user lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	donations, err := h.Service.Available(c.Request.Context(), volunteer)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, donations)
}

func (h *AssignmentHandler) Accept(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	volunteerID, ok := currentUserID(c)
	if !ok {
		return
	}

	assignment, err := h.Service.Accept(c.Request.Context(), id, volunteerID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

type UpdateLocationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// UpdateLocation records a transit position ping. The first ping on an
// accepted assignment starts the transit.
func (h *AssignmentHandler) UpdateLocation(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	volunteerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := h.Service.UpdateLocation(c.Request.Context(), id, volunteerID, *req.Lat, *req.Lng)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

type CompleteAssignmentRequest struct {
	Notes  string `json:"notes"`
	Rating *int   `json:"rating"`
}

func (h *AssignmentHandler) Complete(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	volunteerID, ok := currentUserID(c)
	if !ok {
		return
	}

	// Body is optional; notes and rating may be omitted.
	var req CompleteAssignmentRequest
	_ = c.ShouldBindJSON(&req)

	assignment, err := h.Service.Complete(c.Request.Context(), id, volunteerID, req.Notes, req.Rating)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

type CancelAssignmentRequest struct {
	Reason string `json:"reason"`
}

func (h *AssignmentHandler) Cancel(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	// Body is optional; cancelling without a reason is allowed.
	var req CancelAssignmentRequest
	_ = c.ShouldBindJSON(&req)

	assignment, err := h.Service.Cancel(c.Request.Context(), id, actorID, c.GetString(middleware.CtxUserRole), req.Reason)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

func (h *AssignmentHandler) Get(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	assignment, err := h.Service.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// ListForVolunteer returns one volunteer's assignments. Volunteers may only
// read their own list; NGOs may read anyone's.
func (h *AssignmentHandler) ListForVolunteer(c *gin.Context) {
	volunteerID, ok := pathObjectID(c, "volunteerId")
	if !ok {
		return
	}
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	if c.GetString(middleware.CtxUserRole) == models.RoleVolunteer && volunteerID != actorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		return
	}

	assignments, err := h.Service.ListForVolunteer(c.Request.Context(), volunteerID, c.Query("status"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}

func (h *AssignmentHandler) ListAll(c *gin.Context) {
	assignments, err := h.Service.ListAll(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, assignments)
}
