// server/internal/api/handlers/request_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"food-rescue-api-server/internal/lifecycle"
)

type RequestHandler struct {
	Service *lifecycle.RequestService
	Log     *zap.Logger
}

type CreateRequestRequest struct {
	DonationID string `json:"donationId" binding:"required"`
	Notes      string `json:"notes"`
}

func (h *RequestHandler) Create(c *gin.Context) {
	ngoID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	donationID, err := primitive.ObjectIDFromHex(req.DonationID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid donation id"})
		return
	}

	request, err := h.Service.Create(c.Request.Context(), ngoID, donationID, req.Notes)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (h *RequestHandler) List(c *gin.Context) {
	ngoID, ok := currentUserID(c)
	if !ok {
		return
	}

	requests, err := h.Service.List(c.Request.Context(), ngoID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	ngoID, ok := currentUserID(c)
	if !ok {
		return
	}

	request, err := h.Service.Get(c.Request.Context(), id, ngoID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *RequestHandler) Accept(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	ngoID, ok := currentUserID(c)
	if !ok {
		return
	}

	request, err := h.Service.Accept(c.Request.Context(), id, ngoID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

type AssignVolunteerRequest struct {
	VolunteerID string `json:"volunteerId" binding:"required"`
}

func (h *RequestHandler) AssignVolunteer(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	ngoID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req AssignVolunteerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	volunteerID, err := primitive.ObjectIDFromHex(req.VolunteerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid volunteer id"})
		return
	}

	request, assignment, err := h.Service.AssignVolunteer(c.Request.Context(), id, ngoID, volunteerID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": request, "assignment": assignment})
}

func (h *RequestHandler) Pickup(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	ngoID, ok := currentUserID(c)
	if !ok {
		return
	}

	request, err := h.Service.Pickup(c.Request.Context(), id, ngoID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *RequestHandler) Deliver(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	ngoID, ok := currentUserID(c)
	if !ok {
		return
	}

	request, err := h.Service.Deliver(c.Request.Context(), id, ngoID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

type CancelRequestRequest struct {
	Reason string `json:"reason"`
}

func (h *RequestHandler) Cancel(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	ngoID, ok := currentUserID(c)
	if !ok {
		return
	}

	// Body is optional; cancelling without a reason is allowed.
	var req CancelRequestRequest
	_ = c.ShouldBindJSON(&req)

	request, err := h.Service.Cancel(c.Request.Context(), id, ngoID, req.Reason)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *RequestHandler) Delete(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	ngoID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.Service.Delete(c.Request.Context(), id, ngoID); err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request deleted"})
}
