// server/internal/api/handlers/donation_handler.go
package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"food-rescue-api-server/internal/api/middleware"
	"food-rescue-api-server/internal/lifecycle"
	"food-rescue-api-server/internal/models"
	"food-rescue-api-server/internal/s3"
)

type DonationHandler struct {
	Service  *lifecycle.DonationService
	Uploader *s3.Uploader
	Log      *zap.Logger
}

type CreateDonationRequest struct {
	FoodType          string   `json:"foodType" binding:"required"`
	FoodName          string   `json:"foodName" binding:"required"`
	Description       string   `json:"description"`
	Quantity          float64  `json:"quantity" binding:"required"`
	Unit              string   `json:"unit" binding:"required"`
	EstimatedServings int      `json:"estimatedServings" binding:"required"`
	DietaryTags       []string `json:"dietaryTags"`
	Allergens         []string `json:"allergens"`

	PreparationDate  string `json:"preparationDate" binding:"required"`
	PreparationTime  string `json:"preparationTime" binding:"required"`
	ExpiryDate       string `json:"expiryDate" binding:"required"`
	ExpiryTime       string `json:"expiryTime" binding:"required"`
	StorageCondition string `json:"storageCondition" binding:"required"`

	Hygiene models.Hygiene `json:"hygiene"`

	PickupAddress      string           `json:"pickupAddress" binding:"required"`
	City               string           `json:"city" binding:"required"`
	PickupDeadline     string           `json:"pickupDeadline" binding:"required"`
	PickupInstructions string           `json:"pickupInstructions"`
	Location           *models.GeoPoint `json:"location"`
}

func (h *DonationHandler) Create(c *gin.Context) {
	donorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	donation := &models.Donation{
		FoodType:           req.FoodType,
		FoodName:           req.FoodName,
		Description:        req.Description,
		Quantity:           req.Quantity,
		Unit:               req.Unit,
		EstimatedServings:  req.EstimatedServings,
		DietaryTags:        req.DietaryTags,
		Allergens:          req.Allergens,
		PreparationDate:    req.PreparationDate,
		PreparationTime:    req.PreparationTime,
		ExpiryDate:         req.ExpiryDate,
		ExpiryTime:         req.ExpiryTime,
		StorageCondition:   req.StorageCondition,
		Hygiene:            req.Hygiene,
		PickupAddress:      req.PickupAddress,
		City:               req.City,
		PickupDeadline:     req.PickupDeadline,
		PickupInstructions: req.PickupInstructions,
		Location:           req.Location,
	}

	if err := h.Service.Create(c.Request.Context(), donorID, donation); err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusCreated, donation)
}

// List returns the donor's own donations, optionally filtered by status.
func (h *DonationHandler) List(c *gin.Context) {
	donorID, ok := currentUserID(c)
	if !ok {
		return
	}

	donations, err := h.Service.ListByDonor(c.Request.Context(), donorID, c.Query("status"))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, donations)
}

// Available lists the pending, non-expired donations open for NGO requests.
func (h *DonationHandler) Available(c *gin.Context) {
	donations, err := h.Service.ListAvailable(c.Request.Context())
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, donations)
}

func (h *DonationHandler) Get(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	donation, err := h.Service.Get(c.Request.Context(), id, actorID, c.GetString(middleware.CtxUserRole))
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, donation)
}

type UpdateDonationRequest struct {
	FoodType           *string          `json:"foodType"`
	FoodName           *string          `json:"foodName"`
	Description        *string          `json:"description"`
	Quantity           *float64         `json:"quantity"`
	Unit               *string          `json:"unit"`
	EstimatedServings  *int             `json:"estimatedServings"`
	DietaryTags        *[]string        `json:"dietaryTags"`
	Allergens          *[]string        `json:"allergens"`
	PreparationDate    *string          `json:"preparationDate"`
	PreparationTime    *string          `json:"preparationTime"`
	ExpiryDate         *string          `json:"expiryDate"`
	ExpiryTime         *string          `json:"expiryTime"`
	StorageCondition   *string          `json:"storageCondition"`
	PickupAddress      *string          `json:"pickupAddress"`
	City               *string          `json:"city"`
	PickupDeadline     *string          `json:"pickupDeadline"`
	PickupInstructions *string          `json:"pickupInstructions"`
	Location           *models.GeoPoint `json:"location"`
}

func (h *DonationHandler) Update(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	donorID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	donation, err := h.Service.Update(c.Request.Context(), id, donorID, lifecycle.DonationUpdate{
		FoodType:           req.FoodType,
		FoodName:           req.FoodName,
		Description:        req.Description,
		Quantity:           req.Quantity,
		Unit:               req.Unit,
		EstimatedServings:  req.EstimatedServings,
		DietaryTags:        req.DietaryTags,
		Allergens:          req.Allergens,
		PreparationDate:    req.PreparationDate,
		PreparationTime:    req.PreparationTime,
		ExpiryDate:         req.ExpiryDate,
		ExpiryTime:         req.ExpiryTime,
		StorageCondition:   req.StorageCondition,
		PickupAddress:      req.PickupAddress,
		City:               req.City,
		PickupDeadline:     req.PickupDeadline,
		PickupInstructions: req.PickupInstructions,
		Location:           req.Location,
	})
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, donation)
}

func (h *DonationHandler) Delete(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	donorID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.Service.Delete(c.Request.Context(), id, donorID); err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Donation deleted"})
}

// UploadPhoto stores the food photo in S3 and records its URL.
func (h *DonationHandler) UploadPhoto(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Photo storage is not configured"})
		return
	}

	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	donorID, ok := currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A photo file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read the uploaded file"})
		return
	}
	defer file.Close()

	objectKey := "donations/" + uuid.New().String() + filepath.Ext(fileHeader.Filename)
	url, err := h.Uploader.UploadFile(c.Request.Context(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		h.Log.Error("photo upload failed", zap.String("donation", id.Hex()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
		return
	}

	donation, err := h.Service.SetPhoto(c.Request.Context(), id, donorID, url)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, donation)
}

// Accept is the direct acceptance path for NGOs and volunteers.
func (h *DonationHandler) Accept(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	donation, err := h.Service.Accept(c.Request.Context(), id, actorID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, donation)
}

func (h *DonationHandler) Pickup(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	donation, err := h.Service.MarkPickedUp(c.Request.Context(), id, actorID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, donation)
}

func (h *DonationHandler) Deliver(c *gin.Context) {
	id, ok := pathObjectID(c, "id")
	if !ok {
		return
	}
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	donation, err := h.Service.MarkDelivered(c.Request.Context(), id, actorID)
	if err != nil {
		respondError(c, h.Log, err)
		return
	}

	c.JSON(http.StatusOK, donation)
}
