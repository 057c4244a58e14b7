package handler

import (
	"context"
	"errors"
	"net/http"

	"purifier-app/routine-service/internal/models"

	"github.com/gin-gonic/gin"
)

type DeviceDirectory interface {
	Register(ctx context.Context, device *models.Device) error
	Relocate(ctx context.Context, deviceID, cityName string, lat, lon *float64) (*models.Device, error)
	Deregister(ctx context.Context, deviceID string) error
	GetByID(ctx context.Context, deviceID string) (*models.Device, error)
}

type DeviceHandler struct {
	service DeviceDirectory
}

func NewDeviceHandler(service DeviceDirectory) *DeviceHandler {
	return &DeviceHandler{service: service}
}

func (h *DeviceHandler) Register(c *gin.Context) {
	var in models.DeviceRegistration
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := in.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device := &models.Device{
		ID:        in.DeviceID,
		OwnerID:   in.OwnerID,
		Name:      in.Name,
		CityName:  in.CityName,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		FCMToken:  in.FCMToken,
	}

	if err := h.service.Register(c.Request.Context(), device); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register device"})
		return
	}
	c.JSON(http.StatusCreated, device)
}

func (h *DeviceHandler) Relocate(c *gin.Context) {
	deviceID := c.Param("id")

	var in models.DeviceRelocation
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := in.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := h.service.Relocate(c.Request.Context(), deviceID, in.CityName, in.Latitude, in.Longitude)
	if err != nil {
		if errors.Is(err, models.ErrDeviceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to relocate device"})
		return
	}
	c.JSON(http.StatusOK, device)
}

func (h *DeviceHandler) Deregister(c *gin.Context) {
	deviceID := c.Param("id")

	if err := h.service.Deregister(c.Request.Context(), deviceID); err != nil {
		if errors.Is(err, models.ErrDeviceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deregister device"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *DeviceHandler) GetByID(c *gin.Context) {
	device, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrDeviceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "device not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch device"})
		return
	}
	c.JSON(http.StatusOK, device)
}
