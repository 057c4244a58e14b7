package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"purifier-app/routine-service/internal/models"

	"github.com/gin-gonic/gin"
)

type RoutineRunner interface {
	Run(ctx context.Context) (*models.RunSummary, error)
}

type BucketReader interface {
	ListBuckets(ctx context.Context) ([]models.TimezoneBucket, error)
	GetBucket(ctx context.Context, timezoneID string) (*models.TimezoneBucket, error)
}

type NotificationReader interface {
	ListByOwner(ctx context.Context, ownerID string, limit int64) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id string) error
}

type RoutineHandler struct {
	runner        RoutineRunner
	buckets       BucketReader
	notifications NotificationReader
}

func NewRoutineHandler(runner RoutineRunner, buckets BucketReader, notifications NotificationReader) *RoutineHandler {
	return &RoutineHandler{
		runner:        runner,
		buckets:       buckets,
		notifications: notifications,
	}
}

// RunNow запускает полуночную рутину вне расписания.
func (h *RoutineHandler) RunNow(c *gin.Context) {
	summary, err := h.runner.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "routine run failed: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *RoutineHandler) ListBuckets(c *gin.Context) {
	buckets, err := h.buckets.ListBuckets(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list buckets"})
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// GetBucket принимает закодированный ключ таймзоны ("America__Chicago"):
// слэш в path-параметре не пройдёт через роутер.
func (h *RoutineHandler) GetBucket(c *gin.Context) {
	timezoneID := strings.ReplaceAll(c.Param("tz"), "__", "/")
	bucket, err := h.buckets.GetBucket(c.Request.Context(), timezoneID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bucket"})
		return
	}
	if bucket == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "bucket not found"})
		return
	}
	c.JSON(http.StatusOK, bucket)
}

func (h *RoutineHandler) GetNotifications(c *gin.Context) {
	ownerID := c.Query("owner_id")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner_id is required"})
		return
	}

	limit := int64(50)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifs, err := h.notifications.ListByOwner(c.Request.Context(), ownerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, notifs)
}

func (h *RoutineHandler) MarkNotificationRead(c *gin.Context) {
	if err := h.notifications.MarkAsRead(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "marked as read"})
}
