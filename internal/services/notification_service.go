package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"purifier-app/routine-service/internal/models"
	"purifier-app/routine-service/internal/repository"
	"purifier-app/routine-service/internal/utils"
	"purifier-app/routine-service/internal/utils/push"

	"github.com/redis/go-redis/v9"
)

// NotificationService — диспетчер уведомлений: слушает события устройств
// из Redis, сохраняет уведомления в Mongo и рассылает push владельцам.
type NotificationService struct {
	repo    repository.NotificationRepository
	devices *repository.DeviceRepository
	rdb     *redis.Client
	fcm     *push.FCMClient
}

func NewNotificationService(repo repository.NotificationRepository, devices *repository.DeviceRepository, rdb *redis.Client, fcm *push.FCMClient) *NotificationService {
	return &NotificationService{
		repo:    repo,
		devices: devices,
		rdb:     rdb,
		fcm:     fcm,
	}
}

// ProcessEvent обрабатывает событие из Redis и создаёт уведомление.
func (s *NotificationService) ProcessEvent(ctx context.Context, payload []byte) error {
	var event utils.DeviceEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to unmarshal device event: %w", err)
	}

	var notifType models.NotificationType
	var title string
	switch event.EventType {
	case string(models.TypeMidnightReset):
		notifType = models.TypeMidnightReset
		title = "Итоги дня"
	case string(models.TypeDeviceEvent):
		notifType = models.TypeDeviceEvent
		title = "Событие устройства"
	default:
		notifType = models.TypeSystemMessage
		title = "Системное уведомление"
	}

	notification := &models.Notification{
		OwnerID:  event.OwnerID,
		DeviceID: event.DeviceID,
		Title:    title,
		Message:  event.Message,
		Type:     notifType,
		Metadata: event.ExtraData,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to save notification: %w", err)
	}

	s.sendPush(ctx, notification)
	return nil
}

func (s *NotificationService) sendPush(ctx context.Context, notification *models.Notification) {
	if s.fcm == nil {
		return
	}

	device, err := s.devices.GetByID(ctx, notification.DeviceID)
	if err != nil {
		if !errors.Is(err, models.ErrDeviceNotFound) {
			log.Printf("[NOTIFIER] Failed to load device %s: %v", notification.DeviceID, err)
		}
		return
	}
	if device.FCMToken == "" {
		return
	}

	err = s.fcm.SendPushNotification(ctx, device.FCMToken, notification.Title, notification.Message, notification.Metadata)
	if err != nil {
		log.Printf("[NOTIFIER] Push failed for device %s: %v", notification.DeviceID, err)
	}
}

func (s *NotificationService) ListByOwner(ctx context.Context, ownerID string, limit int64) ([]models.Notification, error) {
	return s.repo.ListByOwner(ctx, ownerID, limit)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id string) error {
	return s.repo.MarkAsRead(ctx, id)
}

// StartRedisSubscriber слушает канал событий устройств до отмены контекста.
func (s *NotificationService) StartRedisSubscriber(ctx context.Context) {
	pubsub := s.rdb.Subscribe(ctx, utils.DeviceEventsChannel)
	defer pubsub.Close()

	log.Printf("[NOTIFIER] Subscribed to Redis channel: %s", utils.DeviceEventsChannel)

	ch := pubsub.Channel()
	for {
		select {
		case msg := <-ch:
			if err := s.ProcessEvent(ctx, []byte(msg.Payload)); err != nil {
				log.Printf("[NOTIFIER] Error processing event: %v", err)
			}
		case <-ctx.Done():
			log.Println("[NOTIFIER] Stopping Redis subscriber")
			return
		}
	}
}
