package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"purifier-app/routine-service/internal/models"
	"purifier-app/routine-service/internal/repository"
	"purifier-app/routine-service/internal/utils"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
)

// DeviceService — каталог устройств плюс адаптер регистрации: любое
// создание/перемещение устройства синхронно обновляет его членство в
// бакете таймзоны.
type DeviceService struct {
	devices    *repository.DeviceRepository
	buckets    *repository.BucketRepository
	resolver   *TimezoneResolver
	rdb        *redis.Client
	mailer     EmailAlerter
	adminEmail string
}

// EmailAlerter шлёт операторские письма (низкая уверенность резолва и т.п.).
type EmailAlerter interface {
	SendAlert(to, subject, body string) error
}

func NewDeviceService(
	devices *repository.DeviceRepository,
	buckets *repository.BucketRepository,
	resolver *TimezoneResolver,
	rdb *redis.Client,
	mailer EmailAlerter,
	adminEmail string,
) *DeviceService {
	return &DeviceService{
		devices:    devices,
		buckets:    buckets,
		resolver:   resolver,
		rdb:        rdb,
		mailer:     mailer,
		adminEmail: adminEmail,
	}
}

// Register создаёт или обновляет устройство и помещает его в бакет
// своей таймзоны. Прежняя таймзона (если была) освобождается.
func (s *DeviceService) Register(ctx context.Context, device *models.Device) error {
	res := s.resolver.Resolve(device.CityName, device.Latitude, device.Longitude)

	oldTimezone := ""
	if existing, err := s.devices.GetByID(ctx, device.ID); err == nil {
		oldTimezone = existing.Timezone
	} else if !errors.Is(err, models.ErrDeviceNotFound) {
		return err
	}

	device.Timezone = res.TimezoneID
	device.TimezoneLow = res.LowConfidence
	if device.Sensitivity == "" {
		device.Sensitivity = models.SensitivityMedium
	}

	if err := s.devices.Upsert(ctx, device); err != nil {
		return err
	}

	if err := s.buckets.MoveDevice(ctx, device.ID, oldTimezone, res.TimezoneID, device.CityName); err != nil {
		return fmt.Errorf("failed to update timezone bucket: %w", err)
	}

	if res.LowConfidence {
		s.alertLowConfidence(device)
	}
	return nil
}

// Relocate переопределяет расположение устройства и переносит его
// между бакетами.
func (s *DeviceService) Relocate(ctx context.Context, deviceID, cityName string, lat, lon *float64) (*models.Device, error) {
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	res := s.resolver.Resolve(cityName, lat, lon)

	update := bson.M{
		"city_name":               cityName,
		"timezone":                res.TimezoneID,
		"timezone_low_confidence": res.LowConfidence,
	}
	if lat != nil {
		update["latitude"] = *lat
	}
	if lon != nil {
		update["longitude"] = *lon
	}
	if err := s.devices.Update(ctx, deviceID, update); err != nil {
		return nil, err
	}

	if err := s.buckets.MoveDevice(ctx, deviceID, device.Timezone, res.TimezoneID, cityName); err != nil {
		return nil, fmt.Errorf("failed to move device between buckets: %w", err)
	}

	device.CityName = cityName
	device.Timezone = res.TimezoneID
	device.TimezoneLow = res.LowConfidence
	device.Latitude = lat
	device.Longitude = lon

	if res.LowConfidence {
		s.alertLowConfidence(device)
	}
	return device, nil
}

// Deregister удаляет устройство и вычищает его из бакета.
func (s *DeviceService) Deregister(ctx context.Context, deviceID string) error {
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}

	if err := s.devices.Delete(ctx, deviceID); err != nil {
		return err
	}

	if err := s.buckets.RemoveDevice(ctx, deviceID, device.Timezone); err != nil {
		if errors.Is(err, models.ErrBucketNotFound) {
			log.Printf("[DEVICES] Bucket %s missing while deregistering %s, membership already stale", device.Timezone, deviceID)
			return nil
		}
		return err
	}
	return nil
}

func (s *DeviceService) GetByID(ctx context.Context, deviceID string) (*models.Device, error) {
	return s.devices.GetByID(ctx, deviceID)
}

// ResetDailyStats — действие полуночной рутины над одним устройством:
// обнуляет суточные счётчики и публикует событие для диспетчера уведомлений.
func (s *DeviceService) ResetDailyStats(ctx context.Context, deviceID string) error {
	device, err := s.devices.GetByID(ctx, deviceID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.devices.ResetDailyCounters(ctx, deviceID, now); err != nil {
		return err
	}

	utils.PublishDeviceEvent(ctx, s.rdb, utils.DeviceEvent{
		DeviceID:  deviceID,
		OwnerID:   device.OwnerID,
		EventType: string(models.TypeMidnightReset),
		Message:   fmt.Sprintf("Суточная статистика очистителя «%s» обнулена", device.Name),
	})
	return nil
}

func (s *DeviceService) alertLowConfidence(device *models.Device) {
	if s.mailer == nil || s.adminEmail == "" {
		return
	}
	subject := "Таймзона устройства определена по умолчанию"
	body := fmt.Sprintf(
		"Для устройства %s (город %q) не удалось определить таймзону, назначена UTC. Проверьте расположение вручную.",
		device.ID, device.CityName,
	)
	if err := s.mailer.SendAlert(s.adminEmail, subject, body); err != nil {
		log.Printf("[DEVICES] Failed to send low-confidence alert for %s: %v", device.ID, err)
	}
}
