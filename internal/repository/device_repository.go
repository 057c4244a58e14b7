package repository

import (
	"context"
	"errors"
	"time"

	"purifier-app/routine-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DeviceRepository struct {
	col *mongo.Collection
}

func NewDeviceRepository(db *mongo.Database) *DeviceRepository {
	return &DeviceRepository{col: db.Collection("devices")}
}

func (r *DeviceRepository) Upsert(ctx context.Context, d *models.Device) error {
	now := time.Now().UTC()
	d.UpdatedAt = now

	set := bson.M{
		"owner_id":                d.OwnerID,
		"name":                    d.Name,
		"city_name":               d.CityName,
		"timezone":                d.Timezone,
		"timezone_low_confidence": d.TimezoneLow,
		"online":                  d.Online,
		"fan_speed":               d.FanSpeed,
		"auto_mode":               d.AutoMode,
		"sensitivity":             d.Sensitivity,
		"updated_at":              d.UpdatedAt,
	}
	if d.Latitude != nil {
		set["latitude"] = *d.Latitude
	}
	if d.Longitude != nil {
		set["longitude"] = *d.Longitude
	}
	if d.FCMToken != "" {
		set["fcm_token"] = d.FCMToken
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}

	_, err := r.col.UpdateByID(ctx, d.ID, update, options.Update().SetUpsert(true))
	if err == nil && d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	return err
}

func (r *DeviceRepository) GetByID(ctx context.Context, id string) (*models.Device, error) {
	var device models.Device
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&device)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrDeviceNotFound
		}
		return nil, err
	}
	return &device, nil
}

func (r *DeviceRepository) Update(ctx context.Context, id string, update bson.M) error {
	update["updated_at"] = time.Now().UTC()
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrDeviceNotFound
	}
	return nil
}

func (r *DeviceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return models.ErrDeviceNotFound
	}
	return nil
}

// ResetDailyCounters обнуляет суточную статистику устройства.
func (r *DeviceRepository) ResetDailyCounters(ctx context.Context, id string, at time.Time) error {
	return r.Update(ctx, id, bson.M{
		"daily_usage_minutes": 0,
		"daily_pm25_peak":     0.0,
		"last_reset":          at,
	})
}
