package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"purifier-app/routine-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BucketRepository struct {
	col *mongo.Collection
}

func NewBucketRepository(db *mongo.Database) *BucketRepository {
	return &BucketRepository{col: db.Collection("timezone_buckets")}
}

// EncodeTimezoneKey кодирует IANA-идентификатор в безопасный ключ документа:
// слэши в "_id" нежелательны, заменяем на "__".
func EncodeTimezoneKey(timezoneID string) string {
	return strings.ReplaceAll(timezoneID, "/", "__")
}

func DecodeTimezoneKey(key string) string {
	return strings.ReplaceAll(key, "__", "/")
}

// AddDevice добавляет устройство в бакет таймзоны, создавая бакет при
// первом устройстве. Членство и список городов — множества ($setUnion),
// device_count пересчитывается в том же обновлении.
func (r *BucketRepository) AddDevice(ctx context.Context, deviceID, cityName, timezoneID string) error {
	now := time.Now().UTC()

	update := bson.A{
		bson.M{"$set": bson.M{
			"timezone_id": timezoneID,
			"device_ids": bson.M{"$setUnion": bson.A{
				bson.M{"$ifNull": bson.A{"$device_ids", bson.A{}}},
				bson.A{deviceID},
			}},
			"city_names": bson.M{"$setUnion": bson.A{
				bson.M{"$ifNull": bson.A{"$city_names", bson.A{}}},
				bson.A{cityName},
			}},
			"last_midnight_run": bson.M{"$ifNull": bson.A{"$last_midnight_run", nil}},
			"created_at":        bson.M{"$ifNull": bson.A{"$created_at", now}},
			"updated_at":        now,
		}},
		bson.M{"$set": bson.M{"device_count": bson.M{"$size": "$device_ids"}}},
	}

	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": EncodeTimezoneKey(timezoneID)},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}

// RemoveDevice убирает устройство из бакета и удаляет бакет, если он опустел.
// Отсутствие бакета — не фатальная ошибка (возможна зачистка устаревшего
// состояния), возвращаем models.ErrBucketNotFound, чтобы вызывающий решил сам.
func (r *BucketRepository) RemoveDevice(ctx context.Context, deviceID, timezoneID string) error {
	now := time.Now().UTC()
	key := EncodeTimezoneKey(timezoneID)

	update := bson.A{
		bson.M{"$set": bson.M{
			"device_ids": bson.M{"$setDifference": bson.A{
				bson.M{"$ifNull": bson.A{"$device_ids", bson.A{}}},
				bson.A{deviceID},
			}},
			"updated_at": now,
		}},
		bson.M{"$set": bson.M{"device_count": bson.M{"$size": "$device_ids"}}},
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": key}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return models.ErrBucketNotFound
	}

	// Пустые бакеты не храним. Фильтр по device_count защищает от гонки
	// с параллельным AddDevice.
	_, err = r.col.DeleteOne(ctx, bson.M{"_id": key, "device_count": 0})
	return err
}

// MoveDevice переносит устройство между бакетами. Если старой таймзоны нет
// (первая регистрация), шаг удаления пропускается.
func (r *BucketRepository) MoveDevice(ctx context.Context, deviceID, oldTimezoneID, newTimezoneID, cityName string) error {
	if oldTimezoneID != "" && oldTimezoneID != newTimezoneID {
		if err := r.RemoveDevice(ctx, deviceID, oldTimezoneID); err != nil && !errors.Is(err, models.ErrBucketNotFound) {
			return err
		}
	}
	return r.AddDevice(ctx, deviceID, cityName, newTimezoneID)
}

func (r *BucketRepository) GetBucket(ctx context.Context, timezoneID string) (*models.TimezoneBucket, error) {
	var bucket models.TimezoneBucket
	err := r.col.FindOne(ctx, bson.M{"_id": EncodeTimezoneKey(timezoneID)}).Decode(&bucket)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &bucket, nil
}

// ListBuckets возвращает все бакеты. Список ограничен числом реально
// используемых таймзон (десятки), а не числом устройств.
func (r *BucketRepository) ListBuckets(ctx context.Context) ([]models.TimezoneBucket, error) {
	cursor, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var buckets []models.TimezoneBucket
	if err := cursor.All(ctx, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// MarkRun отмечает выполнение рутины compare-and-set-ом по прежнему значению
// last_midnight_run: если другой инстанс уже отметил этот день, запись не
// пройдёт и вернётся false.
func (r *BucketRepository) MarkRun(ctx context.Context, timezoneID string, prev *time.Time, at time.Time) (bool, error) {
	filter := bson.M{"_id": EncodeTimezoneKey(timezoneID)}
	if prev == nil {
		filter["last_midnight_run"] = nil
	} else {
		filter["last_midnight_run"] = *prev
	}

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"last_midnight_run": at,
		"updated_at":        at,
	}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
