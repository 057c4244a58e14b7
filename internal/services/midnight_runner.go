package services

import (
	"context"
	"log"
	"time"

	"purifier-app/routine-service/internal/models"
)

// BucketStore — срез операций хранилища бакетов, нужный раннеру.
type BucketStore interface {
	ListBuckets(ctx context.Context) ([]models.TimezoneBucket, error)
	MarkRun(ctx context.Context, timezoneID string, prev *time.Time, at time.Time) (bool, error)
}

// DeviceAction — бизнес-действие над одним устройством при срабатывании
// полуночной рутины. Содержимое раннеру безразлично.
type DeviceAction func(ctx context.Context, deviceID string) error

type MidnightRunner struct {
	buckets BucketStore
	action  DeviceAction
	now     func() time.Time
}

func NewMidnightRunner(buckets BucketStore, action DeviceAction) *MidnightRunner {
	return &MidnightRunner{
		buckets: buckets,
		action:  action,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock подменяет источник времени (для тестов и ручных прогонов).
func (r *MidnightRunner) WithClock(now func() time.Time) *MidnightRunner {
	r.now = now
	return r
}

// Run выполняет один проход по всем бакетам: для каждого независимо
// проверяет окно и защиту «уже выполнялось сегодня», исполняет действие по
// каждому устройству и отмечает запуск. Ошибка одного устройства или бакета
// не мешает остальным; фатальна только недоступность хранилища.
func (r *MidnightRunner) Run(ctx context.Context) (*models.RunSummary, error) {
	nowUTC := r.now()

	buckets, err := r.buckets.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.RunSummary{
		StartedAt: nowUTC,
		Statuses:  make([]models.BucketStatus, 0, len(buckets)),
	}

	for _, bucket := range buckets {
		summary.BucketsChecked++
		summary.Statuses = append(summary.Statuses, r.processBucket(ctx, bucket, nowUTC, summary))
	}

	log.Printf("[RUNNER] Checked %d buckets, executed %d, devices processed %d (failed %d)",
		summary.BucketsChecked, summary.BucketsExecuted, summary.DevicesProcessed, summary.DevicesFailed)
	return summary, nil
}

func (r *MidnightRunner) processBucket(ctx context.Context, bucket models.TimezoneBucket, nowUTC time.Time, summary *models.RunSummary) models.BucketStatus {
	status := models.BucketStatus{
		TimezoneID:  bucket.TimezoneID,
		DeviceCount: bucket.DeviceCount,
	}

	window, err := EvaluateMidnightWindow(nowUTC, bucket.TimezoneID)
	if err != nil {
		log.Printf("[RUNNER] Skipping bucket %s: %v", bucket.TimezoneID, err)
		status.Action = models.ActionSkipped
		return status
	}
	status.LocalTime = window.LocalTime
	status.InWindow = window.InWindow

	if !window.InWindow {
		status.Action = models.ActionNotDue
		return status
	}

	if AlreadyRanToday(bucket.LastMidnightRun, window.LocalTime) {
		status.AlreadyRan = true
		status.Action = models.ActionAlreadyRan
		return status
	}

	for _, deviceID := range bucket.DeviceIDs {
		if err := r.action(ctx, deviceID); err != nil {
			summary.DevicesFailed++
			log.Printf("[RUNNER] Device action failed for %s in %s: %v", deviceID, bucket.TimezoneID, err)
			continue
		}
		summary.DevicesProcessed++
	}

	// Отметка дня ставится даже при отказах отдельных устройств: повторы —
	// зона ответственности самого действия, не раннера.
	claimed, err := r.buckets.MarkRun(ctx, bucket.TimezoneID, bucket.LastMidnightRun, nowUTC)
	if err != nil {
		log.Printf("[RUNNER] Failed to mark run for %s: %v", bucket.TimezoneID, err)
	} else if !claimed {
		log.Printf("[RUNNER] Bucket %s already marked by a concurrent runner", bucket.TimezoneID)
	}

	summary.BucketsExecuted++
	status.Action = models.ActionExecuted
	return status
}
