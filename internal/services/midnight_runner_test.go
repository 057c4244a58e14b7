package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"purifier-app/routine-service/internal/models"
)

// fakeBucketStore имитирует хранилище с compare-and-set семантикой MarkRun.
type fakeBucketStore struct {
	buckets []models.TimezoneBucket
	listErr error
}

func (f *fakeBucketStore) ListBuckets(ctx context.Context) ([]models.TimezoneBucket, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.TimezoneBucket, len(f.buckets))
	copy(out, f.buckets)
	return out, nil
}

func (f *fakeBucketStore) MarkRun(ctx context.Context, timezoneID string, prev *time.Time, at time.Time) (bool, error) {
	for i := range f.buckets {
		if f.buckets[i].TimezoneID != timezoneID {
			continue
		}
		cur := f.buckets[i].LastMidnightRun
		if (cur == nil) != (prev == nil) {
			return false, nil
		}
		if cur != nil && !cur.Equal(*prev) {
			return false, nil
		}
		stamped := at
		f.buckets[i].LastMidnightRun = &stamped
		return true, nil
	}
	return false, models.ErrBucketNotFound
}

func chicagoInstant(t *testing.T, day, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatal(err)
	}
	return time.Date(2025, 6, day, hour, minute, 0, 0, loc).UTC()
}

func bucket(tz string, deviceIDs ...string) models.TimezoneBucket {
	return models.TimezoneBucket{
		Key:         tz,
		TimezoneID:  tz,
		DeviceIDs:   deviceIDs,
		DeviceCount: len(deviceIDs),
	}
}

func TestRun_ExecutesOncePerLocalNight(t *testing.T) {
	store := &fakeBucketStore{buckets: []models.TimezoneBucket{
		bucket("America/Chicago", "d1", "d2", "d3", "d4", "d5"),
	}}

	var executed []string
	runner := NewMidnightRunner(store, func(ctx context.Context, deviceID string) error {
		executed = append(executed, deviceID)
		return nil
	})

	// 23:50 по Чикаго — окно открыто, бакет ещё не выполнялся
	runner.WithClock(func() time.Time { return chicagoInstant(t, 10, 23, 50) })
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.BucketsExecuted != 1 || summary.DevicesProcessed != 5 {
		t.Fatalf("first run: executed=%d processed=%d, want 1/5", summary.BucketsExecuted, summary.DevicesProcessed)
	}
	if store.buckets[0].LastMidnightRun == nil {
		t.Fatal("first run must mark last_midnight_run")
	}

	// 00:05 той же ночи — защита «уже выполнялось» должна сработать,
	// несмотря на смену локальной календарной даты
	runner.WithClock(func() time.Time { return chicagoInstant(t, 11, 0, 5) })
	summary, err = runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.BucketsExecuted != 0 || summary.DevicesProcessed != 0 {
		t.Fatalf("second run: executed=%d processed=%d, want 0/0", summary.BucketsExecuted, summary.DevicesProcessed)
	}
	if got := summary.Statuses[0].Action; got != models.ActionAlreadyRan {
		t.Errorf("second run action = %s, want %s", got, models.ActionAlreadyRan)
	}
	if len(executed) != 5 {
		t.Errorf("devices executed total = %d, want 5", len(executed))
	}

	// Следующей ночью бакет снова должен выполниться
	runner.WithClock(func() time.Time { return chicagoInstant(t, 11, 23, 50) })
	summary, err = runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.BucketsExecuted != 1 {
		t.Fatalf("next night: executed=%d, want 1", summary.BucketsExecuted)
	}
}

func TestRun_NotDueOutsideWindow(t *testing.T) {
	store := &fakeBucketStore{buckets: []models.TimezoneBucket{
		bucket("America/Chicago", "d1"),
	}}
	runner := NewMidnightRunner(store, func(ctx context.Context, deviceID string) error {
		t.Fatal("action must not run outside the window")
		return nil
	}).WithClock(func() time.Time { return chicagoInstant(t, 10, 12, 0) })

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Statuses[0].Action != models.ActionNotDue {
		t.Errorf("action = %s, want %s", summary.Statuses[0].Action, models.ActionNotDue)
	}
	if store.buckets[0].LastMidnightRun != nil {
		t.Error("not-due bucket must not be marked")
	}
}

func TestRun_DeviceFailureDoesNotBlockBucket(t *testing.T) {
	store := &fakeBucketStore{buckets: []models.TimezoneBucket{
		bucket("America/Chicago", "d1", "d2", "d3"),
	}}
	runner := NewMidnightRunner(store, func(ctx context.Context, deviceID string) error {
		if deviceID == "d2" {
			return errors.New("device gone")
		}
		return nil
	}).WithClock(func() time.Time { return chicagoInstant(t, 10, 23, 50) })

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.DevicesProcessed != 2 || summary.DevicesFailed != 1 {
		t.Fatalf("processed=%d failed=%d, want 2/1", summary.DevicesProcessed, summary.DevicesFailed)
	}
	// День считается обработанным даже при отказе отдельного устройства
	if store.buckets[0].LastMidnightRun == nil {
		t.Error("bucket must be marked despite device failure")
	}
}

func TestRun_BucketsAreIsolated(t *testing.T) {
	// Невалидная зона в одном бакете не мешает выполнению другого.
	store := &fakeBucketStore{buckets: []models.TimezoneBucket{
		bucket("Mars/Olympus_Mons", "d1"),
		bucket("America/Chicago", "d2"),
	}}
	runner := NewMidnightRunner(store, func(ctx context.Context, deviceID string) error {
		return nil
	}).WithClock(func() time.Time { return chicagoInstant(t, 10, 23, 50) })

	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if summary.BucketsChecked != 2 || summary.BucketsExecuted != 1 {
		t.Fatalf("checked=%d executed=%d, want 2/1", summary.BucketsChecked, summary.BucketsExecuted)
	}
	if summary.Statuses[0].Action != models.ActionSkipped {
		t.Errorf("invalid zone action = %s, want %s", summary.Statuses[0].Action, models.ActionSkipped)
	}
}

func TestRun_StoreUnreachableIsFatal(t *testing.T) {
	store := &fakeBucketStore{listErr: errors.New("connection refused")}
	runner := NewMidnightRunner(store, func(ctx context.Context, deviceID string) error { return nil })

	if _, err := runner.Run(context.Background()); err == nil {
		t.Fatal("expected error when bucket store is unreachable")
	}
}
