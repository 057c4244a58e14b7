package models

import "time"

// TimezoneBucket группирует устройства по одной IANA-таймзоне.
// Ключ документа — закодированный идентификатор таймзоны (см. repository).
type TimezoneBucket struct {
	Key             string     `bson:"_id"               json:"-"`
	TimezoneID      string     `bson:"timezone_id"       json:"timezone_id"`
	DeviceIDs       []string   `bson:"device_ids"        json:"device_ids"`
	CityNames       []string   `bson:"city_names"        json:"city_names"`
	DeviceCount     int        `bson:"device_count"      json:"device_count"`
	LastMidnightRun *time.Time `bson:"last_midnight_run" json:"last_midnight_run"`
	CreatedAt       time.Time  `bson:"created_at"        json:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"        json:"updated_at"`
}

// WindowResult — результат проверки локального времени бакета.
type WindowResult struct {
	InWindow  bool      `json:"in_window"`
	LocalTime time.Time `json:"local_time"`
}

type BucketAction string

const (
	ActionExecuted   BucketAction = "executed"
	ActionNotDue     BucketAction = "not_due"
	ActionAlreadyRan BucketAction = "already_ran"
	ActionSkipped    BucketAction = "skipped"
)

// BucketStatus — строка статуса по одному бакету за один запуск.
type BucketStatus struct {
	TimezoneID  string       `json:"timezone_id"`
	LocalTime   time.Time    `json:"local_time"`
	DeviceCount int          `json:"device_count"`
	InWindow    bool         `json:"in_window"`
	AlreadyRan  bool         `json:"already_ran"`
	Action      BucketAction `json:"action"`
}

// RunSummary агрегирует результат одного прохода полуночной рутины.
type RunSummary struct {
	StartedAt        time.Time      `json:"started_at"`
	BucketsChecked   int            `json:"buckets_checked"`
	BucketsExecuted  int            `json:"buckets_executed"`
	DevicesProcessed int            `json:"devices_processed"`
	DevicesFailed    int            `json:"devices_failed"`
	Statuses         []BucketStatus `json:"statuses"`
}
