package models

import "time"

type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// Device — запись очистителя воздуха в каталоге устройств.
// ID — серийный номер устройства, приходит от клиента при регистрации.
type Device struct {
	ID          string   `bson:"_id"                json:"id"`
	OwnerID     string   `bson:"owner_id"           json:"owner_id"`
	Name        string   `bson:"name"               json:"name"`
	CityName    string   `bson:"city_name"          json:"city_name"`
	Latitude    *float64 `bson:"latitude,omitempty"  json:"latitude,omitempty"`
	Longitude   *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Timezone    string   `bson:"timezone"           json:"timezone"`
	TimezoneLow bool     `bson:"timezone_low_confidence" json:"timezone_low_confidence"`
	FCMToken    string   `bson:"fcm_token,omitempty" json:"fcm_token,omitempty"`

	Online      bool        `bson:"online"       json:"online"`
	FanSpeed    int         `bson:"fan_speed"    json:"fan_speed"` // 0-10
	AutoMode    bool        `bson:"auto_mode"    json:"auto_mode"`
	Sensitivity Sensitivity `bson:"sensitivity"  json:"sensitivity"`

	// Суточные счётчики, обнуляются полуночной рутиной.
	DailyUsageMinutes int        `bson:"daily_usage_minutes" json:"daily_usage_minutes"`
	DailyPM25Peak     float64    `bson:"daily_pm25_peak"     json:"daily_pm25_peak"`
	LastReset         *time.Time `bson:"last_reset,omitempty" json:"last_reset,omitempty"`

	LastSeen  *time.Time `bson:"last_seen,omitempty" json:"last_seen,omitempty"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// TimezoneResolution — итог определения таймзоны устройства.
// LowConfidence выставляется, когда ни координаты, ни город не дали
// точного ответа и зона взята по умолчанию (UTC).
type TimezoneResolution struct {
	TimezoneID    string `json:"timezone_id"`
	LowConfidence bool   `json:"low_confidence"`
}
