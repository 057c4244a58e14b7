package services

import (
	"strings"

	"purifier-app/routine-service/internal/models"
)

// GeoFinder — геокодер точка→таймзона. Реализуется tzf.DefaultFinder,
// в тестах подменяется заглушкой.
type GeoFinder interface {
	GetTimezoneName(lng float64, lat float64) string
}

type TimezoneResolver struct {
	finder GeoFinder
}

// NewTimezoneResolver создаёт резолвер. finder может быть nil —
// тогда работает только таблица городов.
func NewTimezoneResolver(finder GeoFinder) *TimezoneResolver {
	return &TimezoneResolver{finder: finder}
}

// Таблица город→таймзона для устройств без координат.
var cityTimezones = map[string]string{
	"almaty":      "Asia/Almaty",
	"amsterdam":   "Europe/Amsterdam",
	"astana":      "Asia/Almaty",
	"bangkok":     "Asia/Bangkok",
	"beijing":     "Asia/Shanghai",
	"berlin":      "Europe/Berlin",
	"bishkek":     "Asia/Bishkek",
	"cairo":       "Africa/Cairo",
	"chicago":     "America/Chicago",
	"delhi":       "Asia/Kolkata",
	"dubai":       "Asia/Dubai",
	"istanbul":    "Europe/Istanbul",
	"kyiv":        "Europe/Kyiv",
	"london":      "Europe/London",
	"los angeles": "America/Los_Angeles",
	"madrid":      "Europe/Madrid",
	"mexico city": "America/Mexico_City",
	"moscow":      "Europe/Moscow",
	"new york":    "America/New_York",
	"paris":       "Europe/Paris",
	"rome":        "Europe/Rome",
	"sao paulo":   "America/Sao_Paulo",
	"seoul":       "Asia/Seoul",
	"singapore":   "Asia/Singapore",
	"sydney":      "Australia/Sydney",
	"tashkent":    "Asia/Tashkent",
	"tokyo":       "Asia/Tokyo",
	"toronto":     "America/Toronto",
}

// Resolve определяет таймзону устройства. Функция тотальна: при любом входе
// возвращается валидный идентификатор, в худшем случае UTC с флагом
// LowConfidence, чтобы вызывающий мог перерезолвить позже.
func (r *TimezoneResolver) Resolve(cityName string, lat, lon *float64) models.TimezoneResolution {
	if r.finder != nil && lat != nil && lon != nil {
		if tz := r.finder.GetTimezoneName(*lon, *lat); tz != "" {
			return models.TimezoneResolution{TimezoneID: tz}
		}
	}

	city := strings.ToLower(strings.TrimSpace(cityName))
	if tz, ok := cityTimezones[city]; ok {
		return models.TimezoneResolution{TimezoneID: tz}
	}

	return models.TimezoneResolution{TimezoneID: "UTC", LowConfidence: true}
}
