package services

import (
	"testing"

	"purifier-app/routine-service/internal/models"
)

type stubFinder struct {
	result string
}

func (s stubFinder) GetTimezoneName(lng, lat float64) string { return s.result }

func ptr(v float64) *float64 { return &v }

func TestResolve_CityTable(t *testing.T) {
	r := NewTimezoneResolver(nil)

	cases := []struct {
		city string
		want string
	}{
		{"Chicago", "America/Chicago"},
		{"  chicago  ", "America/Chicago"},
		{"ALMATY", "Asia/Almaty"},
		{"new york", "America/New_York"},
	}
	for _, tc := range cases {
		got := r.Resolve(tc.city, nil, nil)
		if got.TimezoneID != tc.want {
			t.Errorf("Resolve(%q) = %q, want %q", tc.city, got.TimezoneID, tc.want)
		}
		if got.LowConfidence {
			t.Errorf("Resolve(%q) unexpectedly low-confidence", tc.city)
		}
	}
}

func TestResolve_Coordinates(t *testing.T) {
	r := NewTimezoneResolver(stubFinder{result: "Europe/Berlin"})

	got := r.Resolve("Nonexistent City", ptr(52.52), ptr(13.4))
	want := models.TimezoneResolution{TimezoneID: "Europe/Berlin"}
	if got != want {
		t.Errorf("Resolve with coordinates = %+v, want %+v", got, want)
	}
}

func TestResolve_CoordinatesMissFallsBackToCity(t *testing.T) {
	// Геокодер не нашёл зону (точка в океане) — используется таблица городов.
	r := NewTimezoneResolver(stubFinder{result: ""})

	got := r.Resolve("tokyo", ptr(0), ptr(0))
	if got.TimezoneID != "Asia/Tokyo" || got.LowConfidence {
		t.Errorf("Resolve fallback = %+v, want Asia/Tokyo high-confidence", got)
	}
}

func TestResolve_Total(t *testing.T) {
	// Резолв тотален: любой вход даёт валидную зону, в худшем случае UTC.
	r := NewTimezoneResolver(nil)

	for _, city := range []string{"Nonexistent City", "", "   ", "北京"} {
		got := r.Resolve(city, nil, nil)
		if got.TimezoneID != "UTC" {
			t.Errorf("Resolve(%q) = %q, want UTC", city, got.TimezoneID)
		}
		if !got.LowConfidence {
			t.Errorf("Resolve(%q) must be flagged low-confidence", city)
		}
	}
}
