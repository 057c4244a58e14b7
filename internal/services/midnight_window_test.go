package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Окно: [23:45, 24:00) ∪ [00:00, 00:15) локального времени.
func TestEvaluateMidnightWindow_Chicago(t *testing.T) {
	chi, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	cases := []struct {
		name     string
		local    time.Time
		inWindow bool
	}{
		{"23:50 внутри окна", time.Date(2025, 6, 10, 23, 50, 0, 0, chi), true},
		{"23:45 граница входа", time.Date(2025, 6, 10, 23, 45, 0, 0, chi), true},
		{"00:05 внутри окна", time.Date(2025, 6, 11, 0, 5, 0, 0, chi), true},
		{"00:14:59 последняя секунда", time.Date(2025, 6, 11, 0, 14, 59, 0, chi), true},
		{"23:44 до окна", time.Date(2025, 6, 10, 23, 44, 59, 0, chi), false},
		{"00:15 после окна", time.Date(2025, 6, 11, 0, 15, 0, 0, chi), false},
		{"полдень", time.Date(2025, 6, 10, 12, 0, 0, 0, chi), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := EvaluateMidnightWindow(tc.local.UTC(), "America/Chicago")
			require.NoError(t, err)
			assert.Equal(t, tc.inWindow, res.InWindow)
			assert.Equal(t, tc.local.Hour(), res.LocalTime.Hour())
			assert.Equal(t, tc.local.Minute(), res.LocalTime.Minute())
		})
	}
}

// Зоны с нецелым смещением тоже должны попадать в своё локальное окно.
func TestEvaluateMidnightWindow_FractionalOffset(t *testing.T) {
	ktm, err := time.LoadLocation("Asia/Kathmandu") // UTC+5:45
	require.NoError(t, err)

	local := time.Date(2025, 3, 1, 23, 59, 0, 0, ktm)
	res, err := EvaluateMidnightWindow(local.UTC(), "Asia/Kathmandu")
	require.NoError(t, err)
	assert.True(t, res.InWindow)

	// В этот же момент в UTC окно не открыто
	resUTC, err := EvaluateMidnightWindow(local.UTC(), "UTC")
	require.NoError(t, err)
	assert.False(t, resUTC.InWindow)
}

func TestEvaluateMidnightWindow_UnknownZone(t *testing.T) {
	_, err := EvaluateMidnightWindow(time.Now().UTC(), "Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestAlreadyRanToday(t *testing.T) {
	chi, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)

	t.Run("никогда не выполнялось", func(t *testing.T) {
		local := time.Date(2025, 6, 10, 23, 50, 0, 0, chi)
		assert.False(t, AlreadyRanToday(nil, local))
	})

	t.Run("запуск в 23:50, проверка в 00:05 той же ночи", func(t *testing.T) {
		// Окно переваливает через полночь: локальная дата сменилась,
		// но ночь — та же, повторный запуск запрещён.
		ran := time.Date(2025, 6, 10, 23, 50, 0, 0, chi).UTC()
		local := time.Date(2025, 6, 11, 0, 5, 0, 0, chi)
		assert.True(t, AlreadyRanToday(&ran, local))
	})

	t.Run("запуск в 00:05, проверка в 00:10", func(t *testing.T) {
		ran := time.Date(2025, 6, 11, 0, 5, 0, 0, chi).UTC()
		local := time.Date(2025, 6, 11, 0, 10, 0, 0, chi)
		assert.True(t, AlreadyRanToday(&ran, local))
	})

	t.Run("вчерашний запуск не блокирует сегодняшний", func(t *testing.T) {
		ran := time.Date(2025, 6, 9, 23, 50, 0, 0, chi).UTC()
		local := time.Date(2025, 6, 10, 23, 50, 0, 0, chi)
		assert.False(t, AlreadyRanToday(&ran, local))
	})

	t.Run("сравнение в таймзоне бакета, не в UTC", func(t *testing.T) {
		// 23:50 в Чикаго — это уже следующий день по UTC; наивное
		// сравнение UTC-дат дало бы ложный «уже выполнялось».
		tokyo, err := time.LoadLocation("Asia/Tokyo")
		require.NoError(t, err)

		ran := time.Date(2025, 6, 10, 23, 50, 0, 0, tokyo).UTC()
		nextNight := time.Date(2025, 6, 11, 23, 50, 0, 0, tokyo)
		assert.False(t, AlreadyRanToday(&ran, nextNight))
	})
}
