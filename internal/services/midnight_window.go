package services

import (
	"fmt"
	"time"

	"purifier-app/routine-service/internal/models"
)

// Окно выполнения: локальное время в [23:45, 24:00) ∪ [00:00, 00:15).
// Несимметричное получасовое окно вокруг полуночи терпит пропуски тиков
// планировщика, при этом обработка не уезжает дальше 00:15 локального дня.
const routineDayShift = 15 * time.Minute

// EvaluateMidnightWindow переводит nowUTC в локальное время таймзоны и
// проверяет попадание в полуночное окно. Неизвестная зона — ошибка,
// вызывающий логирует и пропускает бакет.
func EvaluateMidnightWindow(nowUTC time.Time, timezoneID string) (models.WindowResult, error) {
	loc, err := time.LoadLocation(timezoneID)
	if err != nil {
		return models.WindowResult{}, fmt.Errorf("unknown timezone %q: %w", timezoneID, err)
	}

	local := nowUTC.In(loc)
	h, m := local.Hour(), local.Minute()
	inWindow := (h == 23 && m >= 45) || (h == 0 && m < 15)

	return models.WindowResult{InWindow: inWindow, LocalTime: local}, nil
}

// routineDate относит момент к «дню рутины»: обе половины окна,
// переваливающего через полночь, должны принадлежать одной дате, поэтому
// перед взятием календарной даты время сдвигается на 15 минут назад.
// Запуск в 23:50 дня D и повторная проверка в 00:05 дня D+1 дают одну дату D.
func routineDate(t time.Time) (int, time.Month, int) {
	return t.Add(-routineDayShift).Date()
}

// AlreadyRanToday сообщает, отмечался ли уже запуск бакета в текущем
// локальном дне. lastRun приводится к той же таймзоне, что и local:
// сравнение по UTC-дате рядом с полуночью давало бы двойные срабатывания.
func AlreadyRanToday(lastRun *time.Time, local time.Time) bool {
	if lastRun == nil {
		return false
	}

	y1, m1, d1 := routineDate(lastRun.In(local.Location()))
	y2, m2, d2 := routineDate(local)
	return y1 == y2 && m1 == m2 && d1 == d2
}
