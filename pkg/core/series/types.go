package series

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange возвращается когда начало диапазона позже конца.
// Такой запрос отклоняется до любых вычислений.
var ErrInvalidRange = errors.New("invalid time range: start is after end")

// TimeRange представляет запрошенный пользователем диапазон дат.
// Начало и конец могут совпадать (случай "один день").
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange создает TimeRange с проверкой инварианта start <= end
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if start.After(end) {
		return TimeRange{}, fmt.Errorf("%w: %s > %s",
			ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeRange{Start: start, End: end}, nil
}

// Validate проверяет инвариант start <= end
func (r TimeRange) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("%w: %s > %s",
			ErrInvalidRange, r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	}
	return nil
}

// Days возвращает длину диапазона в целых днях (floor)
func (r TimeRange) Days() int {
	return int(r.End.Sub(r.Start) / (24 * time.Hour))
}

// Row представляет одну строку выборки: временная метка плюс
// именованные числовые значения. Отсутствующее поле — отсутствует,
// а не равно нулю.
type Row struct {
	Timestamp time.Time
	Values    map[string]float64
}

// Bucket представляет одну корзину результата: граница интервала и
// среднее каждого поля по строкам, попавшим в интервал. Корзина без
// строк имеет пустую карту значений.
type Bucket struct {
	Time   time.Time          `json:"time"`
	Values map[string]float64 `json:"values"`
}

// BucketedSeries — результат ресемплинга: корзины в порядке
// возрастания границ плюс количество отброшенных строк (строки с
// нечитаемой временной меткой считаются и пропускаются, см. Skipped).
type BucketedSeries struct {
	Granularity Granularity `json:"granularity"`
	Buckets     []Bucket    `json:"buckets"`
	Skipped     int         `json:"skipped_rows"`
}
