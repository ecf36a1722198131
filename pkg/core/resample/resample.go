// Package resample реализует политику бакетирования временных рядов:
// выбор гранулярности по длине диапазона, генерацию границ корзин и
// усреднение строк по корзинам. Пакет не выполняет I/O и не хранит
// состояния — все три операции чистые функции своих аргументов.
package resample

import (
	"sort"
	"time"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
)

// SelectGranularity выбирает гранулярность ресемплинга по длине
// диапазона в целых днях. Таблица выбора (первое совпадение):
//
//	d == 0       → Hourly
//	0 < d <= 10  → Daily
//	10 < d <= 30 → Every2Days
//	30 < d <= 60 → Every5Days
//	d > 60       → Monthly
//
// Диапазон со start > end — нарушение предусловия, ErrInvalidRange.
func SelectGranularity(r series.TimeRange) (series.Granularity, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}

	d := r.Days()
	switch {
	case d == 0:
		return series.Hourly, nil
	case d <= 10:
		return series.Daily, nil
	case d <= 30:
		return series.Every2Days, nil
	case d <= 60:
		return series.Every5Days, nil
	default:
		return series.Monthly, nil
	}
}

// BuildBoundaries возвращает границы корзин: start и каждый следующий
// шаг гранулярности, пока граница не превышает end. Последовательность
// никогда не пуста (минимум — сам start) и детерминирована: повторный
// вызов с теми же аргументами дает идентичный результат.
//
// Это единственное место где вычисляются края корзин — Aggregate и
// отрисовка используют ровно эти границы, расхождения быть не может.
func BuildBoundaries(r series.TimeRange, g series.Granularity) ([]time.Time, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var boundaries []time.Time
	for t := r.Start; !t.After(r.End); t = g.Step(t) {
		boundaries = append(boundaries, t)
	}
	return boundaries, nil
}

// Aggregate распределяет строки по полуоткрытым интервалам
// [boundaries[i], boundaries[i+1]); последний интервал закрыт с обеих
// сторон, поэтому строка ровно на конце диапазона не теряется.
//
// Внутри корзины для каждого поля считается среднее арифметическое по
// строкам где поле присутствует: отсутствующее значение исключается и
// из числителя и из знаменателя, а не считается нулем. Корзина без
// строк остается в результате с пустой картой значений — потребитель
// рисует разрыв, а не сжимает ось.
//
// Строки с нулевой (нечитаемой) временной меткой пропускаются и
// считаются; счетчик возвращается вторым значением.
func Aggregate(rows []series.Row, boundaries []time.Time) ([]series.Bucket, int) {
	buckets := make([]series.Bucket, len(boundaries))
	for i, b := range boundaries {
		buckets[i] = series.Bucket{Time: b, Values: map[string]float64{}}
	}
	if len(boundaries) == 0 {
		return buckets, 0
	}

	sums := make([]map[string]float64, len(boundaries))
	counts := make([]map[string]int, len(boundaries))

	skipped := 0
	for _, row := range rows {
		if row.Timestamp.IsZero() {
			skipped++
			continue
		}
		idx := bucketIndex(row.Timestamp, boundaries)
		if idx < 0 {
			continue // раньше первой границы: вне диапазона, контракт выборки
		}
		if sums[idx] == nil {
			sums[idx] = map[string]float64{}
			counts[idx] = map[string]int{}
		}
		for name, v := range row.Values {
			sums[idx][name] += v
			counts[idx][name]++
		}
	}

	for i := range buckets {
		for name, sum := range sums[i] {
			buckets[i].Values[name] = sum / float64(counts[i][name])
		}
	}
	return buckets, skipped
}

// bucketIndex возвращает индекс корзины для временной метки t.
// Все что после последней границы падает в последнюю корзину
// (закрытый правый край финального интервала).
func bucketIndex(t time.Time, boundaries []time.Time) int {
	if t.Before(boundaries[0]) {
		return -1
	}
	// первая граница > t, корзина — предыдущая
	i := sort.Search(len(boundaries), func(i int) bool {
		return boundaries[i].After(t)
	})
	return i - 1
}

// Resample — композиция трех операций на один пользовательский запрос:
// выбор гранулярности, границы, усреднение. Возвращает готовую к
// отрисовке серию или ErrInvalidRange.
func Resample(rows []series.Row, r series.TimeRange) (series.BucketedSeries, error) {
	g, err := SelectGranularity(r)
	if err != nil {
		return series.BucketedSeries{}, err
	}
	boundaries, err := BuildBoundaries(r, g)
	if err != nil {
		return series.BucketedSeries{}, err
	}
	buckets, skipped := Aggregate(rows, boundaries)
	return series.BucketedSeries{
		Granularity: g,
		Buckets:     buckets,
		Skipped:     skipped,
	}, nil
}
