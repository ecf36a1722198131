package series

import "time"

// Granularity определяет шаг ресемплинга временного ряда
type Granularity string

const (
	Hourly     Granularity = "hourly"
	Daily      Granularity = "daily"
	Every2Days Granularity = "2d"
	Every5Days Granularity = "5d"
	Monthly    Granularity = "monthly"
)

// Width возвращает фиксированную ширину корзины.
// Для Monthly возвращает 0: месячный шаг календарный (28-31 день)
// и задается через Step, а не фиксированной длительностью.
func (g Granularity) Width() time.Duration {
	switch g {
	case Hourly:
		return time.Hour
	case Daily:
		return 24 * time.Hour
	case Every2Days:
		return 48 * time.Hour
	case Every5Days:
		return 5 * 24 * time.Hour
	default:
		return 0
	}
}

// Step возвращает t, сдвинутое на одну корзину вперед.
// Monthly шагает календарными месяцами через AddDate(0, 1, 0) —
// нормализация дат вроде 31 января следует правилам time.AddDate.
func (g Granularity) Step(t time.Time) time.Time {
	if g == Monthly {
		return t.AddDate(0, 1, 0)
	}
	return t.Add(g.Width())
}

// Label возвращает короткую метку интервала для заголовка графика
// и ответа API ("H", "D", "2D", "5D", "M" — как в исходных данных)
func (g Granularity) Label() string {
	switch g {
	case Hourly:
		return "H"
	case Daily:
		return "D"
	case Every2Days:
		return "2D"
	case Every5Days:
		return "5D"
	case Monthly:
		return "M"
	default:
		return string(g)
	}
}
