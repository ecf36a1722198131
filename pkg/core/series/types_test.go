package series

import (
	"errors"
	"testing"
	"time"
)

func TestNewTimeRange_EqualInstantsAllowed(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	r, err := NewTimeRange(ts, ts)
	if err != nil {
		t.Fatalf("NewTimeRange(equal instants) error = %v", err)
	}
	if r.Days() != 0 {
		t.Errorf("Days() = %d, want 0", r.Days())
	}
}

func TestNewTimeRange_StartAfterEnd(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := NewTimeRange(start, end)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("NewTimeRange(start > end) error = %v, want ErrInvalidRange", err)
	}
}

func TestTimeRange_DaysIsFloor(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		d    time.Duration
		want int
	}{
		{23 * time.Hour, 0},
		{24 * time.Hour, 1},
		{47 * time.Hour, 1},
		{10 * 24 * time.Hour, 10},
	}
	for _, tt := range tests {
		r := TimeRange{Start: start, End: start.Add(tt.d)}
		if got := r.Days(); got != tt.want {
			t.Errorf("Days(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestGranularity_Widths(t *testing.T) {
	tests := []struct {
		g    Granularity
		want time.Duration
	}{
		{Hourly, time.Hour},
		{Daily, 24 * time.Hour},
		{Every2Days, 48 * time.Hour},
		{Every5Days, 120 * time.Hour},
		{Monthly, 0}, // календарный шаг, фиксированной ширины нет
	}
	for _, tt := range tests {
		if got := tt.g.Width(); got != tt.want {
			t.Errorf("%s.Width() = %v, want %v", tt.g, got, tt.want)
		}
	}
}

func TestGranularity_MonthlyStepIsCalendar(t *testing.T) {
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	got := Monthly.Step(jan)
	want := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Monthly.Step(%v) = %v, want %v", jan, got, want)
	}
}

func TestGranularity_Labels(t *testing.T) {
	tests := []struct {
		g    Granularity
		want string
	}{
		{Hourly, "H"},
		{Daily, "D"},
		{Every2Days, "2D"},
		{Every5Days, "5D"},
		{Monthly, "M"},
	}
	for _, tt := range tests {
		if got := tt.g.Label(); got != tt.want {
			t.Errorf("%s.Label() = %q, want %q", tt.g, got, tt.want)
		}
	}
}
