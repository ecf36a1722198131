// Package base содержит общую логику выборки для адаптеров поверх
// database/sql (SQLite, MySQL, MS SQL, ClickHouse, ODBC).
// Устраняет дублирование кода сканирования между адаптерами.
package base

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/query"
)

// timeLayouts — форматы временных меток, встречающиеся в выгрузках.
// Пробуются по порядку до первого успешного.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FetchRows выполняет диапазонный SELECT и сканирует результат в
// []series.Row. Строки с NULL или нечитаемой временной меткой
// отбрасываются и считаются (возвращается вторым значением) — это
// предупреждение для пользователя, не ошибка. Нечисловые значения
// полей трактуются как отсутствующие.
func FetchRows(ctx context.Context, db *sql.DB, d query.Dialect, spec warehouse.FetchSpec) ([]series.Row, int, error) {
	sqlText, args, err := query.BuildRangeSelect(d, spec.Table, spec.Columns, spec.TimeCol(), spec.Range.Start, spec.Range.End)
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	rows, err := db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", spec.Table, err)
	}
	defer rows.Close()

	return ScanRows(rows, spec.TimeCol())
}

// ScanRows сканирует *sql.Rows в []series.Row по контракту FetchRows
func ScanRows(rows *sql.Rows, timeColumn string) ([]series.Row, int, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, 0, fmt.Errorf("columns: %w", err)
	}

	timeIdx := -1
	for i, c := range cols {
		if strings.EqualFold(c, timeColumn) {
			timeIdx = i
			break
		}
	}
	if timeIdx < 0 {
		return nil, 0, fmt.Errorf("time column %q is not in the result set", timeColumn)
	}

	var (
		result  []series.Row
		skipped int
	)
	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}

		ts, ok := coerceTime(raw[timeIdx])
		if !ok {
			skipped++
			continue
		}

		row := series.Row{Timestamp: ts, Values: map[string]float64{}}
		for i, c := range cols {
			if i == timeIdx {
				continue
			}
			if v, ok := coerceFloat(raw[i]); ok {
				row.Values[c] = v
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rows: %w", err)
	}
	return result, skipped, nil
}

// ListStrings выполняет запрос, возвращающий одну строковую колонку
// (списки таблиц и колонок)
func ListStrings(ctx context.Context, db *sql.DB, sqlText string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// coerceTime приводит значение колонки времени к time.Time.
// NULL и нераспознанные форматы — не время (ok=false).
func coerceTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case string:
		return parseTime(t)
	case []byte:
		return parseTime(string(t))
	default:
		return time.Time{}, false
	}
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// coerceFloat приводит значение к float64. NULL, строки не-числа и
// прочие типы считаются отсутствующим значением.
func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
