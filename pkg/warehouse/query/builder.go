// Package query строит диапазонные SELECT-запросы с учетом синтаксиса
// конкретной СУБД: квотирование идентификаторов и формат плейсхолдеров
// различаются между диалектами, текст запроса — нет.
package query

import (
	"fmt"
	"strings"
	"time"
)

// Dialect описывает синтаксические особенности СУБД
type Dialect struct {
	// QuoteOpen / QuoteClose - символы квотирования идентификаторов
	// PostgreSQL/SQLite/ClickHouse: "..."
	// MySQL:                        `...`
	// MS SQL:                       [...]
	QuoteOpen  string
	QuoteClose string

	// Placeholder возвращает плейсхолдер для i-го аргумента (с 1)
	// PostgreSQL: $1, $2   MS SQL: @p1, @p2   остальные: ?
	Placeholder func(i int) string
}

var (
	// Standard — диалект с двойными кавычками и ? (SQLite, ClickHouse, ODBC)
	Standard = Dialect{QuoteOpen: `"`, QuoteClose: `"`, Placeholder: questionMark}

	// Postgres — двойные кавычки и нумерованные $N
	Postgres = Dialect{QuoteOpen: `"`, QuoteClose: `"`, Placeholder: func(i int) string {
		return fmt.Sprintf("$%d", i)
	}}

	// MySQL — обратные кавычки и ?
	MySQL = Dialect{QuoteOpen: "`", QuoteClose: "`", Placeholder: questionMark}

	// MSSQL — квадратные скобки и именованные @pN
	MSSQL = Dialect{QuoteOpen: "[", QuoteClose: "]", Placeholder: func(i int) string {
		return fmt.Sprintf("@p%d", i)
	}}
)

func questionMark(int) string { return "?" }

// QuoteIdentifier экранирует имя таблицы или колонки
func (d Dialect) QuoteIdentifier(identifier string) string {
	return d.QuoteOpen + identifier + d.QuoteClose
}

// ValidateIdentifier отклоняет имена, способные сломать квотирование.
// Имена таблиц и колонок приходят из пользовательского выбора, в
// параметры их не поместить — поэтому белый список символов.
func ValidateIdentifier(identifier string) error {
	if identifier == "" {
		return fmt.Errorf("empty identifier")
	}
	for _, r := range identifier {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '$':
		default:
			return fmt.Errorf("invalid identifier %q: character %q is not allowed", identifier, r)
		}
	}
	return nil
}

// BuildRangeSelect строит SELECT выбранных колонок плюс колонки
// времени с условием BETWEEN по диапазону. Колонка времени всегда
// присутствует в выборке и не дублируется; результат упорядочен по
// времени. Значения диапазона передаются параметрами, не текстом.
func BuildRangeSelect(d Dialect, table string, columns []string, timeColumn string, start, end time.Time) (string, []any, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", nil, fmt.Errorf("table: %w", err)
	}
	if err := ValidateIdentifier(timeColumn); err != nil {
		return "", nil, fmt.Errorf("time column: %w", err)
	}
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("no columns selected")
	}

	selected := make([]string, 0, len(columns)+1)
	hasTime := false
	for _, col := range columns {
		if err := ValidateIdentifier(col); err != nil {
			return "", nil, fmt.Errorf("column: %w", err)
		}
		if strings.EqualFold(col, timeColumn) {
			hasTime = true
		}
		selected = append(selected, d.QuoteIdentifier(col))
	}
	if !hasTime {
		selected = append(selected, d.QuoteIdentifier(timeColumn))
	}

	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s BETWEEN %s AND %s ORDER BY %s",
		strings.Join(selected, ", "),
		d.QuoteIdentifier(table),
		d.QuoteIdentifier(timeColumn),
		d.Placeholder(1),
		d.Placeholder(2),
		d.QuoteIdentifier(timeColumn),
	)
	return sql, []any{start, end}, nil
}
