package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/query"
)

// Compile-time check: Adapter должен реализовывать warehouse.Adapter
var _ warehouse.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	warehouse.Register("postgres", func() warehouse.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с PostgreSQL
type Adapter struct {
	pool   *pgxpool.Pool
	schema string // public, custom, etc.
}

// Connect устанавливает подключение к PostgreSQL
func (a *Adapter) Connect(ctx context.Context, cfg warehouse.Config) error {
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.MaxConns > 0 {
		config.MaxConns = int32(cfg.MaxConns)
	} else {
		config.MaxConns = 10 // default
	}
	if cfg.MinConns > 0 {
		config.MinConns = int32(cfg.MinConns)
	} else {
		config.MinConns = 2 // default
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.pool = pool
	a.schema = cfg.Schema
	if a.schema == "" {
		a.schema = "public" // default schema
	}

	return nil
}

// Close закрывает connection pool
func (a *Adapter) Close(ctx context.Context) error {
	if a.pool != nil {
		a.pool.Close()
	}
	return nil
}

// Ping проверяет доступность БД
func (a *Adapter) Ping(ctx context.Context) error {
	if a.pool == nil {
		return fmt.Errorf("adapter not connected")
	}
	return a.pool.Ping(ctx)
}

// DatabaseType возвращает тип хранилища
func (a *Adapter) DatabaseType() string {
	return "postgres"
}

// DatabaseVersion возвращает версию PostgreSQL
func (a *Adapter) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	if err := a.pool.QueryRow(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// ListTables возвращает список таблиц схемы
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	rows, err := a.pool.Query(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE' ORDER BY table_name",
		a.schema)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// ListColumns возвращает список колонок таблицы
func (a *Adapter) ListColumns(ctx context.Context, tableName string) ([]string, error) {
	rows, err := a.pool.Query(ctx,
		"SELECT column_name FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2 ORDER BY ordinal_position",
		a.schema, tableName)
	if err != nil {
		return nil, fmt.Errorf("list columns %s: %w", tableName, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// FetchRows выбирает строки по диапазону через pgx pool
func (a *Adapter) FetchRows(ctx context.Context, spec warehouse.FetchSpec) ([]series.Row, int, error) {
	sqlText, args, err := query.BuildRangeSelect(query.Postgres, spec.Table, spec.Columns, spec.TimeCol(), spec.Range.Start, spec.Range.End)
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}

	rows, err := a.pool.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", spec.Table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	timeIdx := -1
	for i, fd := range fields {
		if strings.EqualFold(fd.Name, spec.TimeCol()) {
			timeIdx = i
			break
		}
	}
	if timeIdx < 0 {
		return nil, 0, fmt.Errorf("time column %q is not in the result set", spec.TimeCol())
	}

	var (
		result  []series.Row
		skipped int
	)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, 0, fmt.Errorf("scan: %w", err)
		}

		ts, ok := values[timeIdx].(time.Time)
		if !ok || ts.IsZero() {
			skipped++
			continue
		}

		row := series.Row{Timestamp: ts, Values: map[string]float64{}}
		for i, fd := range fields {
			if i == timeIdx {
				continue
			}
			if v, ok := toFloat(values[i]); ok {
				row.Values[fd.Name] = v
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rows: %w", err)
	}
	return result, skipped, nil
}

// toFloat приводит pgx-значение к float64; NULL и нечисловые типы —
// отсутствующее значение
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	default:
		return 0, false
	}
}

// Pool возвращает *pgxpool.Pool для прямого доступа
func (a *Adapter) Pool() *pgxpool.Pool {
	return a.pool
}
