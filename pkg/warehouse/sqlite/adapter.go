package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/base"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/query"
	_ "modernc.org/sqlite"
)

const driverSqlite = "sqlite"

// Compile-time check: Adapter должен реализовывать warehouse.Adapter
var _ warehouse.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	warehouse.Register("sqlite", func() warehouse.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с SQLite
type Adapter struct {
	db *sql.DB
}

// Connect устанавливает подключение к SQLite
func (a *Adapter) Connect(ctx context.Context, cfg warehouse.Config) error {
	db, err := sql.Open(driverSqlite, cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = db
	return nil
}

// Close закрывает соединение с БД
func (a *Adapter) Close(ctx context.Context) error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ping проверяет доступность БД
func (a *Adapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("adapter not connected")
	}
	return a.db.PingContext(ctx)
}

// DatabaseType возвращает тип хранилища
func (a *Adapter) DatabaseType() string {
	return "sqlite"
}

// DatabaseVersion возвращает версию SQLite
func (a *Adapter) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	err := a.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return "SQLite " + version, nil
}

// ListTables возвращает список таблиц
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	return base.ListStrings(ctx, a.db,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
}

// ListColumns возвращает список колонок таблицы
func (a *Adapter) ListColumns(ctx context.Context, tableName string) ([]string, error) {
	if err := query.ValidateIdentifier(tableName); err != nil {
		return nil, err
	}
	// PRAGMA не принимает параметры, имя подставляется после валидации
	rows, err := a.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", tableName))
	if err != nil {
		return nil, fmt.Errorf("table_info %s: %w", tableName, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// FetchRows выбирает строки по диапазону. В SQLite нет типа времени:
// метки хранятся текстом, поэтому границы диапазона передаются
// строками того же формата — сравнение time.Time с TEXT-колонкой
// зависит от драйвера и ненадежно.
func (a *Adapter) FetchRows(ctx context.Context, spec warehouse.FetchSpec) ([]series.Row, int, error) {
	sqlText, args, err := query.BuildRangeSelect(query.Standard, spec.Table, spec.Columns, spec.TimeCol(), spec.Range.Start, spec.Range.End)
	if err != nil {
		return nil, 0, fmt.Errorf("build query: %w", err)
	}
	for i, arg := range args {
		if t, ok := arg.(time.Time); ok {
			args[i] = t.Format("2006-01-02 15:04:05")
		}
	}

	rows, err := a.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query %s: %w", spec.Table, err)
	}
	defer rows.Close()

	return base.ScanRows(rows, spec.TimeCol())
}

// DB возвращает *sql.DB для прямого доступа (helper метод)
func (a *Adapter) DB() *sql.DB {
	return a.db
}
