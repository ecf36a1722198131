// Package snowflake подключает warehouse-источники через ODBC.
// Нативного Go-драйвера в стеке нет; Snowflake и совместимые облачные
// хранилища достижимы через системный ODBC DSN.
package snowflake

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/alexbrainman/odbc"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/base"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/query"
)

// Compile-time check: Adapter должен реализовывать warehouse.Adapter
var _ warehouse.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	warehouse.Register("snowflake", func() warehouse.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет ODBC-адаптер для Snowflake-подобных хранилищ
type Adapter struct {
	db     *sql.DB
	schema string
}

// Connect устанавливает подключение через ODBC
// DSN пример: "DSN=starknify;UID=reader;PWD=secret"
func (a *Adapter) Connect(ctx context.Context, cfg warehouse.Config) error {
	db, err := sql.Open("odbc", cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = db
	a.schema = cfg.Schema
	if a.schema == "" {
		a.schema = "PUBLIC" // Snowflake default
	}
	return nil
}

// Close закрывает соединение с БД
func (a *Adapter) Close(ctx context.Context) error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Ping проверяет доступность хранилища
func (a *Adapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("adapter not connected")
	}
	return a.db.PingContext(ctx)
}

// DatabaseType возвращает тип хранилища
func (a *Adapter) DatabaseType() string {
	return "snowflake"
}

// DatabaseVersion возвращает версию хранилища
func (a *Adapter) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	if err := a.db.QueryRowContext(ctx, "SELECT CURRENT_VERSION()").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return "Snowflake " + version, nil
}

// ListTables возвращает список таблиц схемы
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	return base.ListStrings(ctx, a.db,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = ? AND table_type = 'BASE TABLE' ORDER BY table_name",
		a.schema)
}

// ListColumns возвращает список колонок таблицы
func (a *Adapter) ListColumns(ctx context.Context, tableName string) ([]string, error) {
	return base.ListStrings(ctx, a.db,
		"SELECT column_name FROM information_schema.columns WHERE table_schema = ? AND table_name = ? ORDER BY ordinal_position",
		a.schema, tableName)
}

// FetchRows выбирает строки по диапазону
func (a *Adapter) FetchRows(ctx context.Context, spec warehouse.FetchSpec) ([]series.Row, int, error) {
	return base.FetchRows(ctx, a.db, query.Standard, spec)
}
