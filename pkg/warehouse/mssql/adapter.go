package mssql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/base"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/query"
)

// Compile-time check: Adapter должен реализовывать warehouse.Adapter
var _ warehouse.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	warehouse.Register("mssql", func() warehouse.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с MS SQL Server
type Adapter struct {
	db     *sql.DB
	schema string // dbo или custom schema
}

// Connect устанавливает подключение к SQL Server
func (a *Adapter) Connect(ctx context.Context, cfg warehouse.Config) error {
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	a.db = db
	a.schema = cfg.Schema
	if a.schema == "" {
		a.schema = "dbo" // default schema
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

// Ping проверяет доступность БД
func (a *Adapter) Ping(ctx context.Context) error {
	if a.db == nil {
		return fmt.Errorf("adapter not connected")
	}
	return a.db.PingContext(ctx)
}

// DatabaseType возвращает тип хранилища
func (a *Adapter) DatabaseType() string {
	return "mssql"
}

// DatabaseVersion возвращает версию SQL Server
func (a *Adapter) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	if err := a.db.QueryRowContext(ctx, "SELECT @@VERSION").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return version, nil
}

// ListTables возвращает список таблиц схемы
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	return base.ListStrings(ctx, a.db,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = @p1 AND table_type = 'BASE TABLE' ORDER BY table_name",
		a.schema)
}

// ListColumns возвращает список колонок таблицы
func (a *Adapter) ListColumns(ctx context.Context, tableName string) ([]string, error) {
	return base.ListStrings(ctx, a.db,
		"SELECT column_name FROM information_schema.columns WHERE table_schema = @p1 AND table_name = @p2 ORDER BY ordinal_position",
		a.schema, tableName)
}

// FetchRows выбирает строки по диапазону
func (a *Adapter) FetchRows(ctx context.Context, spec warehouse.FetchSpec) ([]series.Row, int, error) {
	return base.FetchRows(ctx, a.db, query.MSSQL, spec)
}
