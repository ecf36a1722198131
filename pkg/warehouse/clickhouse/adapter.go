package clickhouse

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/base"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/query"
)

// Compile-time check: Adapter должен реализовывать warehouse.Adapter
var _ warehouse.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	warehouse.Register("clickhouse", func() warehouse.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с ClickHouse
type Adapter struct {
	db *sql.DB
}

// Connect устанавливает подключение к ClickHouse
// DSN пример: "clickhouse://localhost:9000/starknet"
func (a *Adapter) Connect(ctx context.Context, cfg warehouse.Config) error {
	db, err := sql.Open("clickhouse", cfg.DSN)
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
	return "clickhouse"
}

// DatabaseVersion возвращает версию ClickHouse
func (a *Adapter) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	if err := a.db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return "ClickHouse " + version, nil
}

// ListTables возвращает список таблиц текущей БД
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	return base.ListStrings(ctx, a.db,
		"SELECT name FROM system.tables WHERE database = currentDatabase() ORDER BY name")
}

// ListColumns возвращает список колонок таблицы
func (a *Adapter) ListColumns(ctx context.Context, tableName string) ([]string, error) {
	return base.ListStrings(ctx, a.db,
		"SELECT name FROM system.columns WHERE database = currentDatabase() AND table = ? ORDER BY position",
		tableName)
}

// FetchRows выбирает строки по диапазону
func (a *Adapter) FetchRows(ctx context.Context, spec warehouse.FetchSpec) ([]series.Row, int, error) {
	return base.FetchRows(ctx, a.db, query.Standard, spec)
}
