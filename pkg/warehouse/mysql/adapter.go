package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/base"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/query"
)

// Compile-time check: Adapter должен реализовывать warehouse.Adapter
var _ warehouse.Adapter = (*Adapter)(nil)

// Регистрация адаптера в глобальной фабрике
func init() {
	warehouse.Register("mysql", func() warehouse.Adapter {
		return &Adapter{}
	})
}

// Adapter представляет адаптер для работы с MySQL/MariaDB
type Adapter struct {
	db *sql.DB
}

// Connect устанавливает подключение к MySQL.
// parseTime=true добавляется в DSN: без него драйвер возвращает
// DATETIME как []byte, а не time.Time.
func (a *Adapter) Connect(ctx context.Context, cfg warehouse.Config) error {
	dsn := cfg.DSN
	if !strings.Contains(dsn, "parseTime") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}

	db, err := sql.Open("mysql", dsn)
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
	return "mysql"
}

// DatabaseVersion возвращает версию MySQL
func (a *Adapter) DatabaseVersion(ctx context.Context) (string, error) {
	var version string
	if err := a.db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to get version: %w", err)
	}
	return "MySQL " + version, nil
}

// ListTables возвращает список таблиц текущей БД
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	return base.ListStrings(ctx, a.db, "SHOW TABLES")
}

// ListColumns возвращает список колонок таблицы
func (a *Adapter) ListColumns(ctx context.Context, tableName string) ([]string, error) {
	return base.ListStrings(ctx, a.db,
		"SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position",
		tableName)
}

// FetchRows выбирает строки по диапазону
func (a *Adapter) FetchRows(ctx context.Context, spec warehouse.FetchSpec) ([]series.Row, int, error) {
	return base.FetchRows(ctx, a.db, query.MySQL, spec)
}
