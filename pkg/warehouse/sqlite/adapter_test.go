package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
)

// newTestAdapter создает подключенный адаптер поверх временного файла
// и наполняет его таблицей blocks
func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	ctx := context.Background()

	a := &Adapter{}
	err := a.Connect(ctx, warehouse.Config{
		Type: "sqlite",
		DSN:  filepath.Join(t.TempDir(), "viewer_test.db"),
	})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { a.Close(ctx) })

	stmts := []string{
		`CREATE TABLE blocks (BLOCK_DATE TEXT, tx_count REAL, fees REAL)`,
		`CREATE TABLE empty_table (BLOCK_DATE TEXT, v REAL)`,
		`INSERT INTO blocks VALUES ('2024-01-01 03:00:00', 2, 10)`,
		`INSERT INTO blocks VALUES ('2024-01-01 09:00:00', 4, NULL)`,
		`INSERT INTO blocks VALUES ('2024-01-03 12:00:00', 8, 30)`,
		`INSERT INTO blocks VALUES ('2024-01-02 xx:00:00', 100, 100)`, // битая метка внутри диапазона
		`INSERT INTO blocks VALUES (NULL, 100, 100)`,                  // NULL не проходит BETWEEN
		`INSERT INTO blocks VALUES ('2025-06-01 00:00:00', 999, 999)`, // вне диапазона
	}
	for _, stmt := range stmts {
		if _, err := a.DB().ExecContext(ctx, stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return a
}

func testRange(t *testing.T, start, end string) series.TimeRange {
	t.Helper()
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		t.Fatalf("bad start %q: %v", start, err)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		t.Fatalf("bad end %q: %v", end, err)
	}
	r, err := series.NewTimeRange(s, e)
	if err != nil {
		t.Fatalf("NewTimeRange: %v", err)
	}
	return r
}

func TestListTables(t *testing.T) {
	a := newTestAdapter(t)

	tables, err := a.ListTables(context.Background())
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2: %v", len(tables), tables)
	}
	if tables[0] != "blocks" || tables[1] != "empty_table" {
		t.Errorf("tables = %v, want [blocks empty_table]", tables)
	}
}

func TestListColumns(t *testing.T) {
	a := newTestAdapter(t)

	cols, err := a.ListColumns(context.Background(), "blocks")
	if err != nil {
		t.Fatalf("ListColumns() error = %v", err)
	}
	want := []string{"BLOCK_DATE", "tx_count", "fees"}
	if len(cols) != len(want) {
		t.Fatalf("got %d columns, want %d: %v", len(cols), len(want), cols)
	}
	for i, w := range want {
		if cols[i] != w {
			t.Errorf("column[%d] = %q, want %q", i, cols[i], w)
		}
	}
}

func TestListColumns_RejectsBadIdentifier(t *testing.T) {
	a := newTestAdapter(t)

	if _, err := a.ListColumns(context.Background(), `blocks"; DROP TABLE blocks; --`); err == nil {
		t.Error("ListColumns(malicious name) expected error, got nil")
	}
}

func TestFetchRows_RangeFilterAndSkippedCount(t *testing.T) {
	a := newTestAdapter(t)

	rows, skipped, err := a.FetchRows(context.Background(), warehouse.FetchSpec{
		Table:   "blocks",
		Columns: []string{"tx_count", "fees"},
		Range:   testRange(t, "2024-01-01", "2024-01-05"),
	})
	if err != nil {
		t.Fatalf("FetchRows() error = %v", err)
	}

	// Нечитаемая метка внутри диапазона считается и отбрасывается;
	// NULL-метка не проходит сам предикат BETWEEN и в выборку не попадает
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	// строка за 2025 год не проходит BETWEEN
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	// NULL в числовом поле — отсутствующее значение, не ноль
	if _, ok := rows[1].Values["fees"]; ok {
		t.Errorf("row[1].Values[fees] present = %v, want absent (NULL)", rows[1].Values["fees"])
	}
	if got := rows[1].Values["tx_count"]; got != 4 {
		t.Errorf("row[1].Values[tx_count] = %v, want 4", got)
	}
}

func TestFetchRows_EmptyRowSetIsNotAnError(t *testing.T) {
	a := newTestAdapter(t)

	rows, skipped, err := a.FetchRows(context.Background(), warehouse.FetchSpec{
		Table:   "empty_table",
		Columns: []string{"v"},
		Range:   testRange(t, "2024-01-01", "2024-01-05"),
	})
	if err != nil {
		t.Fatalf("FetchRows() error = %v", err)
	}
	if len(rows) != 0 || skipped != 0 {
		t.Errorf("rows = %d, skipped = %d, want 0/0", len(rows), skipped)
	}
}

func TestSession_OpenFetchClose(t *testing.T) {
	ctx := context.Background()
	a := newTestAdapter(t)

	// Сессия поверх готовой фабрики: тип sqlite уже зарегистрирован
	sess, err := warehouse.Open(ctx, warehouse.Config{Type: "sqlite", DSN: filepath.Join(t.TempDir(), "s.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := sess.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if err := sess.Close(ctx); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	// Close идемпотентен, использование после Close — ошибка
	if err := sess.Close(ctx); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := sess.Tables(ctx); err == nil {
		t.Error("Tables() after Close expected error, got nil")
	}

	_ = a // адаптер из newTestAdapter живет своей сессией
}

func TestSession_FetchRejectsInvalidRange(t *testing.T) {
	ctx := context.Background()

	sess, err := warehouse.Open(ctx, warehouse.Config{Type: "sqlite", DSN: filepath.Join(t.TempDir(), "r.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer sess.Close(ctx)

	bad := series.TimeRange{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	_, _, err = sess.Fetch(ctx, warehouse.FetchSpec{Table: "blocks", Columns: []string{"v"}, Range: bad})
	if !errors.Is(err, series.ErrInvalidRange) {
		t.Errorf("Fetch(start > end) error = %v, want ErrInvalidRange", err)
	}
}

func TestFactory_UnknownType(t *testing.T) {
	_, err := warehouse.New(context.Background(), warehouse.Config{Type: "oracle", DSN: "x"})
	if err == nil {
		t.Error("New(unknown type) expected error, got nil")
	}
}
