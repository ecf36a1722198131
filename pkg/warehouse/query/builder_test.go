package query

import (
	"strings"
	"testing"
	"time"
)

var (
	testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
)

func TestBuildRangeSelect_Postgres(t *testing.T) {
	sql, args, err := BuildRangeSelect(Postgres, "blocks", []string{"tx_count", "fees"}, "BLOCK_DATE", testStart, testEnd)
	if err != nil {
		t.Fatalf("BuildRangeSelect() error = %v", err)
	}

	want := `SELECT "tx_count", "fees", "BLOCK_DATE" FROM "blocks" WHERE "BLOCK_DATE" BETWEEN $1 AND $2 ORDER BY "BLOCK_DATE"`
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 {
		t.Fatalf("got %d args, want 2", len(args))
	}
	if args[0] != testStart || args[1] != testEnd {
		t.Errorf("args = %v, want [%v %v]", args, testStart, testEnd)
	}
}

func TestBuildRangeSelect_MSSQLPlaceholders(t *testing.T) {
	sql, _, err := BuildRangeSelect(MSSQL, "blocks", []string{"fees"}, "BLOCK_DATE", testStart, testEnd)
	if err != nil {
		t.Fatalf("BuildRangeSelect() error = %v", err)
	}
	if !strings.Contains(sql, "[BLOCK_DATE] BETWEEN @p1 AND @p2") {
		t.Errorf("sql = %q, want MSSQL brackets and @pN placeholders", sql)
	}
}

func TestBuildRangeSelect_MySQLQuoting(t *testing.T) {
	sql, _, err := BuildRangeSelect(MySQL, "blocks", []string{"fees"}, "BLOCK_DATE", testStart, testEnd)
	if err != nil {
		t.Fatalf("BuildRangeSelect() error = %v", err)
	}
	if !strings.Contains(sql, "`blocks`") || !strings.Contains(sql, "BETWEEN ? AND ?") {
		t.Errorf("sql = %q, want backtick quoting with ? placeholders", sql)
	}
}

func TestBuildRangeSelect_TimeColumnNotDuplicated(t *testing.T) {
	// Колонка времени уже среди выбранных — не добавляется второй раз
	sql, _, err := BuildRangeSelect(Standard, "blocks", []string{"BLOCK_DATE", "fees"}, "BLOCK_DATE", testStart, testEnd)
	if err != nil {
		t.Fatalf("BuildRangeSelect() error = %v", err)
	}
	if strings.Count(sql, `"BLOCK_DATE", `) != 1 {
		t.Errorf("sql = %q, time column listed more than once", sql)
	}
}

func TestBuildRangeSelect_NoColumns(t *testing.T) {
	if _, _, err := BuildRangeSelect(Standard, "blocks", nil, "BLOCK_DATE", testStart, testEnd); err == nil {
		t.Error("BuildRangeSelect(no columns) expected error, got nil")
	}
}

func TestValidateIdentifier(t *testing.T) {
	valid := []string{"blocks", "BLOCK_DATE", "tx_count_2", "FEES$"}
	for _, id := range valid {
		if err := ValidateIdentifier(id); err != nil {
			t.Errorf("ValidateIdentifier(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{"", "blo cks", `b"locks`, "users;drop", "tab`le", "x[y]"}
	for _, id := range invalid {
		if err := ValidateIdentifier(id); err == nil {
			t.Errorf("ValidateIdentifier(%q) = nil, want error", id)
		}
	}
}
