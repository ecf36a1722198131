package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(rdb, ttl), mr
}

func testSpec(start, end time.Time) warehouse.FetchSpec {
	return warehouse.FetchSpec{
		Table:   "blocks",
		Columns: []string{"tx_count", "fees"},
		Range:   series.TimeRange{Start: start, End: end},
	}
}

func TestTables_MissThenHit(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if _, ok := c.Tables(ctx, "main"); ok {
		t.Fatal("Tables() hit on empty cache")
	}

	want := []string{"blocks", "transactions"}
	if err := c.SetTables(ctx, "main", want); err != nil {
		t.Fatalf("SetTables() error = %v", err)
	}

	got, ok := c.Tables(ctx, "main")
	if !ok {
		t.Fatal("Tables() miss after SetTables")
	}
	if len(got) != 2 || got[0] != "blocks" || got[1] != "transactions" {
		t.Errorf("Tables() = %v, want %v", got, want)
	}
}

func TestColumns_PerSourceAndTable(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.SetColumns(ctx, "main", "blocks", []string{"BLOCK_DATE", "fees"}); err != nil {
		t.Fatalf("SetColumns() error = %v", err)
	}

	if _, ok := c.Columns(ctx, "main", "transactions"); ok {
		t.Error("Columns() hit for a different table")
	}
	if _, ok := c.Columns(ctx, "backup", "blocks"); ok {
		t.Error("Columns() hit for a different source")
	}
	got, ok := c.Columns(ctx, "main", "blocks")
	if !ok || len(got) != 2 {
		t.Errorf("Columns(main, blocks) = %v, %v; want 2 columns, hit", got, ok)
	}
}

func TestSeries_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	key := SeriesKey("main", testSpec(start, start.AddDate(0, 0, 5)))

	s := series.BucketedSeries{
		Granularity: series.Daily,
		Buckets: []series.Bucket{
			{Time: start, Values: map[string]float64{"fees": 12.5}},
			{Time: start.AddDate(0, 0, 1), Values: map[string]float64{}},
		},
		Skipped: 1,
	}
	if err := c.SetSeries(ctx, key, s); err != nil {
		t.Fatalf("SetSeries() error = %v", err)
	}

	got, ok := c.Series(ctx, key)
	if !ok {
		t.Fatal("Series() miss after SetSeries")
	}
	if got.Granularity != series.Daily || got.Skipped != 1 {
		t.Errorf("Series() = %+v, want granularity daily, skipped 1", got)
	}
	if got.Buckets[0].Values["fees"] != 12.5 {
		t.Errorf("bucket[0] fees = %v, want 12.5", got.Buckets[0].Values["fees"])
	}
}

func TestSeriesKey_DeterministicAndSensitive(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 5)

	k1 := SeriesKey("main", testSpec(start, end))
	k2 := SeriesKey("main", testSpec(start, end))
	if k1 != k2 {
		t.Errorf("SeriesKey not deterministic: %q vs %q", k1, k2)
	}

	// другой источник, диапазон или набор колонок — другой ключ
	if k := SeriesKey("backup", testSpec(start, end)); k == k1 {
		t.Error("SeriesKey ignores source")
	}
	if k := SeriesKey("main", testSpec(start, end.AddDate(0, 0, 1))); k == k1 {
		t.Error("SeriesKey ignores range end")
	}
	other := testSpec(start, end)
	other.Columns = []string{"tx_count"}
	if k := SeriesKey("main", other); k == k1 {
		t.Error("SeriesKey ignores column selection")
	}
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	if err := c.SetTables(ctx, "main", []string{"blocks"}); err != nil {
		t.Fatalf("SetTables() error = %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, ok := c.Tables(ctx, "main"); ok {
		t.Error("Tables() hit after TTL expiry")
	}
}
