// starkctl — command-line companion of the data explorer: list tables
// and columns of a configured source, or fetch a range and write the
// resampled series to an XLSX workbook (optionally uploading it to S3).
//
// Usage:
//
//	starkctl tables  --config starkserve.yaml --source main
//	starkctl columns --config starkserve.yaml --source main --table blocks
//	starkctl plot    --config starkserve.yaml --source main --table blocks \
//	                 --columns tx_count,fees --start 2024-01-01 --end 2024-02-15 \
//	                 --out blocks.xlsx [--s3]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sejoroajose/Starknet-Data-Explorer/internal/infra"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/resample"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/export/xlsx"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"

	s3export "github.com/sejoroajose/Starknet-Data-Explorer/pkg/export/s3"

	// Warehouse adapter registrations
	_ "github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/clickhouse"
	_ "github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/mssql"
	_ "github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/mysql"
	_ "github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/postgres"
	_ "github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/snowflake"
	_ "github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/sqlite"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "tables":
		err = cmdTables(ctx, os.Args[2:])
	case "columns":
		err = cmdColumns(ctx, os.Args[2:])
	case "plot":
		err = cmdPlot(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fatal("%v", err)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: starkctl <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  tables    list tables of a source")
	fmt.Fprintln(os.Stderr, "  columns   list columns of a table")
	fmt.Fprintln(os.Stderr, "  plot      fetch a date range, resample it and write an XLSX workbook")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Run 'starkctl <command> -h' for command flags.")
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// openSource loads the config and opens a session for one named source.
// Каждый запуск CLI открывает и закрывает свою сессию.
func openSource(ctx context.Context, configPath, source string) (*warehouse.Session, *infra.Config, error) {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	for _, src := range cfg.Sources {
		if src.Name == source {
			sess, err := warehouse.Open(ctx, src.Config)
			if err != nil {
				return nil, nil, err
			}
			return sess, cfg, nil
		}
	}
	return nil, nil, fmt.Errorf("source %q is not in %s", source, configPath)
}

func cmdTables(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tables", flag.ExitOnError)
	configPath := fs.String("config", "configs/starkserve.yaml", "path to config file")
	source := fs.String("source", "", "source name from the config (required)")
	fs.Parse(args)

	if *source == "" {
		return fmt.Errorf("--source is required")
	}

	sess, _, err := openSource(ctx, *configPath, *source)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	tables, err := sess.Tables(ctx)
	if err != nil {
		return err
	}
	for _, t := range tables {
		fmt.Println(t)
	}
	return nil
}

func cmdColumns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("columns", flag.ExitOnError)
	configPath := fs.String("config", "configs/starkserve.yaml", "path to config file")
	source := fs.String("source", "", "source name from the config (required)")
	table := fs.String("table", "", "table name (required)")
	fs.Parse(args)

	if *source == "" || *table == "" {
		return fmt.Errorf("--source and --table are required")
	}

	sess, _, err := openSource(ctx, *configPath, *source)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	cols, err := sess.Columns(ctx, *table)
	if err != nil {
		return err
	}
	for _, c := range cols {
		fmt.Println(c)
	}
	return nil
}

func cmdPlot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	configPath := fs.String("config", "configs/starkserve.yaml", "path to config file")
	source := fs.String("source", "", "source name from the config (required)")
	table := fs.String("table", "", "table name (required)")
	columns := fs.String("columns", "", "comma-separated numeric columns (required)")
	timeColumn := fs.String("time-column", "", "timestamp column (default "+warehouse.DefaultTimeColumn+")")
	start := fs.String("start", "", "range start: YYYY-MM-DD or RFC3339 (required)")
	end := fs.String("end", "", "range end: YYYY-MM-DD (whole day) or RFC3339 (required)")
	out := fs.String("out", "", "output XLSX file (default <table>.xlsx)")
	toS3 := fs.Bool("s3", false, "also upload the workbook to the configured snapshots bucket")
	fs.Parse(args)

	if *source == "" || *table == "" || *columns == "" || *start == "" || *end == "" {
		return fmt.Errorf("--source, --table, --columns, --start and --end are required")
	}

	rng, err := parseRange(*start, *end)
	if err != nil {
		return err
	}

	sess, cfg, err := openSource(ctx, *configPath, *source)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	fields := splitColumns(*columns)
	rows, skipped, err := sess.Fetch(ctx, warehouse.FetchSpec{
		Table:      *table,
		Columns:    fields,
		TimeColumn: *timeColumn,
		Range:      rng,
	})
	if err != nil {
		return err
	}

	result, err := resample.Resample(rows, rng)
	if err != nil {
		return err
	}
	result.Skipped += skipped

	outFile := *out
	if outFile == "" {
		outFile = *table + ".xlsx"
	}
	if err := xlsx.Write(result, fields, outFile, *table); err != nil {
		return err
	}

	fmt.Printf("Wrote %s: %d buckets (%s), %d rows fetched", outFile, len(result.Buckets), result.Granularity, len(rows))
	if result.Skipped > 0 {
		fmt.Printf(", %d rows skipped", result.Skipped)
	}
	fmt.Println()

	if *toS3 {
		if !cfg.Snapshots.Enabled() {
			return fmt.Errorf("--s3 requested but snapshots.bucket is not configured")
		}
		location, err := uploadSnapshot(ctx, cfg.Snapshots, result, fields, *table)
		if err != nil {
			return err
		}
		fmt.Printf("Uploaded to %s\n", location)
	}
	return nil
}

func uploadSnapshot(ctx context.Context, cfg s3export.Config, result series.BucketedSeries, fields []string, table string) (string, error) {
	up, err := s3export.NewUploader(ctx, cfg)
	if err != nil {
		return "", err
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(xlsx.WriteTo(result, fields, table, pw))
	}()

	key := s3export.SnapshotKey(table, "xlsx", time.Now())
	return up.UploadSnapshot(ctx, key, pr,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

func splitColumns(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseRange parses the CLI date flags. A bare end date means the
// whole day and is widened to 23:59:59.
func parseRange(start, end string) (series.TimeRange, error) {
	s, _, err := parseInstant(start)
	if err != nil {
		return series.TimeRange{}, fmt.Errorf("--start: %w", err)
	}
	e, dateOnly, err := parseInstant(end)
	if err != nil {
		return series.TimeRange{}, fmt.Errorf("--end: %w", err)
	}
	if dateOnly {
		e = e.Add(24*time.Hour - time.Second)
	}
	return series.NewTimeRange(s, e)
}

func parseInstant(s string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	return time.Time{}, false, fmt.Errorf("unrecognized timestamp %q (want RFC3339 or YYYY-MM-DD)", s)
}
