// starkserve — HTTP service of the Starknet data explorer.
//
// Usage:
//
//	starkserve [--dev] [--config path] [--addr :8080]
//
// Flags:
//
//	--dev     Start in dev mode: in-process miniredis instead of an external Redis
//	--config  Path to starkserve.yaml (default: configs/starkserve.yaml)
//	--addr    Override server.addr from config
//
// Environment:
//
//	STARKNIFY_REDIS_PASSWORD  Redis password (fallback when not set in config)
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sejoroajose/Starknet-Data-Explorer/internal/infra"
	"github.com/sejoroajose/Starknet-Data-Explorer/internal/viewer"

	// Warehouse adapter registrations — подключить достаточно, остальное уже написано
	_ "github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/clickhouse"
	_ "github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/mssql"
	_ "github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/mysql"
	_ "github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/postgres"
	_ "github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/snowflake"
	_ "github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse/sqlite"
)

func main() {
	dev := flag.Bool("dev", false, "dev mode: in-process miniredis instead of external Redis")
	configPath := flag.String("config", "configs/starkserve.yaml", "path to config file")
	addrOverride := flag.String("addr", "", "listen address override (e.g. :8080)")
	flag.Parse()

	// Pretty console log; switch to JSON in production via log.Logger = zerolog.New(os.Stderr)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := infra.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("config load failed")
	}
	if *addrOverride != "" {
		cfg.Server.Addr = *addrOverride
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inf, err := infra.Setup(ctx, cfg, *dev)
	if err != nil {
		log.Fatal().Err(err).Msg("infrastructure setup failed")
	}
	defer inf.Close()

	if *dev {
		log.Warn().Msg("──────────────────────────────────────────────")
		log.Warn().Msg("  DEV MODE ACTIVE — in-process miniredis      ")
		log.Warn().Msg("  DO NOT use in production                    ")
		log.Warn().Msg("──────────────────────────────────────────────")
	}

	router := viewer.NewRouter(inf, cfg.Server.RequestTimeout)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", cfg.Server.Addr).
			Bool("dev", *dev).
			Str("config", *configPath).
			Strs("sources", inf.SourceNames()).
			Msg("starkserve started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
	log.Info().Msg("stopped")
}
