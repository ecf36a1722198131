package infra

import (
	"context"
	"fmt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/cache"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
)

// Infra holds all live infrastructure handles for the running service:
// one warehouse session per configured source, plus the Redis cache.
// Sessions are opened once at startup and released in Close — no
// process-wide connection singletons.
type Infra struct {
	Cache *cache.Cache

	sessions map[string]*warehouse.Session
	order    []string // config order, used for /api/sources

	redis *redis.Client
	mini  *miniredis.Miniredis // dev-mode internal instance; nil in production
}

// Setup opens warehouse sessions for every configured source and
// connects the Redis cache.
//   - dev=true: starts an in-process miniredis instance for the cache.
//   - dev=false: connects to cfg.Cache.Addr.
func Setup(ctx context.Context, cfg *Config, dev bool) (*Infra, error) {
	inf := &Infra{sessions: make(map[string]*warehouse.Session)}

	if dev {
		var err error
		inf.mini, err = miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("infra: miniredis: %w", err)
		}
		inf.redis = redis.NewClient(&redis.Options{Addr: inf.mini.Addr()})
		log.Info().Str("redis", inf.mini.Addr()).Msg("dev: in-process miniredis started")
	} else if cfg.Cache.Addr != "" {
		inf.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err := inf.redis.Ping(ctx).Err(); err != nil {
			inf.Close()
			return nil, fmt.Errorf("infra: redis ping: %w", err)
		}
	}
	if inf.redis != nil {
		inf.Cache = cache.New(inf.redis, cfg.Cache.TTL)
	}

	for _, src := range cfg.Sources {
		sess, err := warehouse.Open(ctx, src.Config)
		if err != nil {
			inf.Close()
			return nil, fmt.Errorf("infra: source %q: %w", src.Name, err)
		}
		inf.sessions[src.Name] = sess
		inf.order = append(inf.order, src.Name)
		log.Info().Str("source", src.Name).Str("type", src.Type).Msg("warehouse session opened")
	}

	return inf, nil
}

// Close releases all warehouse sessions and the Redis connection.
func (inf *Infra) Close() {
	ctx := context.Background()
	for name, sess := range inf.sessions {
		if err := sess.Close(ctx); err != nil {
			log.Warn().Err(err).Str("source", name).Msg("session close failed")
		}
	}
	if inf.redis != nil {
		_ = inf.redis.Close()
	}
	if inf.mini != nil {
		inf.mini.Close()
	}
}

// SourceNames returns the configured source names in config order.
func (inf *Infra) SourceNames() []string {
	out := make([]string, len(inf.order))
	copy(out, inf.order)
	return out
}

// Source returns the warehouse session for a configured source.
func (inf *Infra) Source(name string) (*warehouse.Session, bool) {
	sess, ok := inf.sessions[name]
	return sess, ok
}

// Ready pings every warehouse session and the cache; used by /readyz.
func (inf *Infra) Ready(ctx context.Context) map[string]error {
	checks := make(map[string]error, len(inf.sessions)+1)
	for name, sess := range inf.sessions {
		checks["source:"+name] = sess.Ping(ctx)
	}
	if inf.Cache != nil {
		checks["redis"] = inf.Cache.Ping(ctx)
	}
	return checks
}
