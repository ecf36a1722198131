// Package cache кеширует в Redis ответы на повторяющиеся запросы
// просмотрщика: списки таблиц, списки колонок и готовые ресемплы.
// Кеш best-effort: промах или недоступный Redis означают поход в
// хранилище, не ошибку.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeebo/xxh3"

	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/core/series"
	"github.com/sejoroajose/Starknet-Data-Explorer/pkg/warehouse"
)

// Redis-ключи:
//
//	starknify:tables:<source>                 список таблиц источника
//	starknify:columns:<source>:<table>        список колонок таблицы
//	starknify:series:<xxh3>                   готовый ресемпл по ключу запроса
const keyPrefix = "starknify"

// Cache — Redis-кеш ответов просмотрщика с единым TTL
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New создает кеш поверх готового Redis-клиента
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// SeriesKey строит ключ кеша для запроса серии: xxh3 от канонической
// строки (источник, таблица, колонки, колонка времени, диапазон).
// Один и тот же запрос всегда дает один и тот же ключ.
func SeriesKey(source string, spec warehouse.FetchSpec) string {
	canonical := strings.Join([]string{
		source,
		spec.Table,
		strings.Join(spec.Columns, ","),
		spec.TimeCol(),
		spec.Range.Start.UTC().Format(time.RFC3339Nano),
		spec.Range.End.UTC().Format(time.RFC3339Nano),
	}, "|")
	return fmt.Sprintf("%s:series:%016x", keyPrefix, xxh3.HashString(canonical))
}

// Tables возвращает кешированный список таблиц источника
func (c *Cache) Tables(ctx context.Context, source string) ([]string, bool) {
	var tables []string
	ok := c.get(ctx, fmt.Sprintf("%s:tables:%s", keyPrefix, source), &tables)
	return tables, ok
}

// SetTables кеширует список таблиц источника
func (c *Cache) SetTables(ctx context.Context, source string, tables []string) error {
	return c.set(ctx, fmt.Sprintf("%s:tables:%s", keyPrefix, source), tables)
}

// Columns возвращает кешированный список колонок таблицы
func (c *Cache) Columns(ctx context.Context, source, table string) ([]string, bool) {
	var cols []string
	ok := c.get(ctx, fmt.Sprintf("%s:columns:%s:%s", keyPrefix, source, table), &cols)
	return cols, ok
}

// SetColumns кеширует список колонок таблицы
func (c *Cache) SetColumns(ctx context.Context, source, table string, cols []string) error {
	return c.set(ctx, fmt.Sprintf("%s:columns:%s:%s", keyPrefix, source, table), cols)
}

// Series возвращает кешированный ресемпл по ключу SeriesKey
func (c *Cache) Series(ctx context.Context, key string) (series.BucketedSeries, bool) {
	var s series.BucketedSeries
	ok := c.get(ctx, key, &s)
	return s, ok
}

// SetSeries кеширует готовый ресемпл
func (c *Cache) SetSeries(ctx context.Context, key string, s series.BucketedSeries) error {
	return c.set(ctx, key, s)
}

// Ping проверяет доступность Redis (для readiness-проверки)
func (c *Cache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Cache) get(ctx context.Context, key string, dst any) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false // redis.Nil или недоступный Redis — просто промах
	}
	return json.Unmarshal(data, dst) == nil
}

func (c *Cache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}
