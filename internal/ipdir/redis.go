package ipdir

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/ivugurura/radio-landing/internal/geo"
	"github.com/redis/go-redis/v9"
)

// appendScript stores the record only if the IP is new and, in that case,
// records its position in the order list.
var appendScript = redis.NewScript(`
local ok = redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2])
if ok == 1 then
  redis.call('RPUSH', KEYS[2], ARGV[1])
end
return ok
`)

// RedisDirectory keeps records in a hash keyed by IP plus a list holding
// insertion order, so several server instances can share one directory.
type RedisDirectory struct {
	rdb    *redis.Client
	prefix string
}

func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

func NewRedisDirectory(rdb *redis.Client, prefix string) *RedisDirectory {
	if prefix == "" {
		prefix = "ipdir"
	}
	return &RedisDirectory{rdb: rdb, prefix: prefix}
}

func (d *RedisDirectory) recordsKey() string { return d.prefix + ":records" }
func (d *RedisDirectory) orderKey() string   { return d.prefix + ":order" }

func (d *RedisDirectory) Lookup(ctx context.Context, ip string) (geo.Record, bool, error) {
	if d.rdb == nil {
		return geo.Record{}, false, ErrNotConfigured
	}
	s, err := d.rdb.HGet(ctx, d.recordsKey(), ip).Result()
	if errors.Is(err, redis.Nil) {
		return geo.Record{}, false, nil
	}
	if err != nil {
		return geo.Record{}, false, fmt.Errorf("ipdir: redis hget: %w", err)
	}
	var rec geo.Record
	if err := json.Unmarshal([]byte(s), &rec); err != nil {
		return geo.Record{}, false, fmt.Errorf("ipdir: redis decode %s: %w", ip, err)
	}
	return rec, true, nil
}

func (d *RedisDirectory) Append(ctx context.Context, rec geo.Record) error {
	if d.rdb == nil {
		return ErrNotConfigured
	}
	if rec.Query == "" {
		return errors.New("ipdir: record has no query ip")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("ipdir: encode: %w", err)
	}
	keys := []string{d.recordsKey(), d.orderKey()}
	if err := appendScript.Run(ctx, d.rdb, keys, rec.Query, string(b)).Err(); err != nil {
		return fmt.Errorf("ipdir: redis append: %w", err)
	}
	return nil
}

// Records returns every record in insertion order.
func (d *RedisDirectory) Records(ctx context.Context) ([]geo.Record, error) {
	if d.rdb == nil {
		return nil, ErrNotConfigured
	}
	ips, err := d.rdb.LRange(ctx, d.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("ipdir: redis lrange: %w", err)
	}
	if len(ips) == 0 {
		return nil, nil
	}
	vals, err := d.rdb.HMGet(ctx, d.recordsKey(), ips...).Result()
	if err != nil {
		return nil, fmt.Errorf("ipdir: redis hmget: %w", err)
	}
	out := make([]geo.Record, 0, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rec geo.Record
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("ipdir: redis decode %s: %w", ips[i], err)
		}
		out = append(out, rec)
	}
	return out, nil
}
