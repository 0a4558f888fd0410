// Package redis keeps the logout ledger in Redis, letting several API
// replicas share revocations without touching the primary store.
package redis

import (
	"context"
	"time"

	"github.com/ponliv/marketplace/internal/marketplace/store"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "marketplace:revoked:"

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Ledger stores one key per revoked token fingerprint. Keys carry a PX
// expiry equal to the token's remaining lifetime, so Redis prunes them itself.
type Ledger struct {
	rdb *goredis.Client
}

var _ store.RevokedTokens = (*Ledger)(nil)

// NewLedger connects and pings the server.
func NewLedger(ctx context.Context, cfg Config) (*Ledger, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &Ledger{rdb: rdb}, nil
}

func (l *Ledger) Close() error { return l.rdb.Close() }

func (l *Ledger) Ping(ctx context.Context) error { return l.rdb.Ping(ctx).Err() }

func (l *Ledger) RevokeToken(ctx context.Context, fingerprint string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl < time.Millisecond {
		// Already expired; verification rejects it anyway.
		return nil
	}
	return l.rdb.SetNX(ctx, keyPrefix+fingerprint, time.Now().UTC().UnixMilli(), ttl).Err()
}

func (l *Ledger) IsTokenRevoked(ctx context.Context, fingerprint string, _ time.Time) (bool, error) {
	n, err := l.rdb.Exists(ctx, keyPrefix+fingerprint).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpiredRevokedTokens is a no-op; key expiry handles pruning.
func (l *Ledger) DeleteExpiredRevokedTokens(context.Context, time.Time) (int64, error) {
	return 0, nil
}
