// Package ledger records consumed refresh-token ids so that a refresh token
// can be exchanged only once.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/redis/go-redis/v9"
)

// SQL keeps the ledger in the used_refresh_tokens table.
type SQL struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSQL(db *sql.DB, m repomanager.RepositoryManager) *SQL {
	return &SQL{db: db, repomanager: m}
}

func (l *SQL) Consume(ctx context.Context, tokenID, accountID string, expiresAt time.Time) error {
	return l.repomanager.RefreshTokens(l.db).Consume(ctx, tokenID, accountID, expiresAt)
}

// Purge drops entries for tokens that expired before now; such tokens fail
// signature checks anyway.
func (l *SQL) Purge(ctx context.Context, now time.Time) (int64, error) {
	return l.repomanager.RefreshTokens(l.db).PurgeExpired(ctx, now)
}

const redisKeyPrefix = "gophauth:rt:used:"

// Redis keeps one key per consumed token, expiring with the token itself.
type Redis struct {
	rdb redis.UniversalClient
	now func() time.Time
}

func NewRedis(rdb redis.UniversalClient) *Redis {
	return &Redis{rdb: rdb, now: time.Now}
}

func (l *Redis) Consume(ctx context.Context, tokenID, accountID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("empty token id")
	}

	ttl := expiresAt.Sub(l.now())
	if ttl < time.Second {
		ttl = time.Second
	}

	ok, err := l.rdb.SetNX(ctx, redisKeyPrefix+tokenID, accountID, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if !ok {
		return common.ErrRefreshTokenReused
	}
	return nil
}
