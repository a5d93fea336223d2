// Package refreshtokens declares the ledger of refresh tokens that have
// already been exchanged, used for reuse detection.
package refreshtokens

import (
	"context"
	"time"
)

type Repository interface {
	// Consume records tokenID as used. It returns common.ErrRefreshTokenReused
	// if the id was recorded before.
	Consume(ctx context.Context, tokenID, accountID string, expiresAt time.Time) error

	// PurgeExpired deletes entries whose token expired before the given time
	// and returns how many were removed.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
