package models

import "time"

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UsedRefreshToken is a ledger row recording that the refresh token with
// TokenID has already been exchanged.
type UsedRefreshToken struct {
	TokenID   string
	AccountID string
	ExpiresAt time.Time
	UsedAt    time.Time
}
