package models

import "time"

// Credential is the salted secret backing exactly one Account.
//
// Hash holds the encoded KDF output together with the parameters used to
// derive it, so verification keeps working after the cost settings change.
type Credential struct {
	ID        string
	AccountID string
	Salt      []byte
	Hash      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
