// Package hasher derives and verifies salted password hashes with argon2id.
//
// The salt is generated per call and returned separately from the encoded
// hash. The encoded hash records the KDF parameters:
//
//	$argon2id$v=19$m=19456,t=2,p=1$<base64 key>
//
// so credentials created under older cost settings still verify.
package hasher

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	algorithmID = "argon2id"

	minMemoryKiB   uint32 = 8 * 1024
	minTime        uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
)

// randReader is a seam for simulating entropy failures in tests.
var randReader io.Reader = rand.Reader

// Params is the argon2id work factor.
type Params struct {
	Time        uint32
	MemoryKiB   uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams follow the OWASP minimum for argon2id.
func DefaultParams() Params {
	return Params{
		Time:        2,
		MemoryKiB:   19 * 1024,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func (p Params) validate() error {
	switch {
	case p.MemoryKiB < minMemoryKiB:
		return fmt.Errorf("hash memory must be >= %d KiB", minMemoryKiB)
	case p.Time < minTime:
		return errors.New("hash time must be >= 1")
	case p.Parallelism < minParallelism:
		return errors.New("hash parallelism must be >= 1")
	case p.SaltLength < minSaltLength:
		return fmt.Errorf("salt length must be >= %d bytes", minSaltLength)
	case p.KeyLength < minKeyLength:
		return fmt.Errorf("key length must be >= %d bytes", minKeyLength)
	}
	return nil
}

// Argon2 is safe for concurrent use; it holds only its immutable Params.
type Argon2 struct {
	params Params
}

func New(p Params) (*Argon2, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Argon2{params: p}, nil
}

// Hash returns a fresh random salt and the encoded hash of password under
// it. Only an entropy failure makes it fail, with ErrorCryptoFailure.
func (a *Argon2) Hash(password string) ([]byte, string, error) {
	salt := make([]byte, a.params.SaltLength)
	if _, err := io.ReadFull(randReader, salt); err != nil {
		return nil, "", fmt.Errorf("%w: read salt: %w", common.ErrorCryptoFailure, err)
	}

	key := argon2.IDKey([]byte(password), salt, a.params.Time, a.params.MemoryKiB, a.params.Parallelism, a.params.KeyLength)

	return salt, encode(a.params, key), nil
}

// Verify recomputes the hash of password with the stored salt and compares
// in constant time. A mismatch is (false, nil); only corrupt stored data
// yields ErrorCryptoFailure.
func (a *Argon2) Verify(password string, salt []byte, encoded string) (bool, error) {
	if len(salt) < int(minSaltLength) {
		return false, fmt.Errorf("%w: stored salt too short", common.ErrorCryptoFailure)
	}

	p, want, err := decode(encoded)
	if err != nil {
		return false, fmt.Errorf("%w: %w", common.ErrorCryptoFailure, err)
	}

	got := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Parallelism, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// NeedsRehash reports whether encoded was produced with weaker parameters
// than the current ones.
func (a *Argon2) NeedsRehash(encoded string) bool {
	p, key, err := decode(encoded)
	if err != nil {
		return true
	}
	return p.MemoryKiB < a.params.MemoryKiB ||
		p.Time < a.params.Time ||
		p.Parallelism < a.params.Parallelism ||
		uint32(len(key)) != a.params.KeyLength
}

func encode(p Params, key []byte) string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s",
		algorithmID, argon2.Version, p.MemoryKiB, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(key))
}

func decode(encoded string) (Params, []byte, error) {
	var p Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 5 || parts[0] != "" {
		return p, nil, errors.New("invalid hash format")
	}
	if parts[1] != algorithmID {
		return p, nil, fmt.Errorf("unsupported algorithm %q", parts[1])
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return p, nil, errors.New("unsupported argon2 version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Time, &p.Parallelism); err != nil {
		return p, nil, errors.New("invalid hash parameters")
	}
	if p.MemoryKiB < minMemoryKiB || p.Time < minTime || p.Parallelism < minParallelism {
		return p, nil, errors.New("hash parameters out of range")
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, errors.New("invalid hash encoding")
	}
	if len(key) < int(minKeyLength) {
		return p, nil, errors.New("invalid hash length")
	}
	p.KeyLength = uint32(len(key))

	return p, key, nil
}
