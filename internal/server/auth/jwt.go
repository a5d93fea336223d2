// Package auth issues and verifies the signed access and refresh tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind separates access tokens from refresh tokens signed with the same key.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims is the token payload. Role is only present on access tokens.
type Claims struct {
	jwt.RegisteredClaims
	AccountID string       `json:"aid"`
	Role      *models.Role `json:"role,omitempty"`
	Kind      Kind         `json:"typ"`
}

type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// Issuer signs tokens with HS256. The secret is copied on construction and
// never mutated, so an Issuer is safe for concurrent use.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	parser     *jwt.Parser
	now        func() time.Time
}

func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if cfg.AccessTTL < 0 || cfg.RefreshTTL < 0 {
		return nil, errors.New("token ttl must not be negative")
	}

	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &Issuer{
		secret:     secret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		issuer:     cfg.Issuer,
		parser:     jwt.NewParser(opts...),
		now:        time.Now,
	}, nil
}

func (i *Issuer) IssueAccess(accountID string, role models.Role) (string, error) {
	return i.sign(accountID, &role, KindAccess, i.accessTTL)
}

func (i *Issuer) IssueRefresh(accountID string) (string, error) {
	return i.sign(accountID, nil, KindRefresh, i.refreshTTL)
}

func (i *Issuer) sign(accountID string, role *models.Role, kind Kind, ttl time.Duration) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("%w: empty account id", common.ErrorInvalidInput)
	}

	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		AccountID: accountID,
		Role:      role,
		Kind:      kind,
	}

	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %w", common.ErrorCryptoFailure, err)
	}
	return s, nil
}

// Verify checks signature and expiry. Every failure wraps ErrInvalidToken
// together with a cause (expired, malformed, signature) for logging.
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}

	_, err := i.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if claims.AccountID == "" || claims.AccountID != claims.Subject {
		return nil, fmt.Errorf("%w: %w: account id mismatch", common.ErrInvalidToken, common.ErrTokenMalformed)
	}
	switch claims.Kind {
	case KindAccess:
		if claims.Role == nil {
			return nil, fmt.Errorf("%w: %w: access token without role", common.ErrInvalidToken, common.ErrTokenMalformed)
		}
	case KindRefresh:
		if claims.Role != nil {
			return nil, fmt.Errorf("%w: %w: refresh token carries role", common.ErrInvalidToken, common.ErrTokenMalformed)
		}
	default:
		return nil, fmt.Errorf("%w: %w: %q", common.ErrInvalidToken, common.ErrTokenKind, claims.Kind)
	}

	return claims, nil
}

// VerifyKind is Verify plus a check that the token is of the wanted kind.
func (i *Issuer) VerifyKind(token string, want Kind) (*Claims, error) {
	claims, err := i.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Kind != want {
		return nil, fmt.Errorf("%w: %w: got %s, want %s", common.ErrInvalidToken, common.ErrTokenKind, claims.Kind, want)
	}
	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenSignature)
	default:
		return fmt.Errorf("%w: %w: %w", common.ErrInvalidToken, common.ErrTokenMalformed, err)
	}
}
