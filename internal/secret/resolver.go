// Package secret resolves configuration values that reference secrets kept
// outside the config file, such as the token signing key.
//
// A value of the form "secretref:<provider>:<ref>" is handed to the named
// provider; any other value is returned unchanged.
package secret

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const refPrefix = "secretref:"

// Provider resolves secrets by reference string. Implementations must be
// safe for concurrent use and must never log the values they return.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
}

type Resolver struct {
	providers map[string]Provider
}

func NewResolver(providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
	return r
}

// ParseRef splits "secretref:<provider>:<ref>".
func ParseRef(value string) (provider, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, refPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

// Resolve returns the secret behind value. Empty results are rejected so a
// missing secret cannot silently turn into an empty signing key.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	if !strings.HasPrefix(value, refPrefix) {
		return value, nil
	}

	name, ref, ok := ParseRef(value)
	if !ok {
		return "", errors.New("malformed secret reference")
	}

	p, ok := r.providers[name]
	if !ok {
		return "", fmt.Errorf("secret provider %q is not registered", name)
	}

	out, err := p.Resolve(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("secret provider %q: %w", name, err)
	}
	if out == "" {
		return "", fmt.Errorf("secret provider %q returned empty value", name)
	}
	return out, nil
}
