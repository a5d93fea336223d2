package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/hasher"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory IdentityStore with per-method error injection.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]*models.Account
	creds    map[string]*models.Credential

	findEmailErr  error
	findIDErr     error
	createAccErr  error
	createCredErr error
	findCredErr   error
	listErr       error
	replaceErr    error
	updateErr     error

	createAccountCalls int
	replaceCalls       int
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[string]*models.Account{},
		creds:    map[string]*models.Credential{},
	}
}

func (m *memStore) FindAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findEmailErr != nil {
		return nil, m.findEmailErr
	}
	for _, a := range m.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (m *memStore) FindAccountByID(_ context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findIDErr != nil {
		return nil, m.findIDErr
	}
	a, ok := m.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) CreateAccount(_ context.Context, email string, role models.Role) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createAccountCalls++
	if m.createAccErr != nil {
		return nil, m.createAccErr
	}
	for _, a := range m.accounts {
		if a.Email == email {
			return nil, fmt.Errorf("%w: email", common.ErrorConflict)
		}
	}
	a := &models.Account{ID: uuid.NewString(), Email: email, Role: role, CreatedAt: time.Now()}
	m.accounts[a.ID] = a
	cp := *a
	return &cp, nil
}

func (m *memStore) UpdateAccountRole(_ context.Context, id string, role models.Role) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	a.Role = role
	cp := *a
	return &cp, nil
}

func (m *memStore) UpdateAccountEmail(_ context.Context, id, email string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	a, ok := m.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	for _, other := range m.accounts {
		if other.ID != id && other.Email == email {
			return nil, fmt.Errorf("%w: email", common.ErrorConflict)
		}
	}
	a.Email = email
	cp := *a
	return &cp, nil
}

func (m *memStore) ListAccounts(context.Context) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *memStore) FindCredentialByAccountID(_ context.Context, accountID string) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findCredErr != nil {
		return nil, m.findCredErr
	}
	c, ok := m.creds[accountID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) CreateCredential(_ context.Context, accountID string, salt []byte, hash string) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createCredErr != nil {
		return nil, m.createCredErr
	}
	if _, ok := m.accounts[accountID]; !ok {
		return nil, common.ErrorNotFound
	}
	if _, ok := m.creds[accountID]; ok {
		return nil, fmt.Errorf("%w: credential", common.ErrorConflict)
	}
	c := &models.Credential{ID: uuid.NewString(), AccountID: accountID, Salt: salt, Hash: hash}
	m.creds[accountID] = c
	cp := *c
	return &cp, nil
}

func (m *memStore) ReplaceCredential(_ context.Context, accountID string, salt []byte, hash string) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceCalls++
	if m.replaceErr != nil {
		return nil, m.replaceErr
	}
	c, ok := m.creds[accountID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c.Salt, c.Hash = salt, hash
	cp := *c
	return &cp, nil
}

func (m *memStore) credentialCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.creds)
}

// countingHasher wraps a real hasher and counts Verify calls.
type countingHasher struct {
	PasswordHasher
	mu       sync.Mutex
	verifies int
	hashErr  error
}

func (h *countingHasher) Hash(pw string) ([]byte, string, error) {
	if h.hashErr != nil {
		return nil, "", h.hashErr
	}
	return h.PasswordHasher.Hash(pw)
}

func (h *countingHasher) Verify(pw string, salt []byte, hash string) (bool, error) {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.PasswordHasher.Verify(pw, salt, hash)
}

type memLedger struct {
	mu   sync.Mutex
	used map[string]bool
	err  error
}

func (l *memLedger) Consume(_ context.Context, tokenID, _ string, _ time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	if l.used == nil {
		l.used = map[string]bool{}
	}
	if l.used[tokenID] {
		return common.ErrRefreshTokenReused
	}
	l.used[tokenID] = true
	return nil
}

// recLogger keeps every message and its args for assertions.
type recLogger struct {
	mu      *sync.Mutex
	entries *[]string
}

func newRecLogger() recLogger {
	return recLogger{mu: &sync.Mutex{}, entries: &[]string{}}
}

func (r recLogger) add(level, msg string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*r.entries = append(*r.entries, fmt.Sprint(level, " ", msg, " ", args))
}

func (r recLogger) Debug(_ context.Context, msg string, args ...any) { r.add("DEBUG", msg, args...) }
func (r recLogger) Info(_ context.Context, msg string, args ...any)  { r.add("INFO", msg, args...) }
func (r recLogger) Warn(_ context.Context, msg string, args ...any)  { r.add("WARN", msg, args...) }
func (r recLogger) Error(_ context.Context, msg string, args ...any) { r.add("ERROR", msg, args...) }
func (r recLogger) With(...any) logging.Logger                       { return r }

func (r recLogger) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), *r.entries...)
}

func testHasher(t *testing.T) *countingHasher {
	t.Helper()
	h, err := hasher.New(hasher.Params{Time: 1, MemoryKiB: 8 * 1024, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)
	return &countingHasher{PasswordHasher: h}
}

func testIssuer(t *testing.T, accessTTL time.Duration) *auth.Issuer {
	t.Helper()
	iss, err := auth.NewIssuer(auth.Config{
		Secret:     []byte("test-secret"),
		AccessTTL:  accessTTL,
		RefreshTTL: time.Hour,
		Issuer:     "gophauth-test",
	})
	require.NoError(t, err)
	return iss
}

type fixture struct {
	svc    *AuthService
	store  *memStore
	hasher *countingHasher
	issuer *auth.Issuer
	logger recLogger
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store:  newMemStore(),
		hasher: testHasher(t),
		issuer: testIssuer(t, time.Minute),
		logger: newRecLogger(),
	}
	svc, err := NewAuthService(f.store, f.hasher, f.issuer, f.logger, opts...)
	require.NoError(t, err)
	f.svc = svc
	return f
}
