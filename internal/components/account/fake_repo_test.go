package account

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// fakeRepo is an in-memory repoer used by the service and router tests.
type fakeRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*Account
	tokens   map[string]uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		accounts: make(map[uuid.UUID]*Account),
		tokens:   make(map[string]uuid.UUID),
	}
}

func (f *fakeRepo) Create(_ context.Context, email, passwordHash, name string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, acct := range f.accounts {
		if strings.EqualFold(acct.Email, email) {
			return nil, ErrDuplicateEmail
		}
	}

	now := time.Now().UTC()
	acct := &Account{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.accounts[acct.ID] = acct

	out := *acct
	return &out, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, acct := range f.accounts {
		if strings.EqualFold(acct.Email, email) {
			out := *acct
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acct, ok := f.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *acct
	return &out, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, name, passwordHash *string) (*Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acct, ok := f.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if name != nil {
		acct.Name = *name
	}
	if passwordHash != nil {
		acct.PasswordHash = *passwordHash
	}
	if name != nil || passwordHash != nil {
		acct.UpdatedAt = time.Now().UTC()
	}
	out := *acct
	return &out, nil
}

func (f *fakeRepo) UpsertToken(_ context.Context, accountID uuid.UUID, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Re-issue replaces the previous key for the account
	for k, id := range f.tokens {
		if id == accountID {
			delete(f.tokens, k)
		}
	}
	f.tokens[key] = accountID
	return nil
}

func (f *fakeRepo) GetAccountIDByToken(_ context.Context, key string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	accountID, ok := f.tokens[key]
	if !ok {
		return uuid.Nil, ErrNotFound
	}
	if acct, ok := f.accounts[accountID]; !ok || !acct.IsActive {
		return uuid.Nil, ErrNotFound
	}
	return accountID, nil
}

// setActive flips the is_active flag directly in the store
func (f *fakeRepo) setActive(id uuid.UUID, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if acct, ok := f.accounts[id]; ok {
		acct.IsActive = active
	}
}

// byEmail looks an account up without going through the repo interface
func (f *fakeRepo) byEmail(email string) *Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, acct := range f.accounts {
		if strings.EqualFold(acct.Email, email) {
			out := *acct
			return &out
		}
	}
	return nil
}
