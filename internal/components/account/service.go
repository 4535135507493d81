package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/husteen/accounts/internal/shared/config"
)

var ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")

// passwords must be strictly longer than this
const minPasswordLen = 5

// bcrypt refuses anything longer than 72 bytes, so the policy caps there too
const maxPasswordBytes = 72

// tokenBytes of entropy per issued token, hex encoded to a 40-char key
const tokenBytes = 20

// dummyHash is compared against when the email is unknown, so that lookups
// for existing and missing accounts take comparable time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type (
	// ValidationError reports a rejected request field
	ValidationError struct {
		Field  string
		Reason string
	}

	servicer interface {
		CreateAccount(ctx context.Context, req CreateAccountIn) (*CreateAccountOut, error)
		IssueToken(ctx context.Context, req TokenIn) (*TokenOut, error)
		Profile(ctx context.Context, accountID uuid.UUID) (*ProfileOut, error)
		UpdateProfile(ctx context.Context, accountID uuid.UUID, req UpdateAccountIn) (*ProfileOut, error)
		ResolveToken(ctx context.Context, key string) (uuid.UUID, error)
	}

	service struct {
		repo       repoer
		bcryptCost int
	}
)

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func NewService(config *config.Config, repo repoer) servicer {
	cost := config.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &service{
		repo:       repo,
		bcryptCost: cost,
	}
}

// CreateAccount validates the registration payload, hashes the password and
// stores the new account. The plaintext password never leaves this method.
func (s *service) CreateAccount(ctx context.Context, req CreateAccountIn) (*CreateAccountOut, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	acct, err := s.repo.Create(ctx, email, string(hash), strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}

	return &CreateAccountOut{
		ID:        acct.ID,
		Email:     acct.Email,
		Name:      acct.Name,
		CreatedAt: acct.CreatedAt,
	}, nil
}

// IssueToken verifies the credentials and issues a fresh opaque token for the
// account, replacing any previously issued one. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *service) IssueToken(ctx context.Context, req TokenIn) (*TokenOut, error) {
	if req.Email == "" {
		return nil, &ValidationError{Field: "email", Reason: "required"}
	}
	if req.Password == "" {
		return nil, &ValidationError{Field: "password", Reason: "required"}
	}

	acct, err := s.repo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Burn a comparison anyway
			bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !acct.IsActive {
		return nil, ErrInvalidCredentials
	}

	key, err := generateTokenKey()
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertToken(ctx, acct.ID, key); err != nil {
		return nil, err
	}

	return &TokenOut{Token: key}, nil
}

func (s *service) Profile(ctx context.Context, accountID uuid.UUID) (*ProfileOut, error) {
	acct, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &ProfileOut{Name: acct.Name, Email: acct.Email}, nil
}

// UpdateProfile applies a partial update to the caller's own account. A new
// password goes through the same length policy and is re-hashed before it is
// persisted.
func (s *service) UpdateProfile(ctx context.Context, accountID uuid.UUID, req UpdateAccountIn) (*ProfileOut, error) {
	var passwordHash *string
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
		if err != nil {
			return nil, err
		}
		hashStr := string(hash)
		passwordHash = &hashStr
	}

	acct, err := s.repo.Update(ctx, accountID, req.Name, passwordHash)
	if err != nil {
		return nil, err
	}
	return &ProfileOut{Name: acct.Name, Email: acct.Email}, nil
}

// ResolveToken maps an opaque token key back to the owning account ID
func (s *service) ResolveToken(ctx context.Context, key string) (uuid.UUID, error) {
	return s.repo.GetAccountIDByToken(ctx, key)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", &ValidationError{Field: "email", Reason: "required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", &ValidationError{Field: "email", Reason: "invalid email address"}
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) <= minPasswordLen {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be longer than %d characters", minPasswordLen)}
	}
	if len(password) > maxPasswordBytes {
		return &ValidationError{Field: "password", Reason: fmt.Sprintf("must be at most %d bytes", maxPasswordBytes)}
	}
	return nil
}

func generateTokenKey() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
