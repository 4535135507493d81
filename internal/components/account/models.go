package account

import (
	"time"

	"github.com/google/uuid"
)

type (
	// Account is the persisted user identity. The password hash is never
	// serialized.
	Account struct {
		ID           uuid.UUID `json:"id"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		Name         string    `json:"name"`
		IsActive     bool      `json:"is_active"`
		IsStaff      bool      `json:"is_staff"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}

	CreateAccountIn struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name,omitempty"`
	}

	CreateAccountOut struct {
		ID        uuid.UUID `json:"id"`
		Email     string    `json:"email"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"`
	}

	TokenIn struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	TokenOut struct {
		Token string `json:"token"`
	}

	// ProfileOut is the self-management view of an account.
	ProfileOut struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	UpdateAccountIn struct {
		Name     *string `json:"name,omitempty"`
		Password *string `json:"password,omitempty"`
	}
)
