package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/husteen/accounts/internal/shared/middleware"
)

type (
	Router struct {
		service servicer
	}
)

func NewRouter(service servicer) chi.Router {
	router := &Router{service: service}
	return router.Routes()
}

func (r *Router) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/create/", r.CreateAccount)
	router.Post("/token/", r.IssueToken)

	router.Route("/update/", func(protected chi.Router) {
		protected.Use(middleware.NewAuthMiddleware(r.service))
		protected.Get("/", r.Profile)
		protected.Patch("/", r.UpdateProfile)
		// Registration disallows POST for authenticated callers as well
		protected.Post("/", r.updateNotAllowed)
	})

	return router
}

// CreateAccount registers a new account and returns its non-secret fields
func (r *Router) CreateAccount(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	var in CreateAccountIn
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := r.service.CreateAccount(ctx, in)
	if err != nil {
		var vErr *ValidationError
		switch {
		case errors.As(err, &vErr):
			logger.Debug().Err(err).Msg("Account creation rejected")
			writeError(w, logger, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, ErrDuplicateEmail):
			logger.Debug().Str("email", in.Email).Msg("Account creation rejected: duplicate email")
			writeError(w, logger, http.StatusBadRequest, ErrDuplicateEmail.Error())
		default:
			logger.Error().Err(err).Msg("Error creating account")
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	logger.Debug().Str("account_id", out.ID.String()).Msg("Account created")
	writeJSON(w, logger, http.StatusCreated, out)
}

// IssueToken exchanges valid credentials for an opaque bearer token
func (r *Router) IssueToken(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	var in TokenIn
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := r.service.IssueToken(ctx, in)
	if err != nil {
		var vErr *ValidationError
		switch {
		case errors.As(err, &vErr):
			writeError(w, logger, http.StatusBadRequest, vErr.Error())
		case errors.Is(err, ErrInvalidCredentials):
			// Same response for unknown email and wrong password
			logger.Warn().Msg("Token request rejected: invalid credentials")
			writeError(w, logger, http.StatusBadRequest, ErrInvalidCredentials.Error())
		default:
			logger.Error().Err(err).Msg("Error issuing token")
			writeError(w, logger, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	writeJSON(w, logger, http.StatusOK, out)
}

// Profile returns the authenticated caller's own account
func (r *Router) Profile(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	accountID := middleware.GetAccountID(ctx)

	out, err := r.service.Profile(ctx, accountID)
	if err != nil {
		logger.Error().Err(err).Str("account_id", accountID.String()).Msg("Error loading profile")
		writeError(w, logger, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, logger, http.StatusOK, out)
}

// UpdateProfile applies a partial update to the caller's own account
func (r *Router) UpdateProfile(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	logger := hlog.FromRequest(req)

	accountID := middleware.GetAccountID(ctx)

	var in UpdateAccountIn
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeError(w, logger, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := r.service.UpdateProfile(ctx, accountID, in)
	if err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			writeError(w, logger, http.StatusBadRequest, vErr.Error())
			return
		}
		logger.Error().Err(err).Str("account_id", accountID.String()).Msg("Error updating profile")
		writeError(w, logger, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Debug().Str("account_id", accountID.String()).Msg("Profile updated")
	writeJSON(w, logger, http.StatusOK, out)
}

func (r *Router) updateNotAllowed(w http.ResponseWriter, req *http.Request) {
	logger := hlog.FromRequest(req)

	w.Header().Set("Allow", "GET, PATCH")
	writeError(w, logger, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, logger *zerolog.Logger, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response")
	}
}
