package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bakehouse-pos/api/internal/auth"
	"github.com/bakehouse-pos/api/internal/middleware"
	"github.com/bakehouse-pos/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthStore defines the store methods needed by auth handlers.
// Satisfied by *store.Store; narrow interface for testability.
type AuthStore interface {
	FindStaff(ctx context.Context, username string) (store.Staff, error)
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	store     AuthStore
	jwtSecret string
	log       logrus.FieldLogger
	now       func() time.Time
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(store AuthStore, jwtSecret string, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{store: store, jwtSecret: jwtSecret, log: log, now: time.Now}
}

// RegisterRoutes registers public auth endpoints.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.Login)
}

// RegisterProtectedRoutes registers endpoints that need a valid token.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Get("/auth/me", h.Me)
}

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Pin      string `json:"pin" validate:"required"`
}

type userResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Location string `json:"location"`
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

// --- Handlers ---

// Login checks a username + PIN against the bcrypt hash in the Staff tab.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.store.FindStaff(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrStaffNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeServiceError(w, h.log, err, "find staff")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(st.PinHash), []byte(req.Pin)); err != nil {
		h.log.WithField("username", st.Username).Warn("login rejected")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, st.Username, st.Role, st.Location)
	if err != nil {
		writeServiceError(w, h.log, err, "sign token")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:     token,
		ExpiresAt: h.now().Add(auth.TokenTTL).UTC().Truncate(time.Second),
		User:      userResponse{Username: st.Username, Role: st.Role, Location: st.Location},
	})
}

// Me echoes the caller's token claims.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Username: claims.Username, Role: claims.Role, Location: claims.Location})
}
