// If you are AI: This file implements login and account creation on top of the user store.

package authsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"trinity/internal/auth"
	"trinity/internal/metrics"
	"trinity/internal/store"
)

// Users is the subset of the store used for accounts.
type Users interface {
	FindByName(ctx context.Context, name string) (*store.User, error)
	CreateUser(ctx context.Context, u *store.User) error
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token string `json:"token"`
}

// Service issues tokens for valid credentials.
type Service struct {
	users   Users
	issuer  *auth.Issuer
	limiter *auth.RateLimiter
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService creates the login service. limiter may be nil to disable rate limiting.
func NewService(users Users, issuer *auth.Issuer, limiter *auth.RateLimiter, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:   users,
		issuer:  issuer,
		limiter: limiter,
		metrics: m,
		logger:  logger.With(zap.String("component", "authsvc")),
	}
}

// RegisterRoutes registers POST /login on the provided mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	var h http.Handler = http.HandlerFunc(s.handleLogin)
	if s.limiter != nil {
		h = s.limiter.Middleware(h)
	}
	mux.Handle("/login", h)
}

// Login verifies credentials and returns a signed token.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, name, password string) (string, error) {
	if err := auth.ValidateCredentials(name, password); err != nil {
		return "", err
	}

	u, err := s.users.FindByName(ctx, name)
	if errors.Is(err, store.ErrUserNotFound) {
		return "", auth.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return "", err
	}

	return s.issuer.Issue(auth.Identity{UserID: u.ID, Name: u.Name, Admin: u.Admin})
}

// Register creates an account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, name, nickname, password string, admin bool) (*store.User, error) {
	if err := auth.ValidateCredentials(name, password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &store.User{Name: name, Nickname: nickname, PasswordHash: hash, Admin: admin}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("register %s: %w", name, err)
	}
	s.logger.Info("user registered", zap.String("user", name), zap.Bool("admin", admin))
	return u, nil
}

// handleLogin handles POST /login.
func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		s.metrics.RecordLogin("rejected")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, err := s.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.metrics.RecordLogin("invalid")
		s.logger.Info("login failed", zap.String("user", req.Username), zap.String("remote", auth.ClientIP(r)))
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	case err != nil:
		s.metrics.RecordLogin("error")
		s.logger.Error("login error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	s.metrics.RecordLogin("ok")
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
