package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Veraticus/wealthease/internal/common"
	"github.com/Veraticus/wealthease/internal/model"
	"github.com/Veraticus/wealthease/internal/storage"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type profileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type userView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Provider  string `json:"provider"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func newUserView(u *model.User) *userView {
	v := &userView{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Provider: u.Provider,
		Avatar:   u.Avatar,
	}
	if !u.CreatedAt.IsZero() {
		v.CreatedAt = timestamp(u.CreatedAt)
	}
	return v
}

type loginResponse struct {
	User    *userView `json:"user"`
	Message string    `json:"message"`
	Token   string    `json:"token"`
	Success bool      `json:"success"`
}

type statusResponse struct {
	User          *userView `json:"user"`
	Success       bool      `json:"success"`
	Authenticated bool      `json:"authenticated"`
}

// handleLogin finds or creates the account for the email and returns a signed token.
// There is no credential store: any non-empty password is accepted.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(w, r, &req); err != nil ||
		strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := s.deps.Store.FindOrCreateUser(r.Context(), &model.User{
		Email:    req.Email,
		Name:     req.Name,
		Provider: "email",
	})
	if err != nil {
		if errors.Is(err, storage.ErrInvalidUser) {
			writeError(w, http.StatusBadRequest, "A valid email address is required")
			return
		}
		s.writeServerError(w, "Login failed", err)
		return
	}

	token, err := s.deps.Tokens.Issue(user)
	if err != nil {
		s.writeServerError(w, "Login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    newUserView(user),
	})
}

// handleRegister creates an email account. Unlike login it refuses an email that is
// already registered and does not issue a token.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(w, r, &req); err != nil ||
		strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Name, email, and password are required")
		return
	}

	user, err := s.deps.Store.CreateUser(r.Context(), &model.User{
		Email:    req.Email,
		Name:     req.Name,
		Provider: "email",
	})
	switch {
	case errors.Is(err, storage.ErrInvalidUser):
		writeError(w, http.StatusBadRequest, "A valid email address is required")
		return
	case errors.Is(err, common.ErrDuplicateEntry):
		writeError(w, http.StatusConflict, "User with this email already exists")
		return
	case err != nil:
		s.writeServerError(w, "Registration failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "User registered successfully",
		"user":    newUserView(user),
	})
}

// handleLogout acknowledges a sign-out. Tokens are stateless, so the client discards its own.
func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Logout successful"})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusOK, statusResponse{Success: true})
		return
	}

	user, err := s.deps.Store.GetUser(r.Context(), claims.UserID())
	if err != nil {
		// A valid token for a deleted account counts as signed out.
		writeJSON(w, http.StatusOK, statusResponse{Success: true})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Success: true, Authenticated: true, User: newUserView(user)})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	user, err := s.deps.Store.GetUser(r.Context(), claims.UserID())
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": newUserView(user)})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())

	var req profileRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid profile")
		return
	}

	user, err := s.deps.Store.UpdateUserProfile(r.Context(), claims.UserID(), req.Name, req.Email)
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "User not found")
		return
	case errors.Is(err, storage.ErrInvalidUser):
		writeError(w, http.StatusBadRequest, "A valid email address is required")
		return
	case errors.Is(err, common.ErrDuplicateEntry):
		writeError(w, http.StatusConflict, "User with this email already exists")
		return
	case err != nil:
		s.writeServerError(w, "Profile update failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Profile updated successfully",
		"user":    newUserView(user),
	})
}
