package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"ambulance-tracker-backend/internal/repository"
	"ambulance-tracker-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles account-related HTTP requests
type AuthHandler struct {
	userService *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// RegisterRequest is the body of POST /api/auth/register
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" || req.FullName == "" || req.Address == "" || req.Phone == "" {
		respondError(w, "All fields are required", http.StatusBadRequest)
		return
	}

	user, err := h.userService.Register(r.Context(), services.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Address:  req.Address,
		Phone:    req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken),
			errors.Is(err, services.ErrUsernameUnavailable),
			errors.Is(err, services.ErrWeakPassword):
			respondError(w, err.Error(), http.StatusBadRequest)
		default:
			log.Error().Err(err).Str("username", req.Username).Msg("Registration failed")
			respondError(w, "Registration failed", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, map[string]interface{}{"id": user.ID, "username": user.Username}, http.StatusOK)
}

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, token, err := h.userService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			respondError(w, "User not found", http.StatusBadRequest)
		case errors.Is(err, services.ErrWrongPassword):
			respondError(w, "Incorrect password", http.StatusUnauthorized)
		default:
			log.Error().Err(err).Str("username", req.Username).Msg("Login failed")
			respondError(w, "Login failed", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"isAdmin":  user.IsAdmin,
		"token":    token,
	}, http.StatusOK)
}

// Me handles GET /api/auth/me: resolves the bearer token to a profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		respondError(w, "Authorization header required", http.StatusUnauthorized)
		return
	}

	userID, err := h.userService.ValidateJWT(parts[1])
	if err != nil {
		respondError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	h.respondProfile(w, r, userID)
}

// GetUser handles GET /api/auth/user/{id}
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || userID < 1 {
		respondError(w, "Invalid user ID", http.StatusBadRequest)
		return
	}
	h.respondProfile(w, r, userID)
}

func (h *AuthHandler) respondProfile(w http.ResponseWriter, r *http.Request, userID int) {
	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "User not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Int("user_id", userID).Msg("Failed to get user profile")
		respondError(w, "Failed to get user profile", http.StatusInternalServerError)
		return
	}

	respondJSON(w, map[string]interface{}{
		"id":        user.ID,
		"username":  user.Username,
		"fullName":  user.FullName,
		"address":   user.Address,
		"phone":     user.Phone,
		"isAdmin":   user.IsAdmin,
		"createdAt": user.CreatedAt,
	}, http.StatusOK)
}

// Admins handles GET /api/auth/admin
func (h *AuthHandler) Admins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.userService.Admins(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to get admin info")
		respondError(w, "Failed to get admin info", http.StatusInternalServerError)
		return
	}

	out := make([]map[string]interface{}, 0, len(admins))
	for _, a := range admins {
		out = append(out, map[string]interface{}{"id": a.ID, "username": a.Username})
	}
	respondJSON(w, out, http.StatusOK)
}
