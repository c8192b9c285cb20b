package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shoptrack/apiserver/internal/auth"
	"github.com/shoptrack/apiserver/internal/services"
	"github.com/shoptrack/apiserver/internal/store"
)

// AuthHandler provides the login and current-user endpoints.
type AuthHandler struct {
	userService *services.UserService
	tokens      *auth.Tokens
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		tokens:      tokens,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, tokens *auth.Tokens) {
	handler := NewAuthHandler(userService, tokens)

	r.Post("/login", handler.Login)
	r.Get("/user/me", handler.Me)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// MeResponse mirrors the token claims.
type MeResponse struct {
	User string `json:"user"`
	Role string `json:"role"`
}

// Login verifies credentials and returns a signed token. Authentication
// failures come back as soft errors in the body, not as status codes.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.userService.VerifyCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeSoftError(w, "User not found")
		case errors.Is(err, services.ErrInvalidCredential):
			writeSoftError(w, "Invalid password")
		default:
			writeError(w, http.StatusInternalServerError, "failed to authenticate")
		}
		return
	}

	token, err := h.tokens.Issue(user.Username, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

// Me returns the claims of the presented token. Missing, malformed, and
// badly signed tokens all get the same soft Unauthorized error.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	tokenString, err := bearerToken(r)
	if err != nil {
		writeSoftError(w, "Unauthorized")
		return
	}

	claims, err := h.tokens.Parse(tokenString)
	if err != nil {
		writeSoftError(w, "Unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{User: claims.User, Role: claims.Role})
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
