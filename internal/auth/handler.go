package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/todo-api/internal/httputil"
	"github.com/redmonkez12/todo-api/internal/logging"
	"github.com/redmonkez12/todo-api/internal/user"
)

// Handler serves the /auth endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is the public view of an account. The password hash never
// leaves the service.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
}

func newUserResponse(u *user.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// decodeBody reads a JSON body into dst, answering 400 itself on failure
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logging.GetLoggerFromContext(r.Context()).Warn("malformed request body", "path", r.URL.Path, "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return false
	}
	return true
}

// Register godoc
// @Summary      Create an account
// @Description  Registers an email and password. The account gets the next free user id.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Email and password"
// @Success      201 {object} UserResponse
// @Failure      400 {object} httputil.ErrorResponse "Malformed body or invalid credentials"
// @Failure      409 {object} httputil.ErrorResponse "Email already registered"
// @Failure      500 {object} httputil.ErrorResponse "No user id could be allocated"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	logger := logging.GetLoggerFromContext(r.Context()).WithFields(map[string]any{"email": req.Email})

	if err := httputil.Validate(req); err != nil {
		logger.Warn("registration rejected", "error", err.Error())
		httputil.RespondAppError(w, err, "")
		return
	}

	created, err := h.service.Register(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		logger.Info("account created", "user_id", created.ID)
		httputil.RespondJSON(w, newUserResponse(created), http.StatusCreated)
	case errors.Is(err, user.ErrDuplicateEmail):
		logger.Warn("registration rejected: email taken")
		httputil.RespondErrorWithCode(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
	default:
		if status, _ := httputil.StatusFor(err); status >= http.StatusInternalServerError {
			logger.Error("registration failed", "error", err.Error())
		} else {
			logger.Warn("registration rejected", "error", err.Error())
		}
		httputil.RespondAppError(w, err, "failed to register user")
	}
}

// Login godoc
// @Summary      Log in
// @Description  Exchanges credentials for an access token and a single-use refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Email and password"
// @Success      200 {object} AuthTokens
// @Failure      400 {object} httputil.ErrorResponse "Malformed body"
// @Failure      401 {object} httputil.ErrorResponse "Wrong email or password"
// @Failure      500 {object} httputil.ErrorResponse "Token store unavailable"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	logger := logging.GetLoggerFromContext(r.Context()).WithFields(map[string]any{"email": req.Email})

	tokens, err := h.service.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		logger.Info("login succeeded")
		httputil.RespondJSON(w, tokens, http.StatusOK)
	case errors.Is(err, ErrInvalidCredentials):
		logger.Warn("login rejected")
		httputil.RespondErrorWithCode(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
	default:
		logger.Error("login failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to login", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

// Refresh godoc
// @Summary      Rotate tokens
// @Description  Trades a refresh token for a new pair. The presented token stops working.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest true "Current refresh token"
// @Success      200 {object} AuthTokens
// @Failure      400 {object} httputil.ErrorResponse "No refresh token given"
// @Failure      401 {object} httputil.ErrorResponse "Unknown, used or expired refresh token"
// @Failure      500 {object} httputil.ErrorResponse "Token store unavailable"
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	presented := readRefreshToken(r)
	if presented == "" {
		httputil.RespondErrorWithCode(w, "refresh token required", httputil.CodeRefreshTokenRequired, http.StatusBadRequest)
		return
	}

	tokens, err := h.service.RefreshAccessToken(r.Context(), presented)
	switch {
	case err == nil:
		httputil.RespondJSON(w, tokens, http.StatusOK)
	case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrRefreshTokenRevoked), errors.Is(err, ErrRefreshTokenExpired):
		logger.Warn("refresh rejected", "reason", err.Error())
		httputil.RespondErrorWithCode(w, "invalid or expired refresh token", httputil.CodeInvalidRefreshToken, http.StatusUnauthorized)
	default:
		logger.Error("refresh failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to refresh token", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the given refresh token if there is one. Always succeeds.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest false "Refresh token to revoke"
// @Success      200 {object} map[string]string
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if presented := readRefreshToken(r); presented != "" {
		if err := h.service.RevokeRefreshToken(r.Context(), presented); err != nil {
			logging.GetLoggerFromContext(r.Context()).Warn("logout: refresh token not revoked", "error", err.Error())
		}
	}
	httputil.RespondJSON(w, map[string]string{"message": "logged out"}, http.StatusOK)
}

// Me godoc
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserResponse
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid access token"
// @Failure      404 {object} httputil.ErrorResponse "Account no longer exists"
// @Router       /auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	u, err := h.service.Me(r.Context(), userID)
	if err != nil {
		h.respondAccountError(w, r, "load", err)
		return
	}
	httputil.RespondJSON(w, newUserResponse(u), http.StatusOK)
}

// DeleteMe godoc
// @Summary      Delete account
// @Description  Deletes the caller's account together with all of their items and revokes every token they hold
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} UserResponse
// @Failure      401 {object} httputil.ErrorResponse "Missing or invalid access token"
// @Failure      404 {object} httputil.ErrorResponse "Account no longer exists"
// @Router       /auth/me [delete]
func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())

	deleted, err := h.service.DeleteAccount(r.Context(), userID)
	if err != nil {
		h.respondAccountError(w, r, "delete", err)
		return
	}

	logging.GetLoggerFromContext(r.Context()).Info("account deleted", "user_id", userID)
	httputil.RespondJSON(w, newUserResponse(deleted), http.StatusOK)
}

func (h *Handler) respondAccountError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, user.ErrNotFound) {
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}
	logging.GetLoggerFromContext(r.Context()).Error("account "+op+" failed", "error", err.Error())
	httputil.RespondErrorWithCode(w, "failed to "+op+" account", httputil.CodeInternalError, http.StatusInternalServerError)
}

// readRefreshToken returns the trimmed refresh token from the body, or ""
// when there is none
func readRefreshToken(r *http.Request) string {
	var body RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.RefreshToken)
}
