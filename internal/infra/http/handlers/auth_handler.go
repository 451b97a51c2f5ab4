package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/cablecom/leads-api/internal/infra/metrics"
	"github.com/cablecom/leads-api/internal/usecase"
)

type SessionGate interface {
	Login(ctx context.Context, username, password string) (*usecase.LoginResult, error)
	CheckRequest(r *http.Request) (*usecase.SessionClaims, error)
	Logout() *http.Cookie
}

type AuthHandler struct {
	Gate SessionGate
	Log  *zap.Logger
}

func NewAuthHandler(gate SessionGate, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{Gate: gate, Log: log}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LoginResponse struct {
	Success bool      `json:"success"`
	User    LoginUser `json:"user"`
}

type SessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.Gate.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if !usecase.IsValidationError(err) {
			metrics.RecordLogin(false)
			h.Log.Warn("admin login rejected", zap.String("identifier", req.Username), zap.Error(err))
		}
		writeUsecaseError(w, h.Log, err)
		return
	}
	metrics.RecordLogin(true)
	h.Log.Info("admin logged in", zap.String("username", res.User.Username))

	http.SetCookie(w, res.Cookie)
	writeJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		User:    LoginUser{Username: res.User.Username, Email: res.User.Email},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.Gate.Logout())
	writeJSON(w, http.StatusOK, UpdateLeadResponse{Success: true, Message: "Logged out successfully"})
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, err := h.Gate.CheckRequest(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, SessionResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{Authenticated: true, Username: claims.Username})
}
