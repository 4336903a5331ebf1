package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ariefcatur/go-marketplace/internal/market"
	"github.com/go-chi/chi/v5"
)

// Registrar abstraksi auth.Service untuk handler (dan test-nya).
type Registrar interface {
	Register(ctx context.Context, email, name, password string) (*market.User, error)
	Login(ctx context.Context, email, password string) (string, *market.User, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	Auth Registrar
	Prod bool
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Post("/auth/logout", h.logout)
}

type registerReq struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, market.NewError(market.CodeValidation, "invalid json"), h.Prod)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Auth.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user_id": u.ID})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, market.NewError(market.CodeValidation, "invalid json"), h.Prod)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, market.NewError(market.CodeValidation, "email and password are required"), h.Prod)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	token, u, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": u})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	tok := bearerToken(r)
	if tok == "" {
		writeError(w, market.NewError(market.CodeUnauthorized, "missing token"), h.Prod)
		return
	}
	if err := h.Auth.Logout(r.Context(), tok); err != nil {
		writeError(w, err, h.Prod)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
