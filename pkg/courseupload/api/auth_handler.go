package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/course-upload/pkg/courseupload"
)

// sessionTTL is how long a proxied login session is kept
const sessionTTL = 24 * time.Hour

// AuthHandler handles login and token-refresh endpoints
type AuthHandler struct {
	service  courseupload.Service
	sessions courseupload.SessionCache
}

// NewAuthHandler creates a new auth handler. sessions may be nil, in which
// case login responses carry no session id.
func NewAuthHandler(service courseupload.Service, sessions courseupload.SessionCache) *AuthHandler {
	return &AuthHandler{
		service:  service,
		sessions: sessions,
	}
}

// Routes returns the router for auth endpoints
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	return r
}

// LoginRequest carries end-user platform credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		renderError(w, r, http.StatusBadRequest, errors.New("username and password are required"))
		return
	}

	token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}

	resp := map[string]string{"token": token}
	if h.sessions != nil {
		sessionID := uuid.New().String()
		h.sessions.Set("session:"+sessionID, token, sessionTTL)
		resp["sessionId"] = sessionID
	}
	render.JSON(w, r, resp)
}

// Refresh forces a new server-side login regardless of the cached token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := h.service.GetAuthToken(r.Context(), true)
	if err != nil {
		renderServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]string{"token": token})
}
