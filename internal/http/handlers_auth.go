package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	UID   string `json:"uid"`
	Email string `json:"email"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	sess, err := s.provider.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, ports.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	case errors.Is(err, ports.ErrProviderUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		s.logger.ErrorContext(r.Context(), "Login failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: sess.Token,
		UID:   sess.Identity.UID,
		Email: sess.Identity.Email,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if token := bearerToken(r); token != "" {
		s.provider.Revoke(token)
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionFromRequest resolves the request's bearer token to a live
// session. WebSocket clients may pass the token as a query parameter
// since browsers cannot set headers on the upgrade request.
func (s *Server) sessionFromRequest(r *http.Request) (*auth.Session, bool) {
	token := bearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return nil, false
	}
	return s.provider.SessionForToken(token)
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
