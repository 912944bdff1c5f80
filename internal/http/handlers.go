package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// handleHealth performs a basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady performs a readiness check with dependency verification.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.lister == nil {
		checks["store"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if _, err := s.lister.ListByOwner(ctx, "readiness-probe"); err != nil {
		checks["store"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"checks": checks,
	})
}

// handleDashboard renders the dashboard shell; all gating happens in the
// page against the API.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded")
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, "dashboard_page", nil); err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
