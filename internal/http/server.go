package http

import (
	"bufio"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fintrack/internal/auth"
	"fintrack/internal/log"
	"fintrack/internal/ports"
	appweb "fintrack/web"
)

// Server is the backend surface: JSON API, the WebSocket ledger stream,
// and the server-rendered dashboard shell.
type Server struct {
	http.Server

	templates    *template.Template
	provider     *auth.Provider
	docs         ports.DocumentStore
	lister       ports.RecordLister
	rateLimiter  *rateLimiter
	upgrader     websocket.Upgrader
	logger       *log.Logger
	writeTimeout time.Duration
	started      time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// server.
func NewServer(addr string, provider *auth.Provider, docs ports.DocumentStore, lister ports.RecordLister, logger *log.Logger, wsWriteTimeout time.Duration) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		provider:    provider,
		docs:        docs,
		lister:      lister,
		rateLimiter: newRateLimiter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:       logger.WithComponent(log.ComponentHTTP),
		writeTimeout: wsWriteTimeout,
		started:      time.Now(),
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux.HandleFunc("/", s.withMiddleware(s.handleDashboard))
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/api/login", s.withMiddleware(s.handleLogin))
	mux.HandleFunc("/api/logout", s.withMiddleware(s.handleLogout))
	mux.HandleFunc("/api/transactions", s.withMiddleware(s.handleTransactions))
	mux.HandleFunc("/ws/ledger", s.withMiddleware(s.handleLedgerStream))

	return s
}

// withMiddleware adds security headers, rate limiting, and request
// logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(r.Context(), "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// responseWriter captures the status code for request logging. Hijack is
// forwarded so the WebSocket upgrade still works through the middleware.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Shutdown stops the listener and the rate limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
