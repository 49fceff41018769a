// Package server exposes the bot over HTTP: the Jenkins notification
// webhook and a plain command endpoint for chat bridges.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/altinukshini/jenkins-bot/internal/model"
)

const maxBodyBytes = 1 << 20

// Bot is what the server needs from the command layer.
type Bot interface {
	Dispatch(ctx context.Context, user, line string) string
	HandleEvent(ctx context.Context, ev model.RunEvent) error
}

type Server struct {
	router *chi.Mux
	bot    Bot
	log    logrus.FieldLogger
	secret string
}

type Option func(*Server)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) { s.log = log }
}

// WithSecret requires the X-Bot-Secret header on /command requests.
func WithSecret(secret string) Option {
	return func(s *Server) { s.secret = secret }
}

func New(bot Bot, opts ...Option) *Server {
	s := &Server{
		router: chi.NewRouter(),
		bot:    bot,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.logRequests)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/jenkins", s.handleJenkins)
	s.router.Post("/command", s.handleCommand)
}

func (s *Server) Router() http.Handler { return s.router }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.WithField("addr", addr).Info("http server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
		}).Debug("http request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleJenkins accepts build notifications as form fields or JSON.
func (s *Server) handleJenkins(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	raw, err := decodeEvent(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	ev, err := raw.Validate()
	if err != nil {
		s.log.WithError(err).WithField("job", raw.JobName).Warn("rejected webhook payload")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.bot.HandleEvent(r.Context(), ev); err != nil {
		s.log.WithError(err).WithField("job", ev.JobName).WithField("user", ev.UserID).Error("handle build event")
		http.Error(w, "event not delivered", http.StatusInternalServerError)
		return
	}
	w.Write([]byte("OK"))
}

func decodeEvent(r *http.Request) (model.RawRunEvent, error) {
	var raw model.RawRunEvent
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return raw, fmt.Errorf("decode payload: %w", err)
		}
		return raw, nil
	}

	if err := r.ParseForm(); err != nil {
		return raw, fmt.Errorf("parse form: %w", err)
	}
	raw = model.RawRunEvent{
		JobName:   r.Form.Get("job_name"),
		Number:    r.Form.Get("number"),
		Timestamp: r.Form.Get("timestamp"),
		BuiltOn:   r.Form.Get("builtOn"),
		Event:     r.Form.Get("event"),
		UserID:    r.Form.Get("userId"),
		URL:       r.Form.Get("url"),
		Result:    r.Form.Get("result"),
	}
	return raw, nil
}

type commandRequest struct {
	User string `json:"user"`
	Text string `json:"text"`
}

type commandResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if s.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Bot-Secret")), []byte(s.secret)) != 1 {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.User == "" {
		http.Error(w, "user is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, commandResponse{Reply: s.bot.Dispatch(r.Context(), req.User, req.Text)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
