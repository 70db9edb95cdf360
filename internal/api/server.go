package api

import (
	"context"
	"net/http"
	"restaurant_chat/internal/agent"
	"restaurant_chat/src/conversation"
	"restaurant_chat/src/logger"
	"restaurant_chat/src/model"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const maxBodyBytes = 1 << 20

// Chatter runs chat turns for the HTTP handlers
type Chatter interface {
	Start(ctx context.Context, messages []model.Message) (*agent.Turn, error)
	Complete(ctx context.Context, messages []model.Message) (model.CompletionResult, error)
	Memory() *conversation.Memory
}

// Options configures the HTTP surface
type Options struct {
	Addr       string
	CORSOrigin string
	LLM        model.LLMConfig
}

type Server struct {
	router *chi.Mux
	opts   Options
	chat   Chatter
	http   *http.Server
}

// NewServer wires the chat routes. Each register func may add more routes,
// such as the report endpoints the analyze tool reads.
func NewServer(opts Options, chat Chatter, register ...func(chi.Router)) *Server {
	router := chi.NewRouter()
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors(opts.CORSOrigin))

	s := &Server{
		router: router,
		opts:   opts,
		chat:   chat,
	}

	router.Get("/health", s.health)
	router.Route("/api/chat", func(r chi.Router) {
		r.Post("/", s.handleChat)
		r.Post("/complete", s.handleComplete)
		r.Get("/memory/{conversationId}", s.getMemory)
		r.Delete("/memory/{conversationId}", s.clearMemory)
	})

	for _, fn := range register {
		fn(router)
	}

	return s
}

// Unrouted returns the paths that have no GET handler on this server
func (s *Server) Unrouted(paths []string) []string {
	var missing []string
	for _, p := range paths {
		if !s.router.Match(chi.NewRouteContext(), http.MethodGet, p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().Str("addr", s.opts.Addr).Msg("API server starting")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	payload, err := sonic.Marshal(body)
	if err != nil {
		logger.Error().Err(err).Msg("error encoding response")
		http.Error(w, `{"success":false,"error":"Internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.ErrorResponse{Success: false, Error: message})
}

// requestLogger tags every request with an id and a request scoped logger
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		log := logger.Component("http").With().Str("request_id", id).Logger()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(log.WithContext(r.Context())))

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("request handled")
	})
}

func cors(origin string) func(http.Handler) http.Handler {
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLog(r *http.Request) *zerolog.Logger {
	return zerolog.Ctx(r.Context())
}
