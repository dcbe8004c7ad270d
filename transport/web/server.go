package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

const shutdownTimeout = 5 * time.Second

//go:embed templates/*.html
var templatesFS embed.FS

type Server struct {
	logger   *slog.Logger
	sessions *Sessions

	page       *template.Template
	upgrader   websocket.Upgrader
	wsHandlers map[string]wsHandler
	router     chi.Router
}

func New(logger *slog.Logger, sessions *Sessions) *Server {
	server := &Server{
		logger:   logger.With("component", "web"),
		sessions: sessions,
		page:     template.Must(template.ParseFS(templatesFS, "templates/index.html")),
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 4 * time.Second,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
		},
	}

	server.registerWSHandlers()
	server.router = server.routes()

	return server
}

func (that *Server) routes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(that.logRequests)

	router.Get("/", that.handleIndex)
	router.Get("/newgame", that.handleNewGame)
	router.Get("/play", that.handlePlay)
	router.Get("/undo", that.handleUndo)
	router.Get("/state", that.handleState)
	router.Get("/ws", that.serveWS)
	router.Get("/ping", that.handlePing)

	return router
}

func (that *Server) Handler() http.Handler {
	return that.router
}

// Start - serves HTTP until ctx is canceled, then shuts down gracefully.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go that.sessions.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

func (that *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		that.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
