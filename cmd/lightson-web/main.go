package main

import (
	"context"
	"errors"
	"flag"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"

	httpadapter "questaroo.app/lightson/internal/adapters/http"
	"questaroo.app/lightson/internal/app"
	"questaroo.app/lightson/internal/domain"
	"questaroo.app/lightson/internal/platform/config"
	"questaroo.app/lightson/internal/platform/otel"
	"questaroo.app/lightson/web"
)

// statusWriter captures HTTP status and bytes written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// requestLogger logs method, path, status, bytes, and duration in a human-readable format.
func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		logger.Info("http",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"bytes", sw.bytes,
			"dur", time.Since(start).Round(time.Millisecond),
		)
	})
}

// newRouter serves the board page, its assets and the game API.
func newRouter(h *httpadapter.Handler, page web.Page) *httprouter.Router {
	tmpl := web.Templates()
	r := httprouter.New()
	r.ServeFiles("/static/*filepath", web.StaticFS())
	r.GET("/", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := web.RenderIndex(w, tmpl, page); err != nil {
			http.Error(w, template.HTMLEscapeString(err.Error()), http.StatusInternalServerError)
		}
	})
	h.Register(r)
	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("config: %v", err)
	}

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.StringVar(&cfg.Storage, "storage", cfg.Storage, "puzzle library: fs|sqlite")
	flag.StringVar(&cfg.PersistPath, "persist-path", cfg.PersistPath, "save directory for fs storage")
	flag.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "database file for sqlite storage")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	flag.StringVar(&cfg.Solver, "solver", cfg.Solver, "solver to use: linear|chase")
	flag.IntVar(&cfg.BoardSize, "size", cfg.BoardSize, "default board size")
	flag.Float64Var(&cfg.ToggleProbability, "p", cfg.ToggleProbability, "default per-cell toggle probability")
	flag.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "drop sessions idle for longer than this (0 keeps them)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.ParseLevel(cfg.LogLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Setup(ctx, "lightson-web", cfg.OTelEndpoint)
	if err != nil {
		config.Exitf("tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown", "err", err)
		}
	}()

	// Wire providers → use cases → HTTP adapter
	uc, sessions, closeStorage, err := app.NewService(cfg, logger)
	if err != nil {
		config.Exitf("setup: %v", err)
	}
	defer func() {
		if err := closeStorage(); err != nil {
			logger.Warn("storage close", "err", err)
		}
	}()
	go sessions.RunReaper(ctx, cfg.SessionTTL, time.Minute, func(n int) {
		logger.Info("reaped idle sessions", "count", n)
	})

	h := httpadapter.New(uc, logger)
	page := web.Page{
		Title:        "Lights On",
		DefaultSize:  cfg.BoardSize,
		MinSize:      domain.MinBoardSize,
		MaxSize:      domain.MaxBoardSize,
		Difficulty:   domain.Medium.String(),
		Difficulties: []string{domain.Easy.String(), domain.Medium.String(), domain.Hard.String()},
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           requestLogger(logger, newRouter(h, page)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	logger.Info("listening", "addr", cfg.Addr, "storage", cfg.Storage, "solver", cfg.Solver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}
