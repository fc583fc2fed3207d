package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vnexam/examgen/internal/ai"
	"github.com/vnexam/examgen/internal/bank"
	"github.com/vnexam/examgen/internal/curriculum"
	"github.com/vnexam/examgen/internal/dedup"
	"github.com/vnexam/examgen/internal/export"
	"github.com/vnexam/examgen/internal/generator"
	"github.com/vnexam/examgen/internal/httpapi"
	"github.com/vnexam/examgen/internal/platform/config"
	"github.com/vnexam/examgen/internal/platform/database"
	"github.com/vnexam/examgen/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	matrix, err := curriculum.Load(cfg.Data.MatrixPath)
	if err != nil {
		slog.Error("failed to load curriculum matrix", "path", cfg.Data.MatrixPath, "error", err)
		os.Exit(1)
	}
	slog.Info("curriculum matrix loaded",
		"path", cfg.Data.MatrixPath,
		"grade", matrix.Grade(),
		"subject", matrix.Subject(),
		"semester", matrix.Semester(),
	)

	store, db, err := newStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open question store", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	qbank, err := bank.Open(ctx, store)
	if err != nil {
		slog.Error("failed to open question bank", "error", err)
		os.Exit(1)
	}
	slog.Info("question bank opened", "questions", qbank.Len())

	registry, closeRegistry, err := newRegistry(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect dedup registry", "error", err)
		os.Exit(1)
	}
	defer closeRegistry()
	if err := dedup.Prime(ctx, registry, qbank.All()); err != nil {
		slog.Error("failed to prime dedup registry", "error", err)
		os.Exit(1)
	}

	router := newProviderRouter(cfg)
	var svc *generator.Service
	if router.HasProvider() {
		svc = generator.NewService(router,
			generator.WithTimeout(time.Duration(cfg.AI.TimeoutSeconds)*time.Second))
	} else {
		slog.Info("no generation provider configured, offline templates only")
	}

	offline := generator.NewOffline()
	batcher := generator.NewBatcher(offline, svc, registry)
	sess := session.New(matrix, qbank, batcher, offline, router)

	pdf := &export.PDFExporter{
		FontPath:     cfg.Export.FontPath,
		FontBoldPath: cfg.Export.FontBoldPath,
	}

	mux := newMux(sess, pdf, db)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	if err := sess.Close(shutdownCtx); err != nil {
		slog.Error("failed to flush question bank", "error", err)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// newStore picks the bank backend: PostgreSQL when a database URL is
// configured, the JSON file otherwise.
func newStore(ctx context.Context, cfg *config.Config) (bank.Store, *database.DB, error) {
	if cfg.Data.DatabaseURL == "" {
		slog.Info("using file question store", "path", cfg.Data.BankPath)
		return bank.NewFileStore(cfg.Data.BankPath), nil, nil
	}

	db, err := database.New(ctx, cfg.Data.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	store, err := bank.NewPostgresStore(ctx, db.Pool)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	slog.Info("using postgres question store")
	return store, db, nil
}

// newRegistry picks the dedup backend: Redis when a cache URL is
// configured, in-process memory otherwise.
func newRegistry(ctx context.Context, cfg *config.Config) (dedup.Registry, func(), error) {
	if cfg.Cache.URL == "" {
		return dedup.NewMemoryRegistry(), func() {}, nil
	}

	reg, err := dedup.NewRedisRegistry(ctx, cfg.Cache.URL)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("using redis dedup registry")
	return reg, func() {
		if err := reg.Close(); err != nil {
			slog.Warn("closing dedup registry", "error", err)
		}
	}, nil
}

func newProviderRouter(cfg *config.Config) *ai.Router {
	router := ai.NewRouter()
	if cfg.AI.Gemini.APIKey != "" {
		var opts []ai.GeminiOption
		if cfg.AI.Gemini.Model != "" {
			opts = append(opts, ai.WithGeminiModel(cfg.AI.Gemini.Model))
		}
		router.Register("gemini", ai.NewGeminiProvider(cfg.AI.Gemini.APIKey, opts...))
		slog.Info("registered generation provider", "provider", "gemini")
	}
	if cfg.AI.Ollama.Enabled {
		router.Register("ollama", ai.NewOllamaProvider(cfg.AI.Ollama.URL))
		slog.Info("registered generation provider", "provider", "ollama")
	}
	return router
}

// newMux creates the HTTP router with the API and health check
// endpoints.
func newMux(sess *session.Session, pdf *export.PDFExporter, db *database.DB) *http.ServeMux {
	mux := http.NewServeMux()
	httpapi.New(sess, pdf).Routes(mux)
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", handleReadyz(db))
	return mux
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func handleReadyz(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if db != nil {
			if err := db.HealthCheck(r.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}
}
