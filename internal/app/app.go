package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"Helpdesk/internal/config"
	"Helpdesk/internal/crawler"
	"Helpdesk/internal/domain"
	"Helpdesk/internal/httpapi"
	"Helpdesk/internal/infrastructure/llm"
	"Helpdesk/internal/infrastructure/metrics"
	"Helpdesk/internal/infrastructure/parser"
	"Helpdesk/internal/infrastructure/storage"
	"Helpdesk/internal/infrastructure/telegram"
	"Helpdesk/internal/logging"
	"Helpdesk/internal/ports"
	"Helpdesk/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	knowledge *usecase.KnowledgeService
	server    *httpapi.Server
}

// New opens storage and builds every service. Close releases the database.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging)
	}

	repos, db, err := openStorage(ctx, cfg.Database, baseLogger)
	if err != nil {
		return nil, err
	}
	a := &Application{cfg: cfg, logger: baseLogger, db: db}

	model, settingKey, fallbackKey, err := chatModel(cfg.LLM)
	if err != nil {
		a.Close()
		return nil, err
	}

	m := metrics.New()
	siteCrawler := crawler.New(
		&http.Client{Timeout: cfg.Crawler.FetchTimeout},
		baseLogger.With("component", "crawler"),
		crawler.Options{
			MaxPages:     cfg.Crawler.MaxPages,
			UserAgent:    cfg.Crawler.UserAgent,
			MaxBodyBytes: cfg.Crawler.MaxBodyBytes,
			Recorder:     m,
		},
	)

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.Enabled() {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	auth, err := usecase.NewAuthService(usecase.AuthDeps{
		Users:    repos.Users,
		Secret:   cfg.Auth.JWTSecret,
		TokenTTL: cfg.Auth.TokenTTL,
		Logger:   baseLogger.With("component", "auth"),
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	if admin := cfg.Auth.BootstrapAdmin; admin.Email != "" {
		if err := auth.EnsureAdmin(ctx, admin.Name, admin.Email, admin.Password); err != nil {
			a.Close()
			return nil, err
		}
	}

	a.knowledge = usecase.NewKnowledgeService(usecase.KnowledgeDeps{
		Documents:  repos.Documents,
		Settings:   repos.Settings,
		Crawler:    siteCrawler,
		ExtractPDF: parser.ExtractPDFText,
		SettingKey: settingKey,
		Logger:     baseLogger.With("component", "knowledge"),
	})

	a.server = httpapi.NewServer(httpapi.Deps{
		Auth:      auth,
		Knowledge: a.knowledge,
		Chat: usecase.NewChatService(usecase.ChatDeps{
			Model:           model,
			Documents:       repos.Documents,
			Settings:        repos.Settings,
			SettingKey:      settingKey,
			FallbackAPIKey:  fallbackKey,
			MaxOutputTokens: cfg.LLM.MaxOutputTokens,
			Recorder:        m,
			Logger:          baseLogger.With("component", "chat"),
		}),
		Tickets: usecase.NewTicketService(usecase.TicketDeps{
			Tickets:  repos.Tickets,
			Notifier: notifier,
			Logger:   baseLogger.With("component", "tickets"),
		}),
		Users:          usecase.NewUserService(repos.Users, baseLogger.With("component", "users")),
		Stats:          usecase.NewStatsService(repos.Stats),
		Requests:       m,
		MetricsHandler: m.Handler(),
		Logger:         baseLogger.With("component", "http"),
		AllowedOrigin:  cfg.Server.AllowedOrigin,
		MaxUploadBytes: cfg.Upload.MaxBytes,
	})

	baseLogger.Info("application ready",
		"driver", cfg.Database.Driver,
		"provider", cfg.LLM.Provider,
		"telegram", notifier != nil,
	)
	return a, nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *Application) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	a.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Crawl indexes a site from the command line.
func (a *Application) Crawl(ctx context.Context, seed string, follow bool) (usecase.ScrapeResult, error) {
	return a.knowledge.Scrape(ctx, seed, follow)
}

// IngestPDF indexes a PDF file from disk.
func (a *Application) IngestPDF(ctx context.Context, path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return a.knowledge.UploadPDF(ctx, filepath.Base(path), data)
}

// Close releases the database pool, if any.
func (a *Application) Close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("close database", "error", err)
	}
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (storage.Repositories, *sql.DB, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		logger.Warn("using in-memory storage, data is lost on restart")
		return storage.NewMemoryRepositories(), nil, nil
	case config.DriverPostgres:
		db, err := storage.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return storage.Repositories{}, nil, err
		}
		if cfg.Migrate {
			if err := storage.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return storage.Repositories{}, nil, err
			}
			logger.Info("database schema migrated")
		}
		return storage.NewPostgresRepositories(db), db, nil
	default:
		return storage.Repositories{}, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// chatModel picks the provider and the settings key its API key is stored under.
func chatModel(cfg config.LLMConfig) (ports.ChatModel, string, string, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		return llm.NewGeminiModel(cfg.Gemini), domain.SettingGeminiAPIKey, cfg.Gemini.APIKey, nil
	case config.ProviderChatGPT:
		return llm.NewChatGPTModel(cfg.ChatGPT), domain.SettingOpenAIAPIKey, cfg.ChatGPT.APIKey, nil
	default:
		return nil, "", "", fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
