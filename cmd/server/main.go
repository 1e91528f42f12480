package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"fireenrich/internal/config"
	memcred "fireenrich/internal/credstore/memory"
	rediscred "fireenrich/internal/credstore/redis"
	"fireenrich/internal/firecrawl"
	"fireenrich/internal/handler"
	"fireenrich/internal/llm"
	"fireenrich/internal/llm/openai"
	"fireenrich/internal/logger"
	"fireenrich/internal/port"
	"fireenrich/internal/presets"
	memrepo "fireenrich/internal/repository/memory"
	"fireenrich/internal/repository/postgres"
	"fireenrich/internal/router"
	"fireenrich/internal/service"
	"fireenrich/internal/spreadsheet"
	s3storage "fireenrich/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer appLog.Sync()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Session store
	var sessionRepo port.SessionRepository
	switch cfg.Session.Store {
	case "postgres":
		db, dbErr := postgres.NewDB(&cfg.DB)
		if dbErr != nil {
			return fmt.Errorf("failed to connect to database: %w", dbErr)
		}
		defer db.Close()
		sessionRepo = postgres.NewSessionRepo(db)
	case "memory", "":
		sessionRepo = memrepo.NewSessionRepo()
	default:
		return fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}

	// Credential store
	var credStore port.CredentialStore
	switch cfg.Credentials.Store {
	case "redis":
		rs, rsErr := rediscred.NewStore(&cfg.Redis)
		if rsErr != nil {
			return fmt.Errorf("failed to connect to redis: %w", rsErr)
		}
		defer func() { _ = rs.Close() }()
		credStore = rs
	case "memory", "":
		credStore = memcred.NewStore()
	default:
		return fmt.Errorf("unknown credential store %q", cfg.Credentials.Store)
	}

	// Object storage is optional
	var objectStorage port.ObjectStorage
	if cfg.S3.Enabled() {
		objectStorage, err = s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	} else {
		appLog.Info("S3 bucket not configured, export archiving disabled")
	}

	fieldPresets, err := presets.Load(cfg.Enrichment.PresetsFile)
	if err != nil {
		return fmt.Errorf("failed to load field presets: %w", err)
	}

	// Vendors
	scraper := firecrawl.NewClient(&cfg.Firecrawl)
	extractor := buildExtractor(cfg.OpenAI, appLog)
	parser := spreadsheet.NewParser(cfg.Upload.MaxRows)

	// Services
	locks := service.NewSessionLocker()
	tokenSvc := service.NewTokenService(cfg.Token)
	envSvc := service.NewEnvService(cfg.Firecrawl, cfg.OpenAI)
	scrapeSvc := service.NewScrapeService(scraper, cfg.Firecrawl.APIKey, appLog)
	gate := service.NewCredentialGate(envSvc, credStore, scrapeSvc, service.GateConfig{
		FirecrawlAPIKey: cfg.Firecrawl.APIKey,
		OpenAIAPIKey:    cfg.OpenAI.APIKey,
		ProbeURL:        cfg.Enrichment.ProbeURL,
	}, appLog)
	wizardSvc := service.NewWizardService(sessionRepo, gate, locks, appLog)
	enrichSvc := service.NewEnrichmentService(sessionRepo, gate, scraper, extractor, locks, service.EnrichmentConfig{
		Concurrency:     cfg.Enrichment.Concurrency,
		MaxContentChars: cfg.Enrichment.MaxContentChars,
		RunTimeout:      cfg.Enrichment.RunTimeout,
	}, appLog)
	exportSvc := service.NewExportService(sessionRepo, objectStorage, service.ArchiveConfig{
		Bucket:        cfg.S3.Bucket,
		PresignExpiry: cfg.S3.PresignExpiry,
	}, appLog)

	// Handlers
	handlers := router.Handlers{
		Health:     handler.NewHealthHandler(sessionRepo),
		Env:        handler.NewEnvHandler(envSvc, appLog),
		Scrape:     handler.NewScrapeHandler(scrapeSvc, appLog),
		Client:     handler.NewClientHandler(tokenSvc, appLog),
		Credential: handler.NewCredentialHandler(gate, appLog),
		Preset:     handler.NewPresetHandler(fieldPresets),
		Wizard:     handler.NewWizardHandler(wizardSvc, enrichSvc, exportSvc, parser, cfg.Upload.MaxFileSizeMB, appLog),
	}

	r := router.Setup(tokenSvc, handlers, cfg.CORS.AllowedOrigins, appLog)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("server starting",
			"addr", cfg.Server.Port,
			"session_store", cfg.Session.Store,
			"credential_store", cfg.Credentials.Store,
			"firecrawl_configured", cfg.Firecrawl.APIKey != "",
			"openai_configured", cfg.OpenAI.APIKey != "",
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// buildExtractor chains the default model with any configured fallback models.
func buildExtractor(cfg config.OpenAIConfig, log *logger.Logger) port.FieldExtractor {
	primary := openai.NewExtractor(&cfg)
	if len(cfg.FallbackModels) == 0 {
		return primary
	}
	extractors := []port.FieldExtractor{primary}
	names := []string{cfg.DefaultModel}
	for _, model := range cfg.FallbackModels {
		modelCfg := cfg
		modelCfg.DefaultModel = model
		extractors = append(extractors, openai.NewExtractor(&modelCfg))
		names = append(names, model)
	}
	return llm.NewFallbackExtractor(extractors, names, log)
}
