// Package internal provides the App struct that wires all components of the
// Luna journaling agent together and initializes the CLI layer.
package internal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ebetancourt/luna/internal/cli"
	"github.com/ebetancourt/luna/internal/core"
	"github.com/ebetancourt/luna/internal/integration"
	"github.com/ebetancourt/luna/internal/observability"
	"github.com/ebetancourt/luna/internal/storage"
	"github.com/ebetancourt/luna/internal/summarize"
	"github.com/ebetancourt/luna/pkg/models"
)

// App holds all service dependencies for the Luna journaling agent.
type App struct {
	BasePath string
	Cfg      *models.Config

	// Configuration
	ConfigMgr core.ConfigurationManager

	// Storage layer
	Journal storage.JournalStore
	DB      *sql.DB
	Reviews storage.ReviewStoreManager
	Tokens  storage.TokenStoreManager

	// Core services
	Orch       *core.Orchestrator
	ReviewFlow *core.ReviewFlow

	// Summarization
	Summarizer core.Summarizer

	// Observability
	EventLog    observability.EventLog
	Events      *observability.Recorder
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components of the Luna journaling agent.
// basePath is the root directory where all data is stored (typically the
// directory containing .lunaconfig, or LUNA_HOME).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	app.Cfg = cfg

	// --- Observability ---
	app.EventLog, err = observability.NewJSONLEventLog(cfg.EventLogPath)
	if err != nil {
		// Non-fatal: disable observability if the log can't be created.
		app.EventLog = nil
	}
	app.Events = observability.NewRecorder(app.EventLog)
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Storage layer ---
	app.Journal = storage.NewJournalStore(cfg.JournalDir)
	if err := app.Journal.EnsureReady(); err != nil {
		return nil, fmt.Errorf("preparing journal directory: %w", err)
	}

	app.DB, err = storage.OpenDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	app.Reviews = storage.NewReviewStoreManager(app.DB)
	app.Tokens = storage.NewTokenStoreManager(app.DB)

	// --- Summarization ---
	timeout := time.Duration(cfg.Model.TimeoutSeconds) * time.Second
	var extractor summarize.MetadataExtractor
	if cfg.Journaling.SummarizationEnabled {
		if os.Getenv("OPENAI_API_KEY") != "" {
			client := summarize.NewOpenAIClient("", cfg.Model.Name)
			app.Summarizer = summarize.NewService(client, cfg.Journaling, timeout)
			if mx, ok := client.(summarize.MetadataExtractor); ok {
				extractor = mx
			}
		} else {
			// No API key: fall back to extractive summaries.
			app.Summarizer = summarize.NewExtractiveService(cfg.Journaling)
		}
	}

	// --- Core services ---
	app.Orch = core.NewOrchestrator(cfg.Journaling, app.Journal, app.Summarizer, app.Events)

	tasks, calendar := app.connectProviders(cfg)
	app.ReviewFlow = core.NewReviewFlow(app.Reviews, tasks, calendar, app.Events)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Cfg = cfg
	cli.Orch = app.Orch
	cli.Journal = app.Journal
	cli.ReviewFlow = app.ReviewFlow
	cli.Tokens = app.Tokens
	cli.Extractor = extractor
	cli.EventLog = app.EventLog
	cli.Events = app.Events
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// connectProviders builds task and calendar clients for providers with a
// stored token. Missing tokens or config just leave the provider nil.
func (a *App) connectProviders(cfg *models.Config) (core.TaskProvider, core.CalendarProvider) {
	ctx := context.Background()

	var tasks core.TaskProvider
	if hc, err := integration.HTTPClient(ctx, integration.ProviderTodoist, cfg.Integrations.Todoist, a.Tokens); err == nil {
		tasks = integration.NewTodoistClient(hc)
	}

	var calendar core.CalendarProvider
	if hc, err := integration.HTTPClient(ctx, integration.ProviderGoogle, cfg.Integrations.Google, a.Tokens); err == nil {
		calendar = integration.NewGoogleCalendarClient(hc)
	}

	return tasks, calendar
}

// Close releases resources held by the App: the event log file handle and
// the database connection.
func (a *App) Close() error {
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for the Luna data directory.
// It checks the LUNA_HOME env var, then walks up from the current directory
// looking for .lunaconfig, and falls back to the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("LUNA_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".lunaconfig")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
