package cli

import (
	"github.com/ebetancourt/luna/internal/core"
	"github.com/ebetancourt/luna/internal/observability"
	"github.com/ebetancourt/luna/internal/storage"
	"github.com/ebetancourt/luna/internal/summarize"
	"github.com/ebetancourt/luna/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Cfg      *models.Config

	Orch       *core.Orchestrator
	Journal    storage.JournalStore
	ReviewFlow *core.ReviewFlow
	Tokens     storage.TokenStoreManager

	Extractor summarize.MetadataExtractor

	EventLog    observability.EventLog
	Events      *observability.Recorder
	MetricsCalc observability.MetricsCalculator
)
