package http

import (
	"github.com/mustafahasanain/bookstock/internal/database"
	"github.com/mustafahasanain/bookstock/internal/importer"
	"github.com/mustafahasanain/bookstock/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to
// create the HTTP router. This replaces a long parameter list in
// NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database

	// Search provider
	SearchClient BookSearchClient

	// Import pipeline
	Importer    *importer.Importer
	BatchRunner *importer.BatchRunner

	// Stores
	Products ProductReader
	Settings SettingsStore
	Jobs     JobStore

	// Task queue client (optional; async import endpoints require it)
	TaskClient *tasks.Client

	// Covers directory served under /covers (optional)
	CoversDir string

	// Application info
	Version string
}
