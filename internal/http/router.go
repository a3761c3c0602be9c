// Package http wires the REST API for search, imports, settings and the
// product catalog.
package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.Version)
	searchController := NewSearchController(cfg.SearchClient)
	importController := NewImportController(cfg.Importer, cfg.BatchRunner, cfg.Jobs, cfg.TaskClient)
	settingsController := NewSettingsController(cfg.Settings)
	productsController := NewProductsController(cfg.Products)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Search endpoints
	router.POST("/api/search", searchController.Search)
	router.GET("/api/search/book", searchController.SearchOne)
	router.GET("/api/search/test-key", searchController.TestKey)

	// Import endpoints
	router.POST("/api/import/validate", importController.Validate)
	router.POST("/api/import/text", importController.ImportText)
	router.POST("/api/import/books", importController.ImportBooks)
	router.POST("/api/import/jobs", importController.CreateJob)
	router.GET("/api/import/jobs/:id", importController.GetJob)
	router.GET("/api/import/sample", importController.SampleFormat)

	// Settings endpoints
	router.GET("/api/settings", settingsController.GetSettings)
	router.PUT("/api/settings", settingsController.UpdateSettings)

	// Catalog endpoints
	router.GET("/api/products", productsController.GetAll)
	router.GET("/api/products/:id", productsController.GetByID)

	// Stored cover images
	if cfg.CoversDir != "" {
		router.Static("/covers", cfg.CoversDir)
	}

	return router
}
