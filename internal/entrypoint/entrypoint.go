// Package entrypoint wires dependencies and runs the HTTP server.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mustafahasanain/bookstock/internal/config"
	"github.com/mustafahasanain/bookstock/internal/covers"
	"github.com/mustafahasanain/bookstock/internal/database"
	"github.com/mustafahasanain/bookstock/internal/database/categories"
	"github.com/mustafahasanain/bookstock/internal/database/jobs"
	"github.com/mustafahasanain/bookstock/internal/database/products"
	"github.com/mustafahasanain/bookstock/internal/database/settings"
	"github.com/mustafahasanain/bookstock/internal/googlebooks"
	http_controllers "github.com/mustafahasanain/bookstock/internal/http"
	"github.com/mustafahasanain/bookstock/internal/importer"
	"github.com/mustafahasanain/bookstock/internal/scheduler"
	"github.com/mustafahasanain/bookstock/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookstock v%s", version)

	if cfg.GoogleBooks.APIKey == "" {
		log.Printf("WARNING: Google Books API key is not set. Searches will fail until one is configured via GOOGLE_BOOKS_API_KEY or the settings API.")
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	settingsRepo := settings.NewRepository(db.DB, cfg)
	categoriesRepo := categories.NewRepository(db.DB)
	productsRepo := products.NewRepository(db.DB)
	jobsRepo := jobs.NewRepository(db.DB)

	width, height := settingsRepo.ImageSize()
	coverPipeline, err := covers.NewPipeline(cfg.Images.Dir, width, height, cfg.Images.PlaceholderPath)
	if err != nil {
		log.Fatalf("Failed to initialize cover pipeline: %v", err)
	}
	// Dimensions and the fallback cover are re-read per store so settings
	// changes made through the API apply without a restart.
	coverPipeline.Sizes = settingsRepo.ImageSize
	coverPipeline.Fallback = settingsRepo.PlaceholderImage
	log.Printf("Cover pipeline initialized at %s (%dx%d)", cfg.Images.Dir, width, height)

	// The key is resolved per request for the same reason.
	searchClient := googlebooks.NewClient(settingsRepo.APIKey)

	imp := importer.New(productsRepo, categoriesRepo, coverPipeline, settingsRepo)
	runner := importer.NewBatchRunner(searchClient, imp, cfg.Import.ItemDelay)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var cleanupScheduler *scheduler.CleanupScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.DefaultConfig()
		taskCfg.Workers = cfg.Tasks.Workers
		taskCfg.TaskTimeout = cfg.Tasks.TaskTimeout
		taskCfg.ReleaseAfter = cfg.Tasks.ReleaseAfter
		taskCfg.CleanupInterval = cfg.Tasks.CleanupInterval

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewImportBatchQueue(jobsRepo, runner),
			tasks.NewCleanupJobsQueue(jobsRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		// Periodic cleanup of finished import jobs
		retentionHours := int(cfg.Import.JobRetention.Hours())
		cleanupScheduler = scheduler.NewCleanupScheduler(taskClient, cfg.Import.CleanupSchedule, retentionHours)
		if err := cleanupScheduler.Start(taskCtx); err != nil {
			log.Printf("WARNING: job cleanup scheduler not started: %v", err)
		}
	} else {
		log.Printf("Task queue disabled; async import jobs are unavailable")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:     db,
		SearchClient: searchClient,
		Importer:     imp,
		BatchRunner:  runner,
		Products:     productsRepo,
		Settings:     settingsRepo,
		Jobs:         jobsRepo,
		TaskClient:   taskClient,
		CoversDir:    coverPipeline.Dir(),
		Version:      version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
