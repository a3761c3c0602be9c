package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		GoogleBooks
		Images
		Import
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	GoogleBooks struct {
		APIKey string
	}
	Images struct {
		Dir             string // Directory for stored cover images
		Width           int
		Height          int
		PlaceholderPath string // Source file copied in as the fallback cover
	}
	Import struct {
		DuplicateAction string        // "skip" or "update"
		DefaultCategory string
		ItemDelay       time.Duration // Pause between items in a batch, to respect API rate limits
		JobRetention    time.Duration // How long finished import jobs are kept
		CleanupSchedule string        // Cron format: "0 * * * *" = hourly
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		TaskTimeout     time.Duration
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8189)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("google_books_api_key", "")

	// Cover image defaults
	v.SetDefault("images_dir", "./covers")
	v.SetDefault("image_width", DefaultImageWidth)
	v.SetDefault("image_height", DefaultImageHeight)
	v.SetDefault("placeholder_image_path", "")

	// Import defaults
	v.SetDefault("duplicate_action", "skip")
	v.SetDefault("default_category", DefaultCategory)
	v.SetDefault("import_item_delay", "500ms")
	v.SetDefault("import_job_retention", "168h") // 7 days
	v.SetDefault("import_cleanup_schedule", "0 * * * *")

	// Task queue defaults. A single worker keeps batches strictly
	// sequential with one outstanding remote call at a time.
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_timeout", "30m")
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		GoogleBooks: GoogleBooks{
			APIKey: v.GetString("GOOGLE_BOOKS_API_KEY"),
		},
		Images: Images{
			Dir:             v.GetString("IMAGES_DIR"),
			Width:           v.GetInt("IMAGE_WIDTH"),
			Height:          v.GetInt("IMAGE_HEIGHT"),
			PlaceholderPath: v.GetString("PLACEHOLDER_IMAGE_PATH"),
		},
		Import: Import{
			DuplicateAction: v.GetString("DUPLICATE_ACTION"),
			DefaultCategory: v.GetString("DEFAULT_CATEGORY"),
			ItemDelay:       v.GetDuration("IMPORT_ITEM_DELAY"),
			JobRetention:    v.GetDuration("IMPORT_JOB_RETENTION"),
			CleanupSchedule: v.GetString("IMPORT_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			TaskTimeout:     v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
