package http

import (
	"context"

	"github.com/mustafahasanain/bookstock/internal/entities"
	"github.com/mustafahasanain/bookstock/internal/googlebooks"
)

// BookSearchClient defines the search provider operations the controllers
// need.
type BookSearchClient interface {
	Search(ctx context.Context, query, filter string, maxResults int) ([]googlebooks.Book, error)
	SearchBook(ctx context.Context, title string) (*googlebooks.Book, error)
	TestKey(ctx context.Context, key string) bool
}

// ProductReader provides read access to the product catalog.
type ProductReader interface {
	GetByID(id uint) (*entities.Product, error)
	GetAll(limit, offset int) ([]entities.Product, int64, error)
}

// SettingsStore provides key-value settings access plus typed readers for
// the settings the API exposes.
type SettingsStore interface {
	GetSetting(key string) (*entities.Setting, error)
	SetSetting(key, value string) error
	APIKey() string
	DuplicateAction() entities.DuplicateAction
	DefaultCategory() string
	ImageSize() (width, height int)
	PlaceholderImage() string
}

// JobStore provides import job persistence for the async import endpoints.
type JobStore interface {
	CreateJob(rawText, category string) (*entities.ImportJob, error)
	GetJob(id uint) (*entities.ImportJob, error)
}
