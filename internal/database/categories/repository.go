// Package categories provides database operations for product categories.
package categories

import (
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/mustafahasanain/bookstock/internal/entities"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases a category name and collapses everything that is not
// a letter or digit into single dashes.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStrip.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Repository handles category database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new categories repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByName retrieves a category by exact name.
func (r *Repository) GetByName(name string) (*entities.Category, error) {
	var category entities.Category
	err := r.db.Where("name = ?", name).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetBySlug retrieves a category by slug.
func (r *Repository) GetBySlug(slug string) (*entities.Category, error) {
	var category entities.Category
	err := r.db.Where("slug = ?", slug).First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetOrCreate returns the category with the given name, creating it when
// missing. When creation fails on the unique slug (a concurrent create or a
// name variant mapping to the same slug), it falls back to the slug match.
// Empty names map to "Uncategorized".
func (r *Repository) GetOrCreate(name string) (*entities.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Uncategorized"
	}

	if category, err := r.GetByName(name); err == nil {
		return category, nil
	}

	category := entities.Category{
		Name: name,
		Slug: Slugify(name),
	}
	if err := r.db.Create(&category).Error; err != nil {
		if existing, slugErr := r.GetBySlug(category.Slug); slugErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("create category %q: %w", name, err)
	}

	return &category, nil
}

// GetAll lists every category.
func (r *Repository) GetAll() ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}
