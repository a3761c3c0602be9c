// Package products provides database operations for catalog products.
//
// # Interface Implementation
//
//	var _ importer.ProductStore = (*Repository)(nil)
package products

import (
	"gorm.io/gorm"

	"github.com/mustafahasanain/bookstock/internal/entities"
)

// Repository handles product database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new products repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByTitle returns the ID of the product whose name matches exactly,
// regardless of stock status. Returns 0 when there is no match.
func (r *Repository) FindByTitle(title string) (uint, error) {
	var product entities.Product
	err := r.db.Select("id").Where("name = ?", title).First(&product).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return product.ID, nil
}

// FindByISBN returns the ID of the product with the given ISBN, or 0.
func (r *Repository) FindByISBN(isbn string) (uint, error) {
	if isbn == "" {
		return 0, nil
	}
	var product entities.Product
	err := r.db.Select("id").Where("isbn = ?", isbn).First(&product).Error
	if err == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return product.ID, nil
}

// GetByID retrieves a product with its category.
func (r *Repository) GetByID(id uint) (*entities.Product, error) {
	var product entities.Product
	err := r.db.Preload("Category").First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Create inserts a new product.
func (r *Repository) Create(product *entities.Product) error {
	return r.db.Create(product).Error
}

// Update persists changes to an existing product.
func (r *Repository) Update(product *entities.Product) error {
	return r.db.Save(product).Error
}

// GetAll lists products with their categories, newest first.
func (r *Repository) GetAll(limit, offset int) ([]entities.Product, int64, error) {
	var total int64
	if err := r.db.Model(&entities.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}

	var products []entities.Product
	err := r.db.Preload("Category").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	return products, total, err
}
