// Package importer reconciles book records from the search provider into
// the product catalog.
package importer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mustafahasanain/bookstock/internal/entities"
	"github.com/mustafahasanain/bookstock/internal/googlebooks"
)

// Short descriptions are cut to 157 characters plus an ellipsis once the
// stripped text exceeds 160.
const (
	shortDescriptionMax  = 160
	shortDescriptionTrim = 157
)

// ProductStore defines the catalog operations the reconciler needs.
type ProductStore interface {
	FindByTitle(title string) (uint, error)
	FindByISBN(isbn string) (uint, error)
	GetByID(id uint) (*entities.Product, error)
	Create(product *entities.Product) error
	Update(product *entities.Product) error
}

// CategoryStore defines lookup-or-create access to categories.
type CategoryStore interface {
	GetOrCreate(name string) (*entities.Category, error)
}

// CoverStore persists cover images and resolves the placeholder fallback.
type CoverStore interface {
	Store(ctx context.Context, imageURL, title string) (string, error)
}

// Settings exposes the import-related configuration values.
type Settings interface {
	DuplicateAction() entities.DuplicateAction
	DefaultCategory() string
}

// Request is a book record merged with the operator-supplied price,
// quantity and category.
type Request struct {
	googlebooks.Book
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Category string  `json:"category"`
}

// Result is the outcome of importing one request. A duplicate skip is a
// benign failure: Success is false but Skipped is true.
type Result struct {
	Success    bool   `json:"success"`
	Skipped    bool   `json:"skipped,omitempty"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	ProductID  uint   `json:"product_id,omitempty"`
	ProductURL string `json:"product_url,omitempty"`
}

// Importer decides per request whether to create, update or skip a catalog
// entry, according to the configured duplicate policy.
type Importer struct {
	products   ProductStore
	categories CategoryStore
	covers     CoverStore
	settings   Settings
	stripper   *bluemonday.Policy

	// MatchByISBN additionally matches duplicates by ISBN before the
	// title lookup. Off by default; title matching is the authoritative
	// duplicate-detection strategy.
	MatchByISBN bool
}

// New creates an Importer.
func New(products ProductStore, categories CategoryStore, covers CoverStore, settings Settings) *Importer {
	return &Importer{
		products:   products,
		categories: categories,
		covers:     covers,
		settings:   settings,
		stripper:   bluemonday.StrictPolicy(),
	}
}

// Import reconciles one request into the catalog.
func (im *Importer) Import(ctx context.Context, req Request) Result {
	if strings.TrimSpace(req.Title) == "" {
		return Result{
			Success: false,
			Message: "book title is required",
		}
	}

	existingID, err := im.findExisting(req)
	if err != nil {
		return Result{
			Success: false,
			Title:   req.Title,
			Message: fmt.Sprintf("duplicate lookup failed: %v", err),
		}
	}

	if existingID != 0 {
		if im.settings.DuplicateAction() == entities.DuplicateActionSkip {
			return Result{
				Success:    false,
				Skipped:    true,
				Title:      req.Title,
				Message:    "book already exists (skipped)",
				ProductID:  existingID,
				ProductURL: productURL(existingID),
			}
		}
		return im.update(ctx, existingID, req)
	}

	return im.create(ctx, req)
}

func (im *Importer) findExisting(req Request) (uint, error) {
	if im.MatchByISBN && req.ISBN != "" {
		id, err := im.products.FindByISBN(req.ISBN)
		if err != nil {
			return 0, err
		}
		if id != 0 {
			return id, nil
		}
	}
	return im.products.FindByTitle(req.Title)
}

func (im *Importer) create(ctx context.Context, req Request) Result {
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	price := req.Price
	if price < 0 {
		price = 0
	}

	product := entities.Product{
		Name:          req.Title,
		Price:         price,
		StockQuantity: quantity,
		StockStatus:   stockStatus(quantity),
		GoogleID:      req.GoogleID,
		ISBN:          req.ISBN,
		ISBN10:        req.ISBN10,
		ISBN13:        req.ISBN13,
		Subtitle:      req.Subtitle,
		Authors:       req.Authors,
		Publisher:     req.Publisher,
		PublishedDate: req.PublishedDate,
		PageCount:     req.PageCount,
		Subjects:      req.Categories,
		Language:      req.Language,
		PreviewLink:   req.PreviewLink,
		InfoLink:      req.InfoLink,
		ImportedAt:    time.Now(),
	}

	if req.Description != "" {
		product.Description = req.Description
		product.ShortDescription = im.shortDescription(req.Description)
	}

	category, err := im.categories.GetOrCreate(im.categoryName(req.Category))
	if err != nil {
		log.Printf("Category assignment failed for %q: %v", req.Title, err)
	} else {
		product.CategoryID = category.ID
	}

	// Cover resolution never fails the import; the pipeline falls back
	// to the placeholder internally.
	cover, err := im.covers.Store(ctx, req.ImageURL, req.Title)
	if err != nil {
		log.Printf("Cover storage failed for %q: %v", req.Title, err)
	} else {
		product.CoverImage = cover
	}

	if err := im.products.Create(&product); err != nil {
		return Result{
			Success: false,
			Title:   req.Title,
			Message: fmt.Sprintf("failed to create product: %v", err),
		}
	}

	return Result{
		Success:    true,
		Title:      req.Title,
		Message:    "product created successfully",
		ProductID:  product.ID,
		ProductURL: productURL(product.ID),
	}
}

func (im *Importer) update(ctx context.Context, id uint, req Request) Result {
	product, err := im.products.GetByID(id)
	if err != nil {
		return Result{
			Success: false,
			Title:   req.Title,
			Message: "product not found",
		}
	}

	if req.Description != "" {
		product.Description = req.Description
		product.ShortDescription = im.shortDescription(req.Description)
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.Quantity > 0 {
		product.StockQuantity = req.Quantity
		product.StockStatus = stockStatus(req.Quantity)
	}

	if req.Category != "" {
		category, err := im.categories.GetOrCreate(req.Category)
		if err != nil {
			log.Printf("Category assignment failed for %q: %v", req.Title, err)
		} else {
			product.CategoryID = category.ID
		}
	}

	applyMetadata(product, req)

	// The cover is replaced only when the incoming record carries an
	// image; absence never clears an existing one.
	if req.ImageURL != "" {
		cover, err := im.covers.Store(ctx, req.ImageURL, req.Title)
		if err != nil {
			log.Printf("Cover storage failed for %q: %v", req.Title, err)
		} else {
			product.CoverImage = cover
		}
	}

	product.ImportedAt = time.Now()

	if err := im.products.Update(product); err != nil {
		return Result{
			Success: false,
			Title:   req.Title,
			Message: fmt.Sprintf("failed to update product: %v", err),
		}
	}

	return Result{
		Success:    true,
		Title:      req.Title,
		Message:    "product updated successfully",
		ProductID:  product.ID,
		ProductURL: productURL(product.ID),
	}
}

// categoryName resolves the effective category: the request's own, the
// configured default, then "Uncategorized" inside CategoryStore.
func (im *Importer) categoryName(requested string) string {
	if strings.TrimSpace(requested) != "" {
		return requested
	}
	return im.settings.DefaultCategory()
}

// applyMetadata overwrites book metadata columns with non-empty incoming
// values, leaving existing values untouched otherwise.
func applyMetadata(product *entities.Product, req Request) {
	setIf := func(dst *string, value string) {
		if value != "" {
			*dst = value
		}
	}
	setIf(&product.GoogleID, req.GoogleID)
	setIf(&product.ISBN, req.ISBN)
	setIf(&product.ISBN10, req.ISBN10)
	setIf(&product.ISBN13, req.ISBN13)
	setIf(&product.Subtitle, req.Subtitle)
	setIf(&product.Authors, req.Authors)
	setIf(&product.Publisher, req.Publisher)
	setIf(&product.PublishedDate, req.PublishedDate)
	setIf(&product.Subjects, req.Categories)
	setIf(&product.Language, req.Language)
	setIf(&product.PreviewLink, req.PreviewLink)
	setIf(&product.InfoLink, req.InfoLink)
	if req.PageCount > 0 {
		product.PageCount = req.PageCount
	}
}

// shortDescription strips HTML from a description and truncates it.
// Truncation counts runes so multi-byte text is never cut mid-character.
func (im *Importer) shortDescription(description string) string {
	text := strings.TrimSpace(im.stripper.Sanitize(description))
	runes := []rune(text)
	if len(runes) > shortDescriptionMax {
		return string(runes[:shortDescriptionTrim]) + "..."
	}
	return text
}

func stockStatus(quantity int) entities.StockStatus {
	if quantity > 0 {
		return entities.StockStatusInStock
	}
	return entities.StockStatusOutOfStock
}

func productURL(id uint) string {
	return fmt.Sprintf("/api/products/%d", id)
}
