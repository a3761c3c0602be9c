package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mustafahasanain/bookstock/internal/entities"
	"github.com/mustafahasanain/bookstock/internal/googlebooks"
)

type fakeProducts struct {
	byTitle map[string]uint
	byISBN  map[string]uint
	stored  map[uint]*entities.Product
	nextID  uint

	createErr error
	lookupErr error
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{
		byTitle: map[string]uint{},
		byISBN:  map[string]uint{},
		stored:  map[uint]*entities.Product{},
		nextID:  1,
	}
}

func (f *fakeProducts) FindByTitle(title string) (uint, error) {
	if f.lookupErr != nil {
		return 0, f.lookupErr
	}
	return f.byTitle[title], nil
}

func (f *fakeProducts) FindByISBN(isbn string) (uint, error) {
	if f.lookupErr != nil {
		return 0, f.lookupErr
	}
	return f.byISBN[isbn], nil
}

func (f *fakeProducts) GetByID(id uint) (*entities.Product, error) {
	product, ok := f.stored[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProducts) Create(product *entities.Product) error {
	if f.createErr != nil {
		return f.createErr
	}
	product.ID = f.nextID
	f.nextID++
	copied := *product
	f.stored[product.ID] = &copied
	f.byTitle[product.Name] = product.ID
	if product.ISBN != "" {
		f.byISBN[product.ISBN] = product.ID
	}
	return nil
}

func (f *fakeProducts) Update(product *entities.Product) error {
	copied := *product
	f.stored[product.ID] = &copied
	return nil
}

type fakeCategories struct {
	created []string
	err     error
}

func (f *fakeCategories) GetOrCreate(name string) (*entities.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, name)
	return &entities.Category{ID: uint(len(f.created)) + 10, Name: name}, nil
}

type fakeCovers struct {
	calls []string
	err   error
}

func (f *fakeCovers) Store(_ context.Context, imageURL, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.calls = append(f.calls, imageURL)
	if imageURL == "" {
		return "placeholder-book.png", nil
	}
	return "stored-cover.jpg", nil
}

type fakeSettings struct {
	action   entities.DuplicateAction
	category string
}

func (f *fakeSettings) DuplicateAction() entities.DuplicateAction {
	if f.action == "" {
		return entities.DuplicateActionSkip
	}
	return f.action
}

func (f *fakeSettings) DefaultCategory() string {
	return f.category
}

func newTestImporter(products *fakeProducts, settings *fakeSettings) (*Importer, *fakeCategories, *fakeCovers) {
	categories := &fakeCategories{}
	covers := &fakeCovers{}
	return New(products, categories, covers, settings), categories, covers
}

func TestImport_EmptyTitleFails(t *testing.T) {
	imp, _, _ := newTestImporter(newFakeProducts(), &fakeSettings{})

	result := imp.Import(context.Background(), Request{})

	if result.Success {
		t.Error("expected failure for empty title")
	}
	if result.Message != "book title is required" {
		t.Errorf("unexpected message: %s", result.Message)
	}
}

func TestImport_CreatesNewProduct(t *testing.T) {
	products := newFakeProducts()
	imp, categories, covers := newTestImporter(products, &fakeSettings{category: "books"})

	result := imp.Import(context.Background(), Request{
		Book: googlebooks.Book{
			Title:       "Dune",
			Authors:     "Frank Herbert",
			Description: "Spice and sand.",
			ImageURL:    "https://example.com/dune.jpg",
			ISBN:        "9780441172719",
		},
		Price:    45.50,
		Quantity: 3,
	})

	if !result.Success {
		t.Fatalf("expected success, got: %s", result.Message)
	}
	if result.ProductID == 0 {
		t.Error("expected product ID to be set")
	}
	if result.ProductURL != "/api/products/1" {
		t.Errorf("unexpected product URL: %s", result.ProductURL)
	}

	product := products.stored[result.ProductID]
	if product.Price != 45.50 || product.StockQuantity != 3 {
		t.Errorf("price/quantity not stored: %+v", product)
	}
	if product.StockStatus != entities.StockStatusInStock {
		t.Errorf("expected instock, got %s", product.StockStatus)
	}
	if product.CoverImage != "stored-cover.jpg" {
		t.Errorf("cover not stored: %s", product.CoverImage)
	}
	if len(categories.created) != 1 || categories.created[0] != "books" {
		t.Errorf("expected default category assignment, got %v", categories.created)
	}
	if len(covers.calls) != 1 || covers.calls[0] != "https://example.com/dune.jpg" {
		t.Errorf("unexpected cover calls: %v", covers.calls)
	}
}

func TestImport_CreateDefaultsQuantityToOne(t *testing.T) {
	products := newFakeProducts()
	imp, _, _ := newTestImporter(products, &fakeSettings{})

	result := imp.Import(context.Background(), Request{
		Book: googlebooks.Book{Title: "Hyperion"},
	})

	if !result.Success {
		t.Fatalf("expected success, got: %s", result.Message)
	}
	product := products.stored[result.ProductID]
	if product.StockQuantity != 1 {
		t.Errorf("expected quantity 1, got %d", product.StockQuantity)
	}
}

func TestImport_NoImageUsesPlaceholder(t *testing.T) {
	products := newFakeProducts()
	imp, _, _ := newTestImporter(products, &fakeSettings{})

	result := imp.Import(context.Background(), Request{
		Book: googlebooks.Book{Title: "Obscure Title"},
	})

	if !result.Success {
		t.Fatalf("expected success, got: %s", result.Message)
	}
	if products.stored[result.ProductID].CoverImage != "placeholder-book.png" {
		t.Errorf("expected placeholder cover, got %s", products.stored[result.ProductID].CoverImage)
	}
}

func TestImport_RequestCategoryOverridesDefault(t *testing.T) {
	imp, categories, _ := newTestImporter(newFakeProducts(), &fakeSettings{category: "books"})

	result := imp.Import(context.Background(), Request{
		Book:     googlebooks.Book{Title: "Dune"},
		Category: "Science Fiction",
	})

	if !result.Success {
		t.Fatalf("expected success, got: %s", result.Message)
	}
	if len(categories.created) != 1 || categories.created[0] != "Science Fiction" {
		t.Errorf("expected requested category, got %v", categories.created)
	}
}

func TestImport_DuplicateSkip(t *testing.T) {
	products := newFakeProducts()
	products.byTitle["Dune"] = 7
	imp, _, _ := newTestImporter(products, &fakeSettings{action: entities.DuplicateActionSkip})

	result := imp.Import(context.Background(), Request{
		Book: googlebooks.Book{Title: "Dune"},
	})

	if result.Success {
		t.Error("skip must not count as success")
	}
	if !result.Skipped {
		t.Error("expected Skipped to be set")
	}
	if result.ProductID != 7 {
		t.Errorf("expected existing product ID 7, got %d", result.ProductID)
	}
	if result.Message != "book already exists (skipped)" {
		t.Errorf("unexpected message: %s", result.Message)
	}
}

func TestImport_DuplicateUpdate(t *testing.T) {
	products := newFakeProducts()
	products.stored[7] = &entities.Product{
		Name:          "Dune",
		Price:         10,
		StockQuantity: 1,
		CoverImage:    "old-cover.jpg",
		Authors:       "F. Herbert",
	}
	products.stored[7].ID = 7
	products.byTitle["Dune"] = 7
	imp, _, _ := newTestImporter(products, &fakeSettings{action: entities.DuplicateActionUpdate})

	result := imp.Import(context.Background(), Request{
		Book: googlebooks.Book{
			Title:       "Dune",
			Authors:     "Frank Herbert",
			Description: "Updated description.",
		},
		Price:    45,
		Quantity: 5,
	})

	if !result.Success {
		t.Fatalf("expected success, got: %s", result.Message)
	}
	if result.Message != "product updated successfully" {
		t.Errorf("unexpected message: %s", result.Message)
	}

	product := products.stored[7]
	if product.Price != 45 || product.StockQuantity != 5 {
		t.Errorf("update did not apply price/quantity: %+v", product)
	}
	if product.Authors != "Frank Herbert" {
		t.Errorf("metadata not updated: %s", product.Authors)
	}
	// No incoming image, so the existing cover survives.
	if product.CoverImage != "old-cover.jpg" {
		t.Errorf("cover should not change without a new image, got %s", product.CoverImage)
	}
}

func TestImport_UpdateReplacesCoverWhenImagePresent(t *testing.T) {
	products := newFakeProducts()
	products.stored[7] = &entities.Product{Name: "Dune", CoverImage: "old-cover.jpg"}
	products.stored[7].ID = 7
	products.byTitle["Dune"] = 7
	imp, _, _ := newTestImporter(products, &fakeSettings{action: entities.DuplicateActionUpdate})

	result := imp.Import(context.Background(), Request{
		Book: googlebooks.Book{
			Title:    "Dune",
			ImageURL: "https://example.com/new.jpg",
		},
	})

	if !result.Success {
		t.Fatalf("expected success, got: %s", result.Message)
	}
	if products.stored[7].CoverImage != "stored-cover.jpg" {
		t.Errorf("expected replaced cover, got %s", products.stored[7].CoverImage)
	}
}

func TestImport_UpdateToleratesMissingPriceAndQuantity(t *testing.T) {
	products := newFakeProducts()
	products.stored[7] = &entities.Product{
		Name:          "Dune",
		Price:         45,
		StockQuantity: 3,
		StockStatus:   entities.StockStatusInStock,
	}
	products.stored[7].ID = 7
	products.byTitle["Dune"] = 7
	imp, _, _ := newTestImporter(products, &fakeSettings{action: entities.DuplicateActionUpdate})

	result := imp.Import(context.Background(), Request{
		Book: googlebooks.Book{Title: "Dune"},
	})

	if !result.Success {
		t.Fatalf("expected success, got: %s", result.Message)
	}
	product := products.stored[7]
	if product.Price != 45 || product.StockQuantity != 3 {
		t.Errorf("zero-valued price/quantity must not overwrite: %+v", product)
	}
}

func TestImport_MatchByISBN(t *testing.T) {
	products := newFakeProducts()
	products.byISBN["9780441172719"] = 9
	imp, _, _ := newTestImporter(products, &fakeSettings{action: entities.DuplicateActionSkip})
	imp.MatchByISBN = true

	result := imp.Import(context.Background(), Request{
		Book: googlebooks.Book{
			Title: "Dune (Deluxe Edition)",
			ISBN:  "9780441172719",
		},
	})

	if !result.Skipped {
		t.Error("expected ISBN duplicate to be skipped")
	}
	if result.ProductID != 9 {
		t.Errorf("expected existing product ID 9, got %d", result.ProductID)
	}
}

func TestImport_ISBNMatchingOffByDefault(t *testing.T) {
	products := newFakeProducts()
	products.byISBN["9780441172719"] = 9
	imp, _, _ := newTestImporter(products, &fakeSettings{action: entities.DuplicateActionSkip})

	result := imp.Import(context.Background(), Request{
		Book: googlebooks.Book{
			Title: "Dune (Deluxe Edition)",
			ISBN:  "9780441172719",
		},
	})

	if !result.Success {
		t.Errorf("title mismatch with ISBN matching off must create: %s", result.Message)
	}
}

func TestImport_CreateFailureReported(t *testing.T) {
	products := newFakeProducts()
	products.createErr = errors.New("disk full")
	imp, _, _ := newTestImporter(products, &fakeSettings{})

	result := imp.Import(context.Background(), Request{
		Book: googlebooks.Book{Title: "Dune"},
	})

	if result.Success {
		t.Error("expected failure when create errors")
	}
	if !strings.Contains(result.Message, "disk full") {
		t.Errorf("expected underlying error in message, got: %s", result.Message)
	}
}

func TestShortDescription(t *testing.T) {
	imp, _, _ := newTestImporter(newFakeProducts(), &fakeSettings{})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain short text unchanged",
			input: "A desert planet.",
			want:  "A desert planet.",
		},
		{
			name:  "html stripped",
			input: "<p>A <b>desert</b> planet.</p>",
			want:  "A desert planet.",
		},
		{
			name:  "long text truncated with ellipsis",
			input: strings.Repeat("a", 200),
			want:  strings.Repeat("a", 157) + "...",
		},
		{
			name:  "exactly 160 kept whole",
			input: strings.Repeat("b", 160),
			want:  strings.Repeat("b", 160),
		},
		{
			name:  "multi-byte text truncated on rune boundaries",
			input: strings.Repeat("ك", 200),
			want:  strings.Repeat("ك", 157) + "...",
		},
		{
			name:  "multi-byte text of 160 runes kept whole",
			input: strings.Repeat("é", 160),
			want:  strings.Repeat("é", 160),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := imp.shortDescription(tt.input); got != tt.want {
				t.Errorf("shortDescription(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
