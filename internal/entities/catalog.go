package entities

import (
	"time"

	"gorm.io/gorm"
)

type StockStatus string

const (
	StockStatusInStock    StockStatus = "instock"
	StockStatusOutOfStock StockStatus = "outofstock"
)

// DuplicateAction controls what happens when an imported book matches an
// existing product by title.
type DuplicateAction string

const (
	DuplicateActionSkip   DuplicateAction = "skip"
	DuplicateActionUpdate DuplicateAction = "update"
)

type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:256" json:"name"`
	Slug      string    `gorm:"uniqueIndex;size:256" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}

// Product is a catalog entry materialized from a Google Books record plus
// operator-supplied price, quantity and category.
type Product struct {
	ID               uint        `gorm:"primaryKey" json:"id"`
	Name             string      `gorm:"index;size:512" json:"name"`
	Description      string      `gorm:"type:text" json:"description,omitempty"`
	ShortDescription string      `gorm:"size:512" json:"short_description,omitempty"`
	Price            float64     `json:"price"`
	StockQuantity    int         `json:"stock_quantity"`
	StockStatus      StockStatus `gorm:"size:20" json:"stock_status"`
	CategoryID       uint        `gorm:"index" json:"category_id"`
	Category         Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CoverImage       string      `gorm:"size:1024" json:"cover_image,omitempty"` // filename inside the covers dir

	// Book metadata carried over from the search provider.
	GoogleID      string `gorm:"index;size:64" json:"google_id,omitempty"`
	ISBN          string `gorm:"index;size:20" json:"isbn,omitempty"`
	ISBN10        string `gorm:"size:20" json:"isbn_10,omitempty"`
	ISBN13        string `gorm:"size:20" json:"isbn_13,omitempty"`
	Subtitle      string `gorm:"size:512" json:"subtitle,omitempty"`
	Authors       string `gorm:"size:512" json:"authors,omitempty"`
	Publisher     string `gorm:"size:256" json:"publisher,omitempty"`
	PublishedDate string `gorm:"size:32" json:"published_date,omitempty"`
	PageCount     int    `json:"page_count,omitempty"`
	Subjects      string `gorm:"size:512" json:"subjects,omitempty"`
	Language      string `gorm:"size:16" json:"language,omitempty"`
	PreviewLink   string `gorm:"size:1024" json:"preview_link,omitempty"`
	InfoLink      string `gorm:"size:1024" json:"info_link,omitempty"`

	ImportedAt time.Time      `json:"imported_at"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	SettingKeyAPIKey           = "api_key"
	SettingKeyImageWidth       = "image_width"
	SettingKeyImageHeight      = "image_height"
	SettingKeyDuplicateAction  = "duplicate_action"
	SettingKeyDefaultCategory  = "default_category"
	SettingKeyPlaceholderImage = "placeholder_image"
)
