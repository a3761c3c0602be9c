// Package settings provides database operations for application settings.
//
// # Usage
//
//	repo := settings.NewRepository(db, cfg)
//	action := repo.DuplicateAction()
package settings

import (
	"strconv"

	"gorm.io/gorm"

	"github.com/mustafahasanain/bookstock/internal/config"
	"github.com/mustafahasanain/bookstock/internal/entities"
)

// Repository handles settings persistence. Values stored in the database
// override the process configuration; configuration values act as defaults.
type Repository struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewRepository creates a new settings repository.
func NewRepository(db *gorm.DB, cfg *config.Config) *Repository {
	return &Repository{db: db, cfg: cfg}
}

// GetSetting retrieves a setting by key.
func (r *Repository) GetSetting(key string) (*entities.Setting, error) {
	var setting entities.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// SetSetting creates or updates a setting.
func (r *Repository) SetSetting(key, value string) error {
	var setting entities.Setting
	result := r.db.Where("key = ?", key).First(&setting)

	if result.Error == gorm.ErrRecordNotFound {
		setting = entities.Setting{
			Key:   key,
			Value: value,
		}
		return r.db.Create(&setting).Error
	} else if result.Error != nil {
		return result.Error
	}

	setting.Value = value
	return r.db.Save(&setting).Error
}

// DeleteSetting removes a setting by key.
func (r *Repository) DeleteSetting(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.Setting{}).Error
}

func (r *Repository) stringValue(key, fallback string) string {
	setting, err := r.GetSetting(key)
	if err != nil || setting.Value == "" {
		return fallback
	}
	return setting.Value
}

func (r *Repository) intValue(key string, fallback int) int {
	setting, err := r.GetSetting(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(setting.Value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// APIKey returns the Google Books API key, empty when unconfigured.
func (r *Repository) APIKey() string {
	return r.stringValue(entities.SettingKeyAPIKey, r.cfg.GoogleBooks.APIKey)
}

// DuplicateAction returns the configured duplicate policy, defaulting to skip.
func (r *Repository) DuplicateAction() entities.DuplicateAction {
	value := r.stringValue(entities.SettingKeyDuplicateAction, r.cfg.Import.DuplicateAction)
	if value == string(entities.DuplicateActionUpdate) {
		return entities.DuplicateActionUpdate
	}
	return entities.DuplicateActionSkip
}

// DefaultCategory returns the category assigned when an import has none.
func (r *Repository) DefaultCategory() string {
	fallback := r.cfg.Import.DefaultCategory
	if fallback == "" {
		fallback = config.DefaultCategory
	}
	return r.stringValue(entities.SettingKeyDefaultCategory, fallback)
}

// ImageSize returns the configured cover dimensions.
func (r *Repository) ImageSize() (width, height int) {
	w := r.cfg.Images.Width
	if w <= 0 {
		w = config.DefaultImageWidth
	}
	h := r.cfg.Images.Height
	if h <= 0 {
		h = config.DefaultImageHeight
	}
	return r.intValue(entities.SettingKeyImageWidth, w), r.intValue(entities.SettingKeyImageHeight, h)
}

// PlaceholderImage returns the stored placeholder cover filename, if any.
func (r *Repository) PlaceholderImage() string {
	return r.stringValue(entities.SettingKeyPlaceholderImage, "")
}
