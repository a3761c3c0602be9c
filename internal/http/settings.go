package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mustafahasanain/bookstock/internal/entities"
)

// SettingsController exposes the importer's runtime settings.
type SettingsController struct {
	store SettingsStore
}

func NewSettingsController(store SettingsStore) *SettingsController {
	return &SettingsController{store: store}
}

type settingsPayload struct {
	APIKey           *string `json:"api_key"`
	DuplicateAction  *string `json:"duplicate_action"`
	DefaultCategory  *string `json:"default_category"`
	ImageWidth       *int    `json:"image_width"`
	ImageHeight      *int    `json:"image_height"`
	PlaceholderImage *string `json:"placeholder_image"`
}

// GetSettings returns the effective settings. The API key is masked; only
// its presence is reported.
func (controller *SettingsController) GetSettings(c *gin.Context) {
	width, height := controller.store.ImageSize()

	c.IndentedJSON(http.StatusOK, gin.H{
		"api_key_configured": controller.store.APIKey() != "",
		"duplicate_action":   controller.store.DuplicateAction(),
		"default_category":   controller.store.DefaultCategory(),
		"image_width":        width,
		"image_height":       height,
		"placeholder_image":  controller.store.PlaceholderImage(),
	})
}

// UpdateSettings applies a partial settings update. Absent fields are left
// unchanged.
func (controller *SettingsController) UpdateSettings(c *gin.Context) {
	var payload settingsPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadRequest(c, "invalid settings payload")
		return
	}

	if payload.DuplicateAction != nil {
		action := *payload.DuplicateAction
		if action != string(entities.DuplicateActionSkip) && action != string(entities.DuplicateActionUpdate) {
			respondBadRequest(c, "duplicate_action must be 'skip' or 'update'")
			return
		}
	}
	if payload.ImageWidth != nil && *payload.ImageWidth <= 0 {
		respondBadRequest(c, "image_width must be positive")
		return
	}
	if payload.ImageHeight != nil && *payload.ImageHeight <= 0 {
		respondBadRequest(c, "image_height must be positive")
		return
	}

	updates := map[string]string{}
	if payload.APIKey != nil {
		updates[entities.SettingKeyAPIKey] = *payload.APIKey
	}
	if payload.DuplicateAction != nil {
		updates[entities.SettingKeyDuplicateAction] = *payload.DuplicateAction
	}
	if payload.DefaultCategory != nil {
		updates[entities.SettingKeyDefaultCategory] = *payload.DefaultCategory
	}
	if payload.ImageWidth != nil {
		updates[entities.SettingKeyImageWidth] = strconv.Itoa(*payload.ImageWidth)
	}
	if payload.ImageHeight != nil {
		updates[entities.SettingKeyImageHeight] = strconv.Itoa(*payload.ImageHeight)
	}
	if payload.PlaceholderImage != nil {
		updates[entities.SettingKeyPlaceholderImage] = *payload.PlaceholderImage
	}

	for key, value := range updates {
		if err := controller.store.SetSetting(key, value); err != nil {
			respondInternalError(c, err, "save setting "+key)
			return
		}
	}

	respondSuccess(c, "settings updated")
}
