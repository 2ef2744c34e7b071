package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tasknest-dev/tasknest/db"
	"github.com/tasknest-dev/tasknest/internal/models"
	"github.com/tasknest-dev/tasknest/internal/types"
	"github.com/tasknest-dev/tasknest/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UpdatePreferenceRequest struct {
	IsActive *bool                  `json:"is_active"`
	Config   map[string]interface{} `json:"config"`
}

type PreferenceResponse struct {
	Channel  string         `json:"channel"`
	IsActive bool           `json:"is_active"`
	Config   datatypes.JSON `json:"config"`
}

// emailPreference loads the caller's email notification preference,
// creating the default row when it does not exist yet.
func emailPreference(userID uint) (models.NotificationPreference, error) {
	var preference models.NotificationPreference

	err := db.DB.Where("user_id = ? AND channel = ?", userID, types.EmailChannel).First(&preference).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		preference = models.NotificationPreference{
			UserID:   userID,
			Channel:  types.EmailChannel,
			IsActive: true,
		}
		err = db.DB.Create(&preference).Error
	}

	return preference, err
}

func GetNotificationPreference(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	preference, err := emailPreference(userID)

	if err != nil {
		log.Printf("Failed to load notification preference for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, PreferenceResponse{
		Channel:  preference.Channel,
		IsActive: preference.IsActive,
		Config:   preference.Config,
	})
}

func UpdateNotificationPreference(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req UpdatePreferenceRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	preference, err := emailPreference(userID)

	if err != nil {
		log.Printf("Failed to load notification preference for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.IsActive != nil {
		preference.IsActive = *req.IsActive
	}

	if req.Config != nil {
		configJSON, err := json.Marshal(req.Config)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid config format"})
			return
		}
		preference.Config = configJSON
	}

	if err := db.DB.Save(&preference).Error; err != nil {
		log.Printf("Failed to update notification preference for user %d: %v", userID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, PreferenceResponse{
		Channel:  preference.Channel,
		IsActive: preference.IsActive,
		Config:   preference.Config,
	})
}
