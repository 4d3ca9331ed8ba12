package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-allocation-backend/internal/model"
)

// GetNotifications handles GET /api/applicants/{applicant_id}/notifications.
func GetNotifications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("applicant_id"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid applicant ID"})
			return
		}

		var notifications []model.Notification
		if err := db.Where("recipient_id = ?", id).
			Order("created_at DESC").
			Find(&notifications).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
			return
		}
		c.JSON(http.StatusOK, notifications)
	}
}

// MarkNotificationRead handles
// POST /api/applicants/{applicant_id}/notifications/{notification_id}/read.
func MarkNotificationRead(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		applicantID, err := strconv.ParseInt(c.Param("applicant_id"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid applicant ID"})
			return
		}
		notificationID, err := strconv.ParseInt(c.Param("notification_id"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
			return
		}

		res := db.Model(&model.Notification{}).
			Where("id = ? AND recipient_id = ?", notificationID, applicantID).
			Update("read", true)
		if res.Error != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
			return
		}
		if res.RowsAffected == 0 {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": notificationID, "read": true})
	}
}

type putPushSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutPushSubscription handles PUT /api/applicants/{applicant_id}/push-subscription.
func (h *Handler) PutPushSubscription(c *gin.Context) {
	applicantID, err := strconv.ParseInt(c.Param("applicant_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid applicant ID"})
		return
	}

	var req putPushSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	subscription := model.PushSubscription{
		Endpoint:    req.Endpoint,
		ApplicantID: applicantID,
		P256DH:      req.P256DH,
		Auth:        req.Auth,
	}
	if err := h.engine.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"applicant_id", "p256dh", "auth"}),
	}).Create(&subscription).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to save subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subscription saved"})
}

// GetVAPIDPublicKey handles GET /api/vapid_public_key.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Push notifications are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.webpush.VAPIDPublicKey})
}
