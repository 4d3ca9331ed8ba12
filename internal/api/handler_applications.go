package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// pendingApplicationResponse joins an application with its applicant for the
// review listing.
type pendingApplicationResponse struct {
	model.Application
	Applicant model.Applicant `json:"applicant"`
}

// GetPendingApplications handles GET /api/applications.
func GetPendingApplications(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var apps []model.Application
		if err := db.Where("status = ?", model.ApplicationPending).
			Order("submitted_at ASC").
			Find(&apps).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve applications"})
			return
		}

		ids := make([]int64, 0, len(apps))
		for _, a := range apps {
			ids = append(ids, a.ApplicantID)
		}
		applicants := make(map[int64]model.Applicant, len(ids))
		if len(ids) > 0 {
			var rows []model.Applicant
			if err := db.Find(&rows, ids).Error; err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve applicants"})
				return
			}
			for _, a := range rows {
				applicants[a.ID] = a
			}
		}

		responses := make([]pendingApplicationResponse, 0, len(apps))
		for _, a := range apps {
			responses = append(responses, pendingApplicationResponse{
				Application: a,
				Applicant:   applicants[a.ApplicantID],
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}

// ApproveApplication handles POST /api/applications/{application_id}/approve.
func (h *Handler) ApproveApplication(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("application_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	outcome, err := h.engine.Approve(c.Request.Context(), id)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// RejectApplication handles POST /api/applications/{application_id}/reject.
func (h *Handler) RejectApplication(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("application_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid application ID"})
		return
	}

	if err := h.engine.Reject(c.Request.Context(), id); err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application rejected and applicant notified."})
}
