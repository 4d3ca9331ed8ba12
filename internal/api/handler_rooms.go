package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// GetRooms handles GET /api/rooms with optional building and floor filters.
func GetRooms(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := db.Model(&model.Room{})
		if building := c.Query("building"); building != "" {
			q = q.Where("building_name = ?", building)
		}
		if floor := c.Query("floor"); floor != "" {
			n, err := strconv.Atoi(floor)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid floor number"})
				return
			}
			q = q.Where("floor_number = ?", n)
		}

		var rooms []model.Room
		if err := q.Order("building_name ASC, floor_number DESC, room_number ASC").
			Find(&rooms).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rooms"})
			return
		}
		c.JSON(http.StatusOK, rooms)
	}
}

// roomOccupantResponse pairs an occupant with their allocation expiry.
type roomOccupantResponse struct {
	model.Applicant
	ExpiryDate string `json:"expiryDate"`
}

// GetRoomOccupants handles GET /api/rooms/{room_id}/occupants.
func GetRoomOccupants(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID, err := strconv.ParseInt(c.Param("room_id"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
			return
		}

		var allocs []model.Allocation
		if err := db.Where("room_id = ? AND active = ?", roomID, true).
			Find(&allocs).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve allocations"})
			return
		}

		ids := make([]int64, 0, len(allocs))
		for _, a := range allocs {
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

		responses := make([]roomOccupantResponse, 0, len(allocs))
		for _, a := range allocs {
			responses = append(responses, roomOccupantResponse{
				Applicant:  applicants[a.ApplicantID],
				ExpiryDate: a.ExpiryDate.Format("2006-01-02"),
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}
