package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// DismissSeat handles POST /api/applicants/{applicant_id}/dismiss.
// Dismissal always auto-fills the freed seat from the waiting list.
func (h *Handler) DismissSeat(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("applicant_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid applicant ID"})
		return
	}

	result, err := h.engine.VacateSeat(c.Request.Context(), id, true)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// WithdrawSeat handles POST /api/applicants/{applicant_id}/withdraw.
// The auto-fill policy for withdrawals comes from configuration.
func (h *Handler) WithdrawSeat(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("applicant_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid applicant ID"})
		return
	}

	result, err := h.engine.VacateSeat(c.Request.Context(), id, h.engine.WithdrawAutofill())
	if err != nil {
		writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// FillVacantRoom handles POST /api/rooms/{room_id}/fill.
func (h *Handler) FillVacantRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("room_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid room ID"})
		return
	}

	result, err := h.engine.FillVacantRoom(c.Request.Context(), id)
	if err != nil {
		writeEngineError(c, err)
		return
	}
	if result.PromotedApplicantID == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "No waiting applicants", "roomId": result.RoomID})
		return
	}
	c.JSON(http.StatusOK, result)
}

// allocatedSeatResponse flattens an active allocation with its applicant and
// room for the administrative listing.
type allocatedSeatResponse struct {
	Applicant  model.Applicant  `json:"applicant"`
	Room       model.Room       `json:"room"`
	Allocation model.Allocation `json:"allocation"`
}

// GetAllocatedSeats handles GET /api/seats/allocated.
func GetAllocatedSeats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var allocs []model.Allocation
		if err := db.Where("active = ?", true).Find(&allocs).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve allocations"})
			return
		}

		applicantIDs := make([]int64, 0, len(allocs))
		roomIDs := make([]int64, 0, len(allocs))
		for _, a := range allocs {
			applicantIDs = append(applicantIDs, a.ApplicantID)
			roomIDs = append(roomIDs, a.RoomID)
		}

		applicants := make(map[int64]model.Applicant)
		rooms := make(map[int64]model.Room)
		if len(allocs) > 0 {
			var applicantRows []model.Applicant
			if err := db.Find(&applicantRows, applicantIDs).Error; err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve applicants"})
				return
			}
			for _, a := range applicantRows {
				applicants[a.ID] = a
			}
			var roomRows []model.Room
			if err := db.Find(&roomRows, roomIDs).Error; err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve rooms"})
				return
			}
			for _, r := range roomRows {
				rooms[r.ID] = r
			}
		}

		responses := make([]allocatedSeatResponse, 0, len(allocs))
		for _, a := range allocs {
			responses = append(responses, allocatedSeatResponse{
				Applicant:  applicants[a.ApplicantID],
				Room:       rooms[a.RoomID],
				Allocation: a,
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}

// waitingEntryResponse pairs a waiting entry with its applicant.
type waitingEntryResponse struct {
	model.WaitingEntry
	Applicant model.Applicant `json:"applicant"`
}

// GetWaitingList handles GET /api/seats/waiting, ranked by score with FIFO
// tie-breaking.
func GetWaitingList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var entries []model.WaitingEntry
		if err := db.Order("score DESC, added_on ASC").Find(&entries).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve waiting list"})
			return
		}

		ids := make([]int64, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ApplicantID)
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

		responses := make([]waitingEntryResponse, 0, len(entries))
		for _, e := range entries {
			responses = append(responses, waitingEntryResponse{
				WaitingEntry: e,
				Applicant:    applicants[e.ApplicantID],
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}

// GetApplicantSeat handles GET /api/applicants/{applicant_id}/seat.
func GetApplicantSeat(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("applicant_id"), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid applicant ID"})
			return
		}

		var alloc model.Allocation
		err = db.Where("applicant_id = ? AND active = ?", id, true).First(&alloc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"hasSeat": false})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		var room model.Room
		if err := db.First(&room, alloc.RoomID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"hasSeat": true, "allocation": alloc, "room": room})
	}
}
