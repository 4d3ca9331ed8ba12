package alloc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
	"hostel-allocation-backend/internal/notify"
)

// VacateResult reports a vacated seat and the promotion that may have
// refilled it.
type VacateResult struct {
	ApplicantID         int64      `json:"applicantId"`
	Room                model.Room `json:"room"`
	AutofillRequested   bool       `json:"autofillRequested"`
	PromotedApplicantID int64      `json:"promotedApplicantId,omitempty"`
}

// VacateSeat deactivates an applicant's active allocation and frees the
// seat. When autofill is set, the top-ranked waiting applicant is promoted
// into the freed room within the same transaction, so a crash can never
// leave the seat vacant but un-backfillable. Whether withdrawal requests
// auto-fill is the caller's explicit choice, not route wiring.
func (e *Engine) VacateSeat(ctx context.Context, applicantID int64, autofill bool) (*VacateResult, error) {
	e.reallocMu.RLock()
	defer e.reallocMu.RUnlock()

	var out VacateResult
	var msgs []notify.Message

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var applicant model.Applicant
		if err := tx.First(&applicant, applicantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("vacate", "applicant %d not found", applicantID)
			}
			return err
		}

		var alloc model.Allocation
		err := tx.Where("applicant_id = ? AND active = ?", applicantID, true).First(&alloc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidState("vacate", "applicant %d has no active allocation", applicantID)
		}
		if err != nil {
			return err
		}

		var room model.Room
		if err := tx.First(&room, alloc.RoomID).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.Allocation{}).
			Where("id = ?", alloc.ID).
			Update("active", false).Error; err != nil {
			return err
		}
		if err := releaseSeat(tx, room.ID); err != nil {
			return err
		}
		room.CurrentOccupancy--
		if room.CurrentOccupancy < 0 {
			room.CurrentOccupancy = 0
		}

		msgs = append(msgs, notify.Message{
			RecipientID: applicantID,
			Type:        model.NotifySeatDismissal,
			Body:        fmt.Sprintf("Your seat in %s has been vacated.", seatLabel(&room)),
			Link:        seatAllocationLink,
		})

		out = VacateResult{
			ApplicantID:       applicantID,
			Room:              room,
			AutofillRequested: autofill,
		}

		if !autofill {
			return nil
		}

		promoted, err := e.promoteTopWaiting(tx, &room, time.Now())
		if err != nil {
			// The seat we just freed was claimed by a concurrent allocation
			// before the promotion; the waiting applicant keeps their spot.
			if KindOf(err) == KindCapacityRace {
				e.log.WithError(err).WithField("room_id", room.ID).
					Warn("freed seat claimed concurrently, skipping auto-fill")
				return nil
			}
			return err
		}
		if promoted == nil {
			// Waiting list is empty; the room stays under capacity until the
			// next reallocation run or an explicit vacancy fill.
			return nil
		}

		out.PromotedApplicantID = promoted.ApplicantID
		out.Room = room
		msgs = append(msgs, notify.Message{
			RecipientID: promoted.ApplicantID,
			Type:        model.NotifySeatAllocation,
			Body:        fmt.Sprintf("Congratulations! You have been allocated a seat in %s.", seatLabel(&room)),
			Link:        seatAllocationLink,
		})
		return nil
	})
	if err != nil {
		return nil, wrapStore("vacate", err)
	}

	e.notifier.Emit(ctx, msgs...)
	return &out, nil
}

// FillResult reports a manual vacancy fill.
type FillResult struct {
	RoomID              int64 `json:"roomId"`
	PromotedApplicantID int64 `json:"promotedApplicantId,omitempty"`
}

// FillVacantRoom promotes the top waiting applicant into a specific room
// known to be under capacity, outside the dismiss flow.
func (e *Engine) FillVacantRoom(ctx context.Context, roomID int64) (*FillResult, error) {
	e.reallocMu.RLock()
	defer e.reallocMu.RUnlock()

	var out FillResult
	var msgs []notify.Message

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room model.Room
		if err := tx.First(&room, roomID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("fill", "room %d not found", roomID)
			}
			return err
		}

		promoted, err := e.promoteTopWaiting(tx, &room, time.Now())
		if err != nil {
			if KindOf(err) == KindCapacityRace {
				return invalidState("fill", "room %d has no free seat", roomID)
			}
			return err
		}

		out = FillResult{RoomID: roomID}
		if promoted == nil {
			return nil
		}

		out.PromotedApplicantID = promoted.ApplicantID
		msgs = append(msgs, notify.Message{
			RecipientID: promoted.ApplicantID,
			Type:        model.NotifySeatAllocation,
			Body:        fmt.Sprintf("Congratulations! You have been allocated a seat in %s.", seatLabel(&room)),
			Link:        seatAllocationLink,
		})
		return nil
	})
	if err != nil {
		return nil, wrapStore("fill", err)
	}

	e.notifier.Emit(ctx, msgs...)
	return &out, nil
}
