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

const seatAllocationLink = "/seat-allocation"

// ApproveOutcome reports what happened to an approved application: either a
// concrete room assignment or a waiting-list position.
type ApproveOutcome struct {
	ApplicantID     int64       `json:"applicantId"`
	Score           float64     `json:"score"`
	Allocated       bool        `json:"allocated"`
	Room            *model.Room `json:"room,omitempty"`
	AllocationID    int64       `json:"allocationId,omitempty"`
	WaitingPosition int         `json:"waitingPosition,omitempty"`
}

// Approve computes the applicant's priority score, assigns the best
// available room or waitlists them, and marks the application approved.
// The whole operation is one transaction; the notification is emitted after
// commit.
func (e *Engine) Approve(ctx context.Context, applicationID int64) (*ApproveOutcome, error) {
	e.reallocMu.RLock()
	defer e.reallocMu.RUnlock()

	var out ApproveOutcome
	var msgs []notify.Message

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app model.Application
		if err := tx.First(&app, applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("approve", "application %d not found", applicationID)
			}
			return err
		}
		if app.Status != model.ApplicationPending {
			return invalidState("approve", "application %d is %s, not %s",
				applicationID, app.Status, model.ApplicationPending)
		}

		var applicant model.Applicant
		if err := tx.First(&applicant, app.ApplicantID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("approve", "applicant %d not found", app.ApplicantID)
			}
			return err
		}

		var activeCount int64
		if err := tx.Model(&model.Allocation{}).
			Where("applicant_id = ? AND active = ?", applicant.ID, true).
			Count(&activeCount).Error; err != nil {
			return err
		}
		if activeCount > 0 {
			return invalidState("approve", "applicant %d already holds an active allocation", applicant.ID)
		}

		var waitingCount int64
		if err := tx.Model(&model.WaitingEntry{}).
			Where("applicant_id = ?", applicant.ID).
			Count(&waitingCount).Error; err != nil {
			return err
		}
		if waitingCount > 0 {
			return invalidState("approve", "applicant %d is already on the waiting list", applicant.ID)
		}

		s := e.scoreFor(&applicant, &app)
		if err := tx.Model(&model.Applicant{}).
			Where("id = ?", applicant.ID).
			Update("score", s).Error; err != nil {
			return err
		}

		now := time.Now()
		room, alloc, err := e.allocateSeat(tx, applicant.ID, s, nil, now)
		if err != nil {
			return err
		}

		if room != nil {
			out = ApproveOutcome{
				ApplicantID:  applicant.ID,
				Score:        s,
				Allocated:    true,
				Room:         room,
				AllocationID: alloc.ID,
			}
			msgs = append(msgs, notify.Message{
				RecipientID: applicant.ID,
				Type:        model.NotifySeatApproval,
				Body:        fmt.Sprintf("Your seat has been allocated in %s.", seatLabel(room)),
				Link:        seatAllocationLink,
			})
		} else {
			entry := model.WaitingEntry{ApplicantID: applicant.ID, Score: s, AddedOn: now}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			position, err := waitingPosition(tx, entry)
			if err != nil {
				return err
			}
			out = ApproveOutcome{
				ApplicantID:     applicant.ID,
				Score:           s,
				Allocated:       false,
				WaitingPosition: position,
			}
			msgs = append(msgs, notify.Message{
				RecipientID: applicant.ID,
				Type:        model.NotifyWaitingList,
				Body:        "No seat was available. You have been added to the waiting list.",
				Link:        seatAllocationLink,
			})
		}

		return tx.Model(&model.Application{}).
			Where("id = ?", applicationID).
			Update("status", model.ApplicationApproved).Error
	})
	if err != nil {
		return nil, wrapStore("approve", err)
	}

	e.notifier.Emit(ctx, msgs...)
	return &out, nil
}

// Reject marks a pending application rejected. No allocation or waiting-list
// side effects.
func (e *Engine) Reject(ctx context.Context, applicationID int64) error {
	e.reallocMu.RLock()
	defer e.reallocMu.RUnlock()

	var recipientID int64
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var app model.Application
		if err := tx.First(&app, applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("reject", "application %d not found", applicationID)
			}
			return err
		}
		if app.Status != model.ApplicationPending {
			return invalidState("reject", "application %d is %s, not %s",
				applicationID, app.Status, model.ApplicationPending)
		}
		recipientID = app.ApplicantID
		return tx.Model(&model.Application{}).
			Where("id = ?", applicationID).
			Update("status", model.ApplicationRejected).Error
	})
	if err != nil {
		return wrapStore("reject", err)
	}

	e.notifier.Emit(ctx, notify.Message{
		RecipientID: recipientID,
		Type:        model.NotifySeatRejection,
		Body:        "Your seat application has been rejected by the authority.",
		Link:        seatAllocationLink,
	})
	return nil
}

// waitingPosition returns the 1-based rank of an entry in the waiting list
// ordering (score descending, earliest addedOn first among equals).
func waitingPosition(tx *gorm.DB, entry model.WaitingEntry) (int, error) {
	var ahead int64
	err := tx.Model(&model.WaitingEntry{}).
		Where("score > ? OR (score = ? AND added_on < ?)", entry.Score, entry.Score, entry.AddedOn).
		Count(&ahead).Error
	if err != nil {
		return 0, err
	}
	return int(ahead) + 1, nil
}
