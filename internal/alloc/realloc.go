package alloc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hostel-allocation-backend/internal/model"
)

// Reallocate recomputes every seat assignment from scratch: the pool of
// current occupants and waiting applicants is re-ranked by score and packed
// into rooms in selection order; whoever is left over goes back to the
// waiting list. The run is one atomic transaction and holds the exclusive
// lock, so single-applicant operations are queued until it finishes.
// Cancelling ctx aborts the run and rolls back to the prior state.
func (e *Engine) Reallocate(ctx context.Context) (*model.AllocationRun, error) {
	e.reallocMu.Lock()
	defer e.reallocMu.Unlock()

	run := model.AllocationRun{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var active []model.Allocation
		if err := tx.Where("active = ?", true).Find(&active).Error; err != nil {
			return err
		}
		var waiting []model.WaitingEntry
		if err := tx.Find(&waiting).Error; err != nil {
			return err
		}
		pool := BuildPool(active, waiting)

		var rooms []model.Room
		if err := tx.Find(&rooms).Error; err != nil {
			return err
		}
		SortRooms(rooms, e.buildingPriority)

		// Reset: deactivate everything, clear the queue, zero occupancy.
		if err := tx.Model(&model.Allocation{}).
			Where("active = ?", true).
			Update("active", false).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&model.WaitingEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Room{}).
			Where("1 = 1").
			Update("current_occupancy", 0).Error; err != nil {
			return err
		}

		plans, leftover := planAssignments(rooms, pool)

		now := time.Now()
		expiry := e.expiryFrom(now)
		for _, plan := range plans {
			for _, c := range plan.Candidates {
				alloc := model.Allocation{
					ApplicantID: c.ApplicantID,
					RoomID:      plan.Room.ID,
					RunID:       &run.ID,
					Score:       c.Score,
					ExpiryDate:  expiry,
					Active:      true,
				}
				if err := tx.Create(&alloc).Error; err != nil {
					return err
				}
			}
			if err := tx.Model(&model.Room{}).
				Where("id = ?", plan.Room.ID).
				Update("current_occupancy", len(plan.Candidates)).Error; err != nil {
				return err
			}
			run.Assigned += len(plan.Candidates)
		}

		for _, c := range leftover {
			addedOn := c.AddedOn
			if addedOn.IsZero() {
				addedOn = now
			}
			entry := model.WaitingEntry{
				ApplicantID: c.ApplicantID,
				Score:       c.Score,
				AddedOn:     addedOn,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			run.Waitlisted++
		}

		run.FinishedAt = time.Now()
		return tx.Create(&run).Error
	})
	if err != nil {
		return nil, wrapStore("reallocate", err)
	}

	e.log.WithFields(logrus.Fields{
		"run_id":     run.ID,
		"assigned":   run.Assigned,
		"waitlisted": run.Waitlisted,
	}).Info("reallocation run complete")
	return &run, nil
}

// ListRuns returns past reallocation runs, newest first.
func (e *Engine) ListRuns(ctx context.Context) ([]model.AllocationRun, error) {
	var runs []model.AllocationRun
	err := e.db.WithContext(ctx).Order("started_at DESC").Find(&runs).Error
	if err != nil {
		return nil, wrapStore("list_runs", err)
	}
	return runs, nil
}
