// Package alloc implements the seat allocation engine: approvals,
// rejections, seat vacation with optional auto-fill, manual vacancy filling
// and full reallocation runs. Every multi-step operation executes inside a
// single database transaction; partial effects are never observable.
package alloc

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"hostel-allocation-backend/config"
	"hostel-allocation-backend/internal/model"
	"hostel-allocation-backend/internal/notify"
	"hostel-allocation-backend/internal/score"
)

// Engine coordinates all mutations of rooms, allocations and the waiting
// list. Single-applicant operations run concurrently; a reallocation run
// takes the write lock and blocks them for its duration.
type Engine struct {
	db               *gorm.DB
	scoring          score.Policy
	buildingPriority []string
	expiryMonths     int
	withdrawAutofill bool
	notifier         notify.Emitter
	log              logrus.FieldLogger

	reallocMu sync.RWMutex
}

// New creates an engine with the given policy.
func New(db *gorm.DB, cfg *config.Config, notifier notify.Emitter, log logrus.FieldLogger) *Engine {
	return &Engine{
		db: db,
		scoring: score.Policy{
			HomeCity:           cfg.Scoring.HomeCity,
			AdjoiningDistricts: cfg.Scoring.AdjoiningDistricts,
		},
		buildingPriority: cfg.Allocation.BuildingPriority,
		expiryMonths:     cfg.Allocation.ExpiryMonths,
		withdrawAutofill: cfg.Allocation.WithdrawAutofill,
		notifier:         notifier,
		log:              log,
	}
}

// DB exposes the underlying handle for read-only query handlers.
func (e *Engine) DB() *gorm.DB { return e.db }

// WithdrawAutofill reports the configured auto-fill policy for voluntary
// withdrawals.
func (e *Engine) WithdrawAutofill() bool { return e.withdrawAutofill }

// scoreFor computes the priority score for an applicant. Values extracted
// from the application's result card take precedence over the applicant
// record; unparseable extracted values degrade to zero contribution.
func (e *Engine) scoreFor(applicant *model.Applicant, app *model.Application) float64 {
	in := score.Input{
		Year:        applicant.Year,
		CGPA:        applicant.CGPA,
		MeritRank:   applicant.MeritRank,
		HomeAddress: applicant.HomeAddress,
	}
	if app != nil {
		if strings.TrimSpace(app.ResultCGPA) != "" {
			v, _ := score.ParseFloat("result_cgpa", app.ResultCGPA, e.log)
			in.CGPA = v
		}
		if strings.TrimSpace(app.ResultYear) != "" {
			v, _ := score.ParseInt("result_year", app.ResultYear, e.log)
			in.Year = v
		}
		if strings.TrimSpace(app.ResultMeritRank) != "" {
			v, _ := score.ParseInt("result_merit_rank", app.ResultMeritRank, e.log)
			in.MeritRank = v
		}
	}
	return score.Calculate(in, e.scoring)
}

func (e *Engine) expiryFrom(now time.Time) time.Time {
	return now.AddDate(0, e.expiryMonths, 0)
}

// claimSeat increments a room's occupancy only while a seat is free. The
// check and the write are one conditional statement, so two transactions
// racing for the last seat cannot both succeed: the loser affects zero rows.
func claimSeat(tx *gorm.DB, roomID int64) (bool, error) {
	res := tx.Model(&model.Room{}).
		Where("id = ? AND current_occupancy < capacity", roomID).
		UpdateColumn("current_occupancy", gorm.Expr("current_occupancy + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// releaseSeat decrements a room's occupancy, floored at zero.
func releaseSeat(tx *gorm.DB, roomID int64) error {
	return tx.Model(&model.Room{}).
		Where("id = ?", roomID).
		UpdateColumn("current_occupancy",
			gorm.Expr("CASE WHEN current_occupancy > 0 THEN current_occupancy - 1 ELSE 0 END")).
		Error
}

// allocateSeat selects the best available room and claims one seat for the
// applicant. When a room fills concurrently between selection and claim, the
// race is recovered by moving on to the next candidate room. Returns a nil
// room when every room is full.
func (e *Engine) allocateSeat(tx *gorm.DB, applicantID int64, s float64, runID *string, now time.Time) (*model.Room, *model.Allocation, error) {
	var rooms []model.Room
	if err := tx.Where("current_occupancy < capacity").Find(&rooms).Error; err != nil {
		return nil, nil, err
	}
	SortRooms(rooms, e.buildingPriority)

	for i := range rooms {
		room := &rooms[i]
		claimed, err := claimSeat(tx, room.ID)
		if err != nil {
			return nil, nil, err
		}
		if !claimed {
			race := capacityRace("allocate", "room %d filled concurrently", room.ID)
			e.log.WithField("room_id", room.ID).WithError(race).
				Debug("retrying selection with next room")
			continue
		}

		alloc := model.Allocation{
			ApplicantID: applicantID,
			RoomID:      room.ID,
			RunID:       runID,
			Score:       s,
			ExpiryDate:  e.expiryFrom(now),
			Active:      true,
		}
		if err := tx.Create(&alloc).Error; err != nil {
			return nil, nil, err
		}
		room.CurrentOccupancy++
		return room, &alloc, nil
	}
	return nil, nil, nil
}

// promoteTopWaiting moves the highest-ranked waiting applicant into the
// given room as part of the surrounding transaction. It returns a nil
// allocation when the waiting list is empty, and a KindCapacityRace error
// when the room has no free seat.
func (e *Engine) promoteTopWaiting(tx *gorm.DB, room *model.Room, now time.Time) (*model.Allocation, error) {
	var entry model.WaitingEntry
	err := tx.Order("score DESC, added_on ASC").First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	claimed, err := claimSeat(tx, room.ID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, capacityRace("promote", "room %d has no free seat", room.ID)
	}

	alloc := model.Allocation{
		ApplicantID: entry.ApplicantID,
		RoomID:      room.ID,
		Score:       entry.Score,
		ExpiryDate:  e.expiryFrom(now),
		Active:      true,
	}
	if err := tx.Create(&alloc).Error; err != nil {
		return nil, err
	}
	if err := tx.Delete(&model.WaitingEntry{}, "applicant_id = ?", entry.ApplicantID).Error; err != nil {
		return nil, err
	}
	room.CurrentOccupancy++
	return &alloc, nil
}

// seatLabel describes a room for notification text.
func seatLabel(room *model.Room) string {
	return fmt.Sprintf("%s, Floor %d, Room %d", room.BuildingName, room.FloorNumber, room.RoomNumber)
}
