package model

import "time"

// Allocation is a time-bounded assignment of one applicant to one room.
// At most one allocation per applicant is active at any time; vacated seats
// are deactivated, never deleted, and a later promotion creates a new row.
type Allocation struct {
	ID          int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ApplicantID int64 `gorm:"index;not null" json:"applicantId"`
	RoomID      int64 `gorm:"index;not null" json:"roomId"`
	// RunID references the reallocation run that produced this row; nil for
	// allocations created by an approval, auto-fill or manual vacancy fill.
	RunID      *string   `gorm:"size:36;index" json:"runId,omitempty"`
	Score      float64   `json:"score"`
	ExpiryDate time.Time `gorm:"not null" json:"expiryDate"`
	Active     bool      `gorm:"index;not null" json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AllocationRun records one bulk reallocation for audit. Every allocation the
// run produced carries its ID.
type AllocationRun struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	StartedAt  time.Time `gorm:"not null" json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Assigned   int       `json:"assigned"`
	Waitlisted int       `json:"waitlisted"`
}

// WaitingEntry queues an applicant without a seat, ranked by score with
// FIFO tie-breaking on AddedOn. An applicant is never simultaneously in the
// waiting list and holding an active allocation.
type WaitingEntry struct {
	ApplicantID int64     `gorm:"primaryKey" json:"applicantId"`
	Score       float64   `gorm:"not null" json:"score"`
	AddedOn     time.Time `gorm:"not null" json:"addedOn"`
}
