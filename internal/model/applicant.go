package model

import "time"

// Applicant represents a student applying for (or holding) a hostel seat.
type Applicant struct {
	ID          int64   `gorm:"primaryKey" json:"id"`
	RollNo      string  `gorm:"uniqueIndex;size:64;not null" json:"rollNo"`
	Name        string  `gorm:"size:256;not null" json:"name"`
	CGPA        float64 `json:"cgpa"`
	Year        int     `json:"year"`
	MeritRank   int     `json:"meritRank"` // meaningful only for first-year applicants
	HomeAddress string  `gorm:"size:512" json:"homeAddress"`
	// Score is the last computed priority score, persisted so reallocation
	// runs rank candidates without recomputing from raw attributes.
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
