package model

import "time"

// Application status values.
const (
	ApplicationPending  = "Pending"
	ApplicationApproved = "Approved"
	ApplicationRejected = "Rejected"
)

// Application is a seat application submitted by the intake collaborator.
// The Result* fields carry values extracted from the submitted result card;
// they are free text and may be unparseable, in which case scoring falls back
// to the applicant record.
type Application struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	ApplicantID int64  `gorm:"index;not null" json:"applicantId"`
	Status      string `gorm:"size:16;not null;default:Pending" json:"status"`
	ResultCGPA  string `gorm:"size:16" json:"resultCgpa"`
	ResultYear  string `gorm:"size:16" json:"resultYear"`
	// MeritRank extracted for first-year applicants, free text as well.
	ResultMeritRank string    `gorm:"size:16" json:"resultMeritRank"`
	SubmittedAt     time.Time `gorm:"not null" json:"submittedAt"`
}
