package model

import "time"

// Notification types emitted by the allocation engine.
const (
	NotifySeatApproval   = "seat_approval"
	NotifySeatAllocation = "seat_allocation"
	NotifyWaitingList    = "waiting_list"
	NotifySeatRejection  = "seat_rejection"
	NotifySeatDismissal  = "seat_dismissal"
)

// Notification is a message for one applicant. The engine produces these;
// delivery and read tracking belong to the notification layer.
type Notification struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipientID int64     `gorm:"index;not null" json:"recipientId"`
	Type        string    `gorm:"size:32;not null" json:"type"`
	Message     string    `gorm:"size:512;not null" json:"message"`
	Link        string    `gorm:"size:256" json:"link"`
	Read        bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PushSubscription holds a browser push subscription for an applicant.
type PushSubscription struct {
	Endpoint    string    `gorm:"primaryKey" json:"endpoint"`
	ApplicantID int64     `gorm:"index;not null" json:"applicantId"`
	P256DH      string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth        string    `gorm:"not null" json:"auth"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
}
