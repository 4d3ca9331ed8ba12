package model

import "time"

// Room represents a hostel room with a bounded number of seats.
//
// CurrentOccupancy is only ever changed through guarded updates: increments
// are conditioned on occupancy being below capacity so two concurrent
// allocations can never oversubscribe a room.
type Room struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	BuildingName     string    `gorm:"size:128;index;not null" json:"buildingName"`
	FloorNumber      int       `gorm:"not null" json:"floorNumber"`
	RoomNumber       int       `gorm:"not null" json:"roomNumber"`
	Capacity         int       `gorm:"not null" json:"capacity"`
	CurrentOccupancy int       `gorm:"not null;default:0" json:"currentOccupancy"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
