package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attendance statuses. An aggregate is created Absent, opens on its first
// punch and closes once a check-out is recorded.
const (
	StatusAbsent = "Absent"
	StatusOpen   = "Open"
	StatusClosed = "Closed"
)

// DailyAttendance is the reconciled per-employee per-calendar-day aggregate.
// Day is the calendar day in the deployment time zone, formatted 2006-01-02.
// EarliestCheckIn only ever moves earlier and LatestCheckOut only ever moves
// later; the reconciliation merge is the single writer.
type DailyAttendance struct {
	ID              uuid.UUID  `gorm:"type:char(36);primaryKey" json:"id"`
	EmployeeID      uuid.UUID  `gorm:"type:char(36);uniqueIndex:idx_employee_day;not null" json:"employeeId"`
	Day             string     `gorm:"size:10;uniqueIndex:idx_employee_day;not null" json:"day"`
	EarliestCheckIn *time.Time `json:"earliestCheckIn,omitempty"`
	LatestCheckOut  *time.Time `json:"latestCheckOut,omitempty"`
	Status          string     `gorm:"size:20;not null;default:Absent" json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (a *DailyAttendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
