package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is an identity directory entry. EmployeeCode is the identifier the
// biometric device reports, which is not necessarily the internal ID format.
type Employee struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	EmployeeCode string    `gorm:"uniqueIndex;size:64;not null" json:"employeeCode"`
	FirstName    string    `gorm:"size:120;not null" json:"firstName"`
	LastName     string    `gorm:"size:120;not null" json:"lastName"`
	Department   string    `gorm:"size:120" json:"department"`
	Position     string    `gorm:"size:120" json:"position"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}
