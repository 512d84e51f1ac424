package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shehrozeikram/ERP-sub001/internal/models"
)

// GormStore persists aggregates through gorm. Per-key serialization is an
// in-process keyed mutex around the read-modify-write; the unique index on
// (employee_id, day) backs it up at the database level.
type GormStore struct {
	db    *gorm.DB
	locks *keyLocks
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, locks: newKeyLocks()}
}

func lockKey(employeeID uuid.UUID, day string) string {
	return employeeID.String() + "/" + day
}

func (s *GormStore) Get(ctx context.Context, employeeID uuid.UUID, day string) (models.DailyAttendance, error) {
	var aggregate models.DailyAttendance
	err := s.db.WithContext(ctx).
		First(&aggregate, "employee_id = ? AND day = ?", employeeID, day).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DailyAttendance{}, ErrNotFound
		}
		return models.DailyAttendance{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return aggregate, nil
}

func (s *GormStore) Upsert(ctx context.Context, employeeID uuid.UUID, day string, mutate func(*models.DailyAttendance) bool) (models.DailyAttendance, bool, error) {
	key := lockKey(employeeID, day)
	s.locks.lock(key)
	defer s.locks.unlock(key)

	var aggregate models.DailyAttendance
	err := s.db.WithContext(ctx).
		First(&aggregate, "employee_id = ? AND day = ?", employeeID, day).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		aggregate = models.DailyAttendance{
			EmployeeID: employeeID,
			Day:        day,
			Status:     models.StatusAbsent,
		}
	} else if err != nil {
		return models.DailyAttendance{}, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !mutate(&aggregate) {
		return aggregate, false, nil
	}

	if err := s.db.WithContext(ctx).Save(&aggregate).Error; err != nil {
		return models.DailyAttendance{}, false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return aggregate, true, nil
}
