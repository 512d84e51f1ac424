// Package directory resolves device-reported employee codes against the
// employee identity directory.
package directory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shehrozeikram/ERP-sub001/internal/models"
)

// ErrUnknownEmployee is returned when no mapping exists for a device code.
var ErrUnknownEmployee = errors.New("unknown employee")

// Resolver maps a device-reported employee code to an internal employee
// identity.
type Resolver interface {
	Resolve(ctx context.Context, code string) (models.Employee, error)
}

type GormDirectory struct {
	DB *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{DB: db}
}

func (d *GormDirectory) Resolve(ctx context.Context, code string) (models.Employee, error) {
	var employee models.Employee
	err := d.DB.WithContext(ctx).First(&employee, "employee_code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Employee{}, fmt.Errorf("%w: %s", ErrUnknownEmployee, code)
		}
		return models.Employee{}, fmt.Errorf("directory lookup failed: %w", err)
	}
	return employee, nil
}
