package directory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shehrozeikram/ERP-sub001/internal/models"
)

func newTestDirectory(t *testing.T) *GormDirectory {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "directory.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(&models.Employee{}))
	return NewGormDirectory(database)
}

func TestResolve_KnownCode(t *testing.T) {
	dir := newTestDirectory(t)
	require.NoError(t, dir.DB.Create(&models.Employee{
		EmployeeCode: "06387",
		FirstName:    "Ayesha",
		LastName:     "Khan",
	}).Error)

	employee, err := dir.Resolve(context.Background(), "06387")
	require.NoError(t, err)
	assert.Equal(t, "Ayesha Khan", employee.FullName())
	assert.NotEmpty(t, employee.ID)
}

func TestResolve_UnknownCode(t *testing.T) {
	dir := newTestDirectory(t)

	_, err := dir.Resolve(context.Background(), "99999")
	assert.ErrorIs(t, err, ErrUnknownEmployee)
}
