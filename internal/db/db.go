package db

import (
	"github.com/shehrozeikram/ERP-sub001/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Open(dsn string) (*gorm.DB, error) {
	database, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := database.AutoMigrate(
		&models.Employee{},
		&models.DailyAttendance{},
	); err != nil {
		return nil, err
	}

	return database, nil
}
