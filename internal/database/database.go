package database

import (
	"errors"
	"fmt"

	"github.com/robgonnella/fleetprobe/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Open creates and returns a database connection for the configured driver
// and migrates the provided models
func Open(conf config.DatabaseConfig, models ...interface{}) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch conf.Driver {
	case config.DriverSqlite, "":
		if conf.File == "" {
			return nil, errors.New("failed to find database file path config")
		}

		dialector = sqlite.Open(conf.File)
	case config.DriverMysql:
		dialector = mysql.Open(conf.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", conf.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})

	if err != nil {
		return nil, err
	}

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			return nil, err
		}
	}

	return db, nil
}
