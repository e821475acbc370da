package database_test

import (
	"os"
	"testing"

	"github.com/robgonnella/fleetprobe/internal/config"
	"github.com/robgonnella/fleetprobe/internal/database"
	"github.com/stretchr/testify/assert"
)

type testModel struct {
	ID   int `gorm:"primaryKey"`
	Name string
}

func TestOpen(t *testing.T) {
	testDBFile := "database.db"

	defer func() {
		os.RemoveAll(testDBFile)
	}()

	t.Run("opens sqlite and migrates models", func(st *testing.T) {
		db, err := database.Open(config.DatabaseConfig{
			Driver: config.DriverSqlite,
			File:   testDBFile,
		}, &testModel{})

		assert.NoError(st, err)
		assert.True(st, db.Migrator().HasTable(&testModel{}))
	})

	t.Run("requires sqlite file", func(st *testing.T) {
		_, err := database.Open(config.DatabaseConfig{Driver: config.DriverSqlite})

		assert.Error(st, err)
	})

	t.Run("rejects unknown driver", func(st *testing.T) {
		_, err := database.Open(config.DatabaseConfig{Driver: "oracle"})

		assert.Error(st, err)
	})
}
