package client

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// InitMysqlClient opens the engine database. Schema is owned by the goose
// migrations under migrations/; nothing here creates tables at runtime.
// TranslateError turns driver duplicate-key errors into gorm.ErrDuplicatedKey,
// which the upsert paths treat as an expected outcome.
func InitMysqlClient(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pool (important for webhook bursts)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
