package state

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Entity struct {
	ID uint `gorm:"primaryKey"`
}

// An announced match result.
type MatchResult struct {
	Entity

	Level   string `gorm:"size:32;not null"`
	Mode    string `gorm:"size:16;not null"`
	Outcome string `gorm:"size:16;not null"`
	// Winner is the winning participant or team, empty without one
	Winner  string `gorm:"size:32"`
	Scores  string `gorm:"size:64"`
	Players uint
	Created time.Time `gorm:"index"`
}

// A participant's rating in one mode.
type Rating struct {
	Entity

	Participant string `gorm:"size:32;not null;uniqueIndex:idx_participant_mode"`
	Mode        string `gorm:"size:16;not null;uniqueIndex:idx_participant_mode"`
	Value       int
	Wins        uint
	Draws       uint
	Losses      uint
}

func InitDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(&MatchResult{}, &Rating{})
	if err != nil {
		return nil, err
	}

	return db, nil
}
