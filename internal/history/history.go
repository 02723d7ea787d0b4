// Package history archives finished games to Postgres. The archive is
// optional: a nil *Store is valid and every method on it is a no-op, so the
// server runs fine without a database.
package history

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GameRecord is one finished game. FinalState holds the host-view snapshot
// as JSON so the record is self-contained.
type GameRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RoomID     string    `gorm:"index" json:"room_id"`
	ScriptID   string    `json:"script_id"`
	Result     string    `json:"result"`
	FinalState []byte    `gorm:"type:jsonb" json:"final_state"`
	CreatedAt  time.Time `json:"created_at"`
}

type Store struct {
	db *gorm.DB
}

// Open connects and migrates. An empty dsn returns a nil store.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		return nil, nil
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&GameRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Save archives one finished game.
func (s *Store) Save(roomID, scriptID, result string, finalState any) error {
	if s == nil {
		return nil
	}
	payload, err := json.Marshal(finalState)
	if err != nil {
		return fmt.Errorf("marshal final state: %w", err)
	}
	rec := GameRecord{
		RoomID:     roomID,
		ScriptID:   scriptID,
		Result:     result,
		FinalState: payload,
	}
	return s.db.Create(&rec).Error
}

// Latest returns the most recent records, newest first.
func (s *Store) Latest(limit int) ([]GameRecord, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	var recs []GameRecord
	err := s.db.Order("created_at desc").Limit(limit).Find(&recs).Error
	return recs, err
}
