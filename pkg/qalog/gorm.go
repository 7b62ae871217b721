package qalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QALog is the database row of an Entry.
type QALog struct {
	ID               string `gorm:"type:uuid;primaryKey"`
	CreatedAt        time.Time
	RequesterID      int64  `gorm:"index"`
	RequesterName    string `gorm:"size:255"`
	RoomID           int64  `gorm:"index"`
	Question         string `gorm:"type:text"`
	Answer           string `gorm:"type:text"`
	ProcessingMs     int64
	PromptTokens     int
	CitedIDs         datatypes.JSON
	InvalidCitations datatypes.JSON
	Mode             string `gorm:"size:32"`
	Error            string `gorm:"type:text"`
}

func (QALog) TableName() string {
	return "qa_logs"
}

type GormSink struct {
	db *gorm.DB
}

// NewGormSink migrates the qa_logs table.
func NewGormSink(db *gorm.DB) (*GormSink, error) {
	if err := db.AutoMigrate(&QALog{}); err != nil {
		return nil, fmt.Errorf("migrate qa_logs: %w", err)
	}
	return &GormSink{db: db}, nil
}

func (s *GormSink) Name() string { return "postgres" }

func (s *GormSink) Write(ctx context.Context, e Entry) error {
	row, err := toModel(e)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(row).Error
}

func toModel(e Entry) (*QALog, error) {
	cited, err := json.Marshal(nonNil(e.CitedIDs))
	if err != nil {
		return nil, err
	}
	invalid, err := json.Marshal(nonNil(e.InvalidCitations))
	if err != nil {
		return nil, err
	}

	return &QALog{
		ID:               e.ID,
		CreatedAt:        e.Timestamp,
		RequesterID:      e.RequesterID,
		RequesterName:    e.RequesterName,
		RoomID:           e.RoomID,
		Question:         e.Question,
		Answer:           e.Answer,
		ProcessingMs:     e.ProcessingTime.Milliseconds(),
		PromptTokens:     e.PromptTokens,
		CitedIDs:         datatypes.JSON(cited),
		InvalidCitations: datatypes.JSON(invalid),
		Mode:             e.Mode,
		Error:            e.Error,
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
