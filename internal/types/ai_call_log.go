package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AICallLog is one append-only record of an advisor invocation, successful
// or not. There is no read path in this service.
type AICallLog struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        *uuid.UUID     `gorm:"type:uuid;index" json:"user_id,omitempty"`
	CallType      string         `gorm:"column:call_type;not null" json:"call_type"`
	Model         string         `gorm:"column:model" json:"model"`
	Prompt        string         `gorm:"type:text;column:prompt" json:"prompt"`
	Response      string         `gorm:"type:text;column:response" json:"response"`
	Success       bool           `gorm:"column:success;not null" json:"success"`
	Error         string         `gorm:"type:text;column:error" json:"error"`
	TokensUsed    int            `gorm:"column:tokens_used" json:"tokens_used"`
	LatencyMS     int64          `gorm:"column:latency_ms" json:"latency_ms"`
	PromptVersion string         `gorm:"column:prompt_version" json:"prompt_version"`
	InputData     datatypes.JSON `gorm:"column:input_data" json:"input_data"`
	OutputData    datatypes.JSON `gorm:"column:output_data" json:"output_data"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

func (AICallLog) TableName() string {
	return "ai_call_log"
}

func (l *AICallLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
