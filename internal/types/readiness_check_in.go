package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReadinessCheckIn stores one evaluated check-in so the user can review
// their recent verdicts.
type ReadinessCheckIn struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	SleepHours    float64   `gorm:"column:sleep_hours;not null" json:"sleep_hours"`
	StressLevel   int       `gorm:"column:stress_level;not null" json:"stress_level"`
	CycleDay      *int      `gorm:"column:cycle_day" json:"cycle_day,omitempty"`
	PainLevel     int       `gorm:"column:pain_level;not null" json:"pain_level"`
	PainLocation  string    `gorm:"column:pain_location" json:"pain_location,omitempty"`
	Status        string    `gorm:"column:status;not null" json:"status"`
	UIColor       string    `gorm:"column:ui_color;not null" json:"ui_color"`
	ShortMessage  string    `gorm:"type:text;column:short_message" json:"short_message"`
	Rationale     string    `gorm:"type:text;column:rationale" json:"rationale"`
	Modification  *string   `gorm:"type:text;column:modification" json:"modification"`
	GateTriggered bool      `gorm:"column:gate_triggered;not null" json:"gate_triggered"`
	CreatedAt     time.Time `gorm:"not null;index" json:"created_at"`
}

func (ReadinessCheckIn) TableName() string {
	return "readiness_check_in"
}

func (c *ReadinessCheckIn) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
