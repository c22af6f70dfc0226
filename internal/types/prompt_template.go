package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromptTemplate is one versioned pair of advisor instruction strings keyed
// by role. At most one version per role is active; the pipeline only ever
// reads the active one.
type PromptTemplate struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Role              string    `gorm:"not null;index;uniqueIndex:idx_prompt_template_role_version,priority:1;column:role" json:"role"`
	Version           int       `gorm:"not null;uniqueIndex:idx_prompt_template_role_version,priority:2;column:version" json:"version"`
	AuditInstructions string    `gorm:"type:text;column:audit_instructions" json:"audit_instructions"`
	GlobalContext     string    `gorm:"type:text;column:global_context" json:"global_context"`
	Active            bool      `gorm:"not null;index;column:active" json:"active"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}

func (PromptTemplate) TableName() string {
	return "prompt_template"
}

func (t *PromptTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
