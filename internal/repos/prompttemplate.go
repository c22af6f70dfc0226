package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heavyduty/heavyduty-backend/internal/logger"
	"github.com/heavyduty/heavyduty-backend/internal/types"
)

// PromptTemplateRepo owns the template lifecycle. The readiness pipeline
// only ever calls GetActiveByRole.
type PromptTemplateRepo interface {
	GetActiveByRole(ctx context.Context, tx *gorm.DB, role string) (*types.PromptTemplate, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PromptTemplate, error)
	Create(ctx context.Context, tx *gorm.DB, t *types.PromptTemplate) (*types.PromptTemplate, error)
	Activate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PromptTemplate, error)
	NextVersion(ctx context.Context, tx *gorm.DB, role string) (int, error)
}

type promptTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromptTemplateRepo(db *gorm.DB, baseLog *logger.Logger) PromptTemplateRepo {
	return &promptTemplateRepo{db: db, log: baseLog.With("repo", "PromptTemplateRepo")}
}

// GetActiveByRole returns (nil, nil) when no template is active for the
// role; the pipeline tolerates that and falls back to its defaults.
func (r *promptTemplateRepo) GetActiveByRole(ctx context.Context, tx *gorm.DB, role string) (*types.PromptTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var t types.PromptTemplate
	err := transaction.WithContext(ctx).
		Where("role = ? AND active = ?", role, true).
		Order("version DESC").
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *promptTemplateRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PromptTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var t types.PromptTemplate
	if err := transaction.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *promptTemplateRepo) Create(ctx context.Context, tx *gorm.DB, t *types.PromptTemplate) (*types.PromptTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// Activate marks the given template active and deactivates every other
// version of the same role inside one transaction.
func (r *promptTemplateRepo) Activate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.PromptTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out *types.PromptTemplate
	err := transaction.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		var t types.PromptTemplate
		if err := inner.First(&t, "id = ?", id).Error; err != nil {
			return err
		}
		if err := inner.Model(&types.PromptTemplate{}).
			Where("role = ? AND active = ?", t.Role, true).
			Update("active", false).Error; err != nil {
			return fmt.Errorf("deactivate current template: %w", err)
		}
		if err := inner.Model(&t).Update("active", true).Error; err != nil {
			return err
		}
		t.Active = true
		out = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *promptTemplateRepo) NextVersion(ctx context.Context, tx *gorm.DB, role string) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var max int
	err := transaction.WithContext(ctx).
		Model(&types.PromptTemplate{}).
		Where("role = ?", role).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}
