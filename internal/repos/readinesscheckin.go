package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heavyduty/heavyduty-backend/internal/logger"
	"github.com/heavyduty/heavyduty-backend/internal/types"
)

type ReadinessCheckInRepo interface {
	Create(ctx context.Context, tx *gorm.DB, c *types.ReadinessCheckIn) (*types.ReadinessCheckIn, error)
	ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ReadinessCheckIn, error)
}

type readinessCheckInRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReadinessCheckInRepo(db *gorm.DB, baseLog *logger.Logger) ReadinessCheckInRepo {
	return &readinessCheckInRepo{db: db, log: baseLog.With("repo", "ReadinessCheckInRepo")}
}

func (r *readinessCheckInRepo) Create(ctx context.Context, tx *gorm.DB, c *types.ReadinessCheckIn) (*types.ReadinessCheckIn, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *readinessCheckInRepo) ListRecentByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ReadinessCheckIn, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 30
	}
	var out []*types.ReadinessCheckIn
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
