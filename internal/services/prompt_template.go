package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	redisclient "github.com/heavyduty/heavyduty-backend/internal/clients/redis"
	"github.com/heavyduty/heavyduty-backend/internal/logger"
	"github.com/heavyduty/heavyduty-backend/internal/repos"
	"github.com/heavyduty/heavyduty-backend/internal/types"
)

// PromptTemplateService is the template store surface. The pipeline only
// calls GetActive; Create/Activate back the admin endpoints.
type PromptTemplateService interface {
	GetActive(ctx context.Context, role string) (*types.PromptTemplate, error)
	Create(ctx context.Context, role, auditInstructions, globalContext string, activate bool) (*types.PromptTemplate, error)
	Activate(ctx context.Context, id uuid.UUID) (*types.PromptTemplate, error)
}

type promptTemplateService struct {
	db    *gorm.DB
	log   *logger.Logger
	repo  repos.PromptTemplateRepo
	cache *redisclient.TemplateCache
	group singleflight.Group
}

// cache may be nil; the service then reads straight from the repo.
func NewPromptTemplateService(db *gorm.DB, baseLog *logger.Logger, repo repos.PromptTemplateRepo, cache *redisclient.TemplateCache) PromptTemplateService {
	return &promptTemplateService{
		db:    db,
		log:   baseLog.With("service", "PromptTemplateService"),
		repo:  repo,
		cache: cache,
	}
}

// GetActive returns (nil, nil) when no template is active for the role.
// Cache failures degrade to the repo read; concurrent misses for the same
// role are collapsed into one query.
func (s *promptTemplateService) GetActive(ctx context.Context, role string) (*types.PromptTemplate, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, fmt.Errorf("role required")
	}

	if t, err := s.cache.Get(ctx, role); err != nil {
		s.log.Warn("Template cache read failed, falling back to store", "role", role, "error", err)
	} else if t != nil {
		return t, nil
	}

	v, err, _ := s.group.Do(role, func() (interface{}, error) {
		t, err := s.repo.GetActiveByRole(ctx, nil, role)
		if err != nil {
			return nil, err
		}
		if t != nil {
			if err := s.cache.Set(ctx, role, t); err != nil {
				s.log.Warn("Template cache write failed", "role", role, "error", err)
			}
		}
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	t, _ := v.(*types.PromptTemplate)
	return t, nil
}

func (s *promptTemplateService) Create(ctx context.Context, role, auditInstructions, globalContext string, activate bool) (*types.PromptTemplate, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, fmt.Errorf("role required")
	}
	version, err := s.repo.NextVersion(ctx, nil, role)
	if err != nil {
		return nil, err
	}
	t, err := s.repo.Create(ctx, nil, &types.PromptTemplate{
		Role:              role,
		Version:           version,
		AuditInstructions: auditInstructions,
		GlobalContext:     globalContext,
	})
	if err != nil {
		return nil, err
	}
	if activate {
		return s.Activate(ctx, t.ID)
	}
	return t, nil
}

func (s *promptTemplateService) Activate(ctx context.Context, id uuid.UUID) (*types.PromptTemplate, error) {
	t, err := s.repo.Activate(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, t.Role); err != nil {
		s.log.Warn("Template cache invalidation failed", "role", t.Role, "error", err)
	}
	return t, nil
}
