package seed

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/heavyduty/heavyduty-backend/internal/logger"
	"github.com/heavyduty/heavyduty-backend/internal/repos"
	"github.com/heavyduty/heavyduty-backend/internal/types"
)

type templateSeed struct {
	Role              string `yaml:"role"`
	AuditInstructions string `yaml:"audit_instructions"`
	GlobalContext     string `yaml:"global_context"`
}

type seedFile struct {
	Templates []templateSeed `yaml:"templates"`
}

// LoadDefaultTemplates seeds an active v1 template for every role in the
// seed file that has no active template yet. Existing roles are left alone;
// updates go through the admin endpoints.
func LoadDefaultTemplates(ctx context.Context, log *logger.Logger, repo repos.PromptTemplateRepo, path string) error {
	seedLog := log.With("component", "TemplateSeed")

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template seed file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse template seed file: %w", err)
	}

	for _, s := range f.Templates {
		if s.Role == "" {
			continue
		}
		existing, err := repo.GetActiveByRole(ctx, nil, s.Role)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		version, err := repo.NextVersion(ctx, nil, s.Role)
		if err != nil {
			return err
		}
		if _, err := repo.Create(ctx, nil, &types.PromptTemplate{
			Role:              s.Role,
			Version:           version,
			AuditInstructions: s.AuditInstructions,
			GlobalContext:     s.GlobalContext,
			Active:            true,
		}); err != nil {
			return err
		}
		seedLog.Info("Seeded default prompt template", "role", s.Role, "version", version)
	}
	return nil
}
