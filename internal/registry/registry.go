// Package registry resolves the set of entities a report run covers.
package registry

import (
	"context"
	"fmt"

	"github.com/trevmt/usagereport/internal/config"
	"github.com/trevmt/usagereport/internal/domain"
	"github.com/trevmt/usagereport/internal/util"
)

// Static is a fixed entity list, typically loaded from configuration.
type Static struct {
	entities []domain.EntityID
}

// NewStatic builds a registry from raw ids, validating and deduplicating
// them. Order of first appearance is preserved.
func NewStatic(ids []string) (*Static, error) {
	seen := make(map[string]bool, len(ids))
	entities := make([]domain.EntityID, 0, len(ids))
	for _, id := range ids {
		if err := util.ValidateEntityID(id); err != nil {
			return nil, fmt.Errorf("invalid entity id: %w", err)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		entities = append(entities, domain.EntityID(id))
	}
	return &Static{entities: entities}, nil
}

// FromConfig builds a registry from the configured entity list.
func FromConfig(cfg *config.Config) (*Static, error) {
	if len(cfg.Entities) == 0 {
		return nil, fmt.Errorf("no entities configured; set them with 'usagereport config set entities <id,...>'")
	}
	return NewStatic(cfg.Entities)
}

func (s *Static) ListMonitoredEntities(_ context.Context) ([]domain.EntityID, error) {
	out := make([]domain.EntityID, len(s.entities))
	copy(out, s.entities)
	return out, nil
}
