package service

import (
	"context"
	"errors"
	"strings"

	"gamestore-ingest/internal/domain"
	"gamestore-ingest/internal/repository"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// EntityResolver finds or creates named reference entities. Store failures
// are logged and yield nil ("unresolved"); callers must treat absence as a
// missing relation, not a hard failure.
type EntityResolver interface {
	Resolve(ctx context.Context, kind domain.EntityKind, name string) *domain.Entity
}

type entityResolver struct {
	entities repository.EntityRepository
	group    singleflight.Group
	logger   *zap.Logger
}

// NewEntityResolver creates a new instance of EntityResolver
func NewEntityResolver(entities repository.EntityRepository, logger *zap.Logger) EntityResolver {
	return &entityResolver{
		entities: entities,
		logger:   logger,
	}
}

// Resolve returns the store entity for (kind, name), creating it when
// absent. Concurrent calls for the same pair share one in-flight
// resolution, so at most one create is issued per unique pair per batch.
func (r *entityResolver) Resolve(ctx context.Context, kind domain.EntityKind, name string) *domain.Entity {
	if strings.TrimSpace(name) == "" {
		return nil
	}

	key := string(kind) + "/" + name
	result, _, _ := r.group.Do(key, func() (interface{}, error) {
		return r.findOrCreate(ctx, kind, name), nil
	})

	entity, ok := result.(*domain.Entity)
	if !ok {
		return nil
	}
	return entity
}

func (r *entityResolver) findOrCreate(ctx context.Context, kind domain.EntityKind, name string) *domain.Entity {
	entity, err := r.entities.FindByName(ctx, kind, name)
	if err == nil {
		return entity
	}
	if !errors.Is(err, repository.ErrEntityNotFound) {
		r.logger.Error("entity lookup failed",
			zap.String("kind", string(kind)),
			zap.String("name", name),
			zap.Error(err),
		)
		return nil
	}

	created, err := r.entities.Create(ctx, kind, name, slug.Make(name))
	if err != nil {
		r.logger.Error("entity create failed",
			zap.String("kind", string(kind)),
			zap.String("name", name),
			zap.Error(err),
		)
		return nil
	}

	return created
}
