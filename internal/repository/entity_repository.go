package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"gamestore-ingest/internal/domain"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
)

// EntityRepository is the narrow find/create contract the pipeline consumes
// for the four named reference types. The store has no get-or-create
// primitive; callers are expected to serialize creation per name themselves.
type EntityRepository interface {
	FindByName(ctx context.Context, kind domain.EntityKind, name string) (*domain.Entity, error)
	Create(ctx context.Context, kind domain.EntityKind, name, slug string) (*domain.Entity, error)
}

type entityRepository struct {
	client *Client
}

// NewEntityRepository creates a new instance of EntityRepository
func NewEntityRepository(client *Client) EntityRepository {
	return &entityRepository{client: client}
}

// collectionPath maps an entity kind onto its store collection endpoint.
func collectionPath(kind domain.EntityKind) string {
	if kind == domain.KindCategory {
		return "/categories"
	}
	return "/" + string(kind) + "s"
}

// FindByName looks an entity up by exact name within its kind. The store
// may hold duplicates from earlier runs; the first match wins.
func (r *entityRepository) FindByName(ctx context.Context, kind domain.EntityKind, name string) (*domain.Entity, error) {
	query := url.Values{}
	query.Set("name", name)

	var entities []domain.Entity
	if err := r.client.getJSON(ctx, collectionPath(kind), query, &entities); err != nil {
		return nil, fmt.Errorf("failed to find %s %q: %w", kind, name, err)
	}

	if len(entities) == 0 {
		return nil, ErrEntityNotFound
	}
	return &entities[0], nil
}

// Create inserts a new named entity with its derived slug.
func (r *entityRepository) Create(ctx context.Context, kind domain.EntityKind, name, slug string) (*domain.Entity, error) {
	payload := map[string]string{
		"name": name,
		"slug": slug,
	}

	var entity domain.Entity
	if err := r.client.postJSON(ctx, collectionPath(kind), payload, &entity); err != nil {
		return nil, fmt.Errorf("failed to create %s %q: %w", kind, name, err)
	}
	return &entity, nil
}
