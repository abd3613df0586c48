package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"gamestore-ingest/internal/domain"
)

var (
	ErrGameNotFound = errors.New("game not found")
)

// GameRepository defines the store operations for game records.
type GameRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Game, error)
	Create(ctx context.Context, record *domain.GameRecord) (*domain.Game, error)
}

type gameRepository struct {
	client *Client
}

// NewGameRepository creates a new instance of GameRepository
func NewGameRepository(client *Client) GameRepository {
	return &gameRepository{client: client}
}

// FindByName looks a game up by its exact title.
func (r *gameRepository) FindByName(ctx context.Context, name string) (*domain.Game, error) {
	query := url.Values{}
	query.Set("name", name)

	var games []domain.Game
	if err := r.client.getJSON(ctx, "/games", query, &games); err != nil {
		return nil, fmt.Errorf("failed to find game %q: %w", name, err)
	}

	if len(games) == 0 {
		return nil, ErrGameNotFound
	}
	return &games[0], nil
}

// Create persists a new game record and returns the stored game.
func (r *gameRepository) Create(ctx context.Context, record *domain.GameRecord) (*domain.Game, error) {
	var game domain.Game
	if err := r.client.postJSON(ctx, "/games", record, &game); err != nil {
		return nil, fmt.Errorf("failed to create game %q: %w", record.Name, err)
	}
	return &game, nil
}
