package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/rpattn/scenariogen/internal/domain"
)

// ErrScenarioNotFound indicates the requested scenario does not exist.
var ErrScenarioNotFound = errors.New("scenario not found")

// ScenarioRepository persists finished scenarios. Persistence is an
// archive of results, never the engine's working state: the engine keeps
// running if a repository call fails.
type ScenarioRepository interface {
	// Save stores one scenario, replacing any previous record with the
	// same id.
	Save(ctx context.Context, scenario domain.Scenario) error
	// List returns stored scenarios, newest first.
	List(ctx context.Context) ([]domain.Scenario, error)
	// Get returns one stored scenario by id.
	Get(ctx context.Context, id uuid.UUID) (domain.Scenario, error)
	// Delete removes one stored scenario by id.
	Delete(ctx context.Context, id uuid.UUID) error
}
