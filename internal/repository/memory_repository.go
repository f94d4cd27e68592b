package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rpattn/scenariogen/internal/domain"
)

// memoryScenarioRepository is the fallback used when no database is
// configured. Contents live for the process lifetime only.
type memoryScenarioRepository struct {
	mu        sync.RWMutex
	scenarios map[uuid.UUID]domain.Scenario
}

// NewMemoryScenarioRepository creates an in-memory scenario repository.
func NewMemoryScenarioRepository() ScenarioRepository {
	return &memoryScenarioRepository{
		scenarios: make(map[uuid.UUID]domain.Scenario),
	}
}

func (r *memoryScenarioRepository) Save(_ context.Context, scenario domain.Scenario) error {
	if scenario.ID == uuid.Nil {
		scenario.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenarios[scenario.ID] = scenario
	return nil
}

func (r *memoryScenarioRepository) List(_ context.Context) ([]domain.Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scenarios := make([]domain.Scenario, 0, len(r.scenarios))
	for _, scenario := range r.scenarios {
		scenarios = append(scenarios, scenario)
	}
	sort.Slice(scenarios, func(i, j int) bool {
		if !scenarios[i].CreatedAt.Equal(scenarios[j].CreatedAt) {
			return scenarios[i].CreatedAt.After(scenarios[j].CreatedAt)
		}
		return scenarios[i].Name > scenarios[j].Name
	})
	return scenarios, nil
}

func (r *memoryScenarioRepository) Get(_ context.Context, id uuid.UUID) (domain.Scenario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	scenario, ok := r.scenarios[id]
	if !ok {
		return domain.Scenario{}, ErrScenarioNotFound
	}
	return scenario, nil
}

func (r *memoryScenarioRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.scenarios[id]; !ok {
		return ErrScenarioNotFound
	}
	delete(r.scenarios, id)
	return nil
}
