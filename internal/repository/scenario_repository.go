package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rpattn/scenariogen/internal/domain"
)

// scenarioRepository stores scenarios in Postgres, rows and metadata as
// JSONB documents keyed by scenario id.
type scenarioRepository struct {
	pool *pgxpool.Pool
}

// NewScenarioRepository creates a Postgres-backed scenario repository.
func NewScenarioRepository(pool *pgxpool.Pool) ScenarioRepository {
	return &scenarioRepository{pool: pool}
}

type scenarioDocument struct {
	Columns []string     `json:"columns"`
	Rows    []domain.Row `json:"rows"`
}

func (r *scenarioRepository) Save(ctx context.Context, scenario domain.Scenario) error {
	if scenario.ID == uuid.Nil {
		scenario.ID = uuid.New()
	}

	data, err := json.Marshal(scenarioDocument{Columns: scenario.Columns, Rows: scenario.Rows})
	if err != nil {
		return fmt.Errorf("failed to marshal scenario data: %w", err)
	}
	metadata, err := json.Marshal(scenario.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO scenarios (id, name, data, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    data = EXCLUDED.data,
		    metadata = EXCLUDED.metadata`,
		scenario.ID, scenario.Name, data, metadata, scenario.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}
	return nil
}

func (r *scenarioRepository) List(ctx context.Context) ([]domain.Scenario, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, data, metadata, created_at
		FROM scenarios
		ORDER BY created_at DESC, name DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []domain.Scenario
	for rows.Next() {
		scenario, err := scanScenario(rows)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, scenario)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scenarios: %w", err)
	}
	return scenarios, nil
}

func (r *scenarioRepository) Get(ctx context.Context, id uuid.UUID) (domain.Scenario, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, data, metadata, created_at
		FROM scenarios
		WHERE id = $1`, id)

	scenario, err := scanScenario(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Scenario{}, ErrScenarioNotFound
		}
		return domain.Scenario{}, err
	}
	return scenario, nil
}

func (r *scenarioRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrScenarioNotFound
	}
	return nil
}

func scanScenario(row pgx.Row) (domain.Scenario, error) {
	var scenario domain.Scenario
	var data, metadata []byte

	if err := row.Scan(&scenario.ID, &scenario.Name, &data, &metadata, &scenario.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Scenario{}, err
		}
		return domain.Scenario{}, fmt.Errorf("failed to scan scenario: %w", err)
	}

	var document scenarioDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return domain.Scenario{}, fmt.Errorf("failed to unmarshal scenario data: %w", err)
	}
	scenario.Columns = document.Columns
	scenario.Rows = document.Rows

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &scenario.Metadata); err != nil {
			return domain.Scenario{}, fmt.Errorf("failed to unmarshal scenario metadata: %w", err)
		}
	}
	return scenario, nil
}
