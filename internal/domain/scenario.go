package domain

import (
	"time"

	"github.com/google/uuid"
)

// MetricValue is one fully-resolved change for a metric.
type MetricValue struct {
	Value float64    `json:"value"`
	Kind  ChangeKind `json:"kind"`
}

// ScenarioParams is one point of the cartesian expansion of a change set:
// a merged filter scope and at most one resolved value per metric. It is
// consumed immediately by the row transformer and never persisted.
type ScenarioParams struct {
	Filters      FilterSet
	Price        *MetricValue
	Availability *MetricValue
	Cost         *MetricValue
}

// IsNoOp reports whether the parameters carry no metric change at all
// (a pure filter-only scenario).
func (p ScenarioParams) IsNoOp() bool {
	return p.Price == nil && p.Availability == nil && p.Cost == nil
}

// ScenarioMetadata summarizes what a scenario changed.
type ScenarioMetadata struct {
	ChangeParts  []string `json:"changeParts"`
	ModifiedRows int      `json:"modifiedRows"`
	TotalRows    int      `json:"totalRows"`
}

// Scenario is one materialized derived table. It is owned by the caller
// after creation and never mutated.
type Scenario struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Columns   []string         `json:"columns"`
	Rows      []Row            `json:"rows"`
	Metadata  ScenarioMetadata `json:"metadata"`
	CreatedAt time.Time        `json:"createdAt"`
}
