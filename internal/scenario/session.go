package scenario

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rpattn/scenariogen/internal/domain"
)

// Session owns the state of one loaded dataset: the scenario ordinal
// counter and the list of scenarios created so far. The ordinal is a
// property of creation order and keeps counting across batches.
//
// The session performs no I/O; persisting finished scenarios is the
// caller's business and must never block or fail creation.
type Session struct {
	transformer *Transformer

	mu        sync.Mutex
	scenarios []domain.Scenario
	ordinal   int

	now func() time.Time
}

// Option customizes a session.
type Option func(*Session)

// WithClock overrides the time source used for scenario names and
// creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession creates a session transforming rows through the given
// transformer.
func NewSession(transformer *Transformer, opts ...Option) *Session {
	s := &Session{
		transformer: transformer,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateScenarios expands the change specifications and materializes one
// scenario per concrete parameter combination. The returned scenarios are
// also retained on the session, newest last.
func (s *Session) CreateScenarios(table []domain.Row, specs []domain.ChangeSpec) ([]domain.Scenario, error) {
	params, err := Expand(specs)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]domain.Scenario, 0, len(params))
	for _, p := range params {
		result := s.transformer.Apply(table, p)
		s.ordinal++

		parts := changeParts(p)
		createdAt := s.now().UTC()
		sc := domain.Scenario{
			ID:      uuid.New(),
			Name:    scenarioName(s.ordinal, parts, createdAt),
			Columns: result.Columns,
			Rows:    result.Rows,
			Metadata: domain.ScenarioMetadata{
				ChangeParts:  parts,
				ModifiedRows: result.ModifiedRows,
				TotalRows:    len(result.Rows),
			},
			CreatedAt: createdAt,
		}
		s.scenarios = append(s.scenarios, sc)
		created = append(created, sc)
	}
	return created, nil
}

// Scenarios returns all scenarios created in this session, oldest first.
func (s *Session) Scenarios() []domain.Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Scenario, len(s.scenarios))
	copy(out, s.scenarios)
	return out
}

// Scenario looks up one scenario by id.
func (s *Session) Scenario(id uuid.UUID) (domain.Scenario, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sc := range s.scenarios {
		if sc.ID == id {
			return sc, true
		}
	}
	return domain.Scenario{}, false
}

// changeParts renders the per-metric name tags, e.g. P5%, A-10, C0.5.
// Absent metrics contribute no tag.
func changeParts(p domain.ScenarioParams) []string {
	parts := []string{}
	if p.Price != nil {
		parts = append(parts, metricTag("P", *p.Price))
	}
	if p.Availability != nil {
		parts = append(parts, metricTag("A", *p.Availability))
	}
	if p.Cost != nil {
		parts = append(parts, metricTag("C", *p.Cost))
	}
	return parts
}

func metricTag(prefix string, change domain.MetricValue) string {
	tag := prefix + strconv.FormatFloat(change.Value, 'f', -1, 64)
	if change.Kind == domain.ChangeKindPercentage {
		tag += "%"
	}
	return tag
}

func scenarioName(ordinal int, parts []string, createdAt time.Time) string {
	return fmt.Sprintf("Scenario_%d_%s_%s",
		ordinal, strings.Join(parts, "_"), createdAt.Format("2006-01-02"))
}
