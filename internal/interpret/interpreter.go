package interpret

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rpattn/scenariogen/internal/domain"
)

// ErrNotInterpretable is returned when no change can be derived from the
// prompt. Callers should ask the user to rephrase rather than treat this
// as an infrastructure failure.
var ErrNotInterpretable = errors.New("prompt could not be interpreted")

// DatasetContext describes the loaded dataset so the interpreter can map
// prompt words onto real drivers, columns and values.
type DatasetContext struct {
	Drivers      map[string][]string
	Columns      []string
	ColumnValues map[string][]string
}

// Interpreter turns a natural language request into change specifications
// ready for expansion.
type Interpreter interface {
	Interpret(ctx context.Context, prompt string, dataset DatasetContext) ([]domain.ChangeSpec, error)
}

// Number decodes a JSON number that language models sometimes quote as a
// string. The zero value means absent.
type Number struct {
	Value float64
	Set   bool
}

func (n *Number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		return nil
	}
	raw = strings.Trim(raw, `"`)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", raw, err)
	}
	n.Value = value
	n.Set = true
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

func (n Number) ptr() *float64 {
	if !n.Set {
		return nil
	}
	v := n.Value
	return &v
}

// ChangeRequest is the wire shape of one change, as produced by language
// models and accepted by the API. Per-metric fields mirror each other:
// single value or from/to/step range, plus a kind.
type ChangeRequest struct {
	Filters    map[string][]string `json:"filters,omitempty"`
	CSVFilters map[string][]string `json:"csvFilters,omitempty"`

	PriceChange      Number `json:"priceChange,omitempty"`
	PriceChangeType  string `json:"priceChangeType,omitempty"`
	PriceChangeRange bool   `json:"priceChangeRange,omitempty"`
	PriceChangeFrom  Number `json:"priceChangeFrom,omitempty"`
	PriceChangeTo    Number `json:"priceChangeTo,omitempty"`
	PriceChangeStep  Number `json:"priceChangeStep,omitempty"`

	AvailabilityChange      Number `json:"availabilityChange,omitempty"`
	AvailabilityChangeType  string `json:"availabilityChangeType,omitempty"`
	AvailabilityChangeRange bool   `json:"availabilityChangeRange,omitempty"`
	AvailabilityChangeFrom  Number `json:"availabilityChangeFrom,omitempty"`
	AvailabilityChangeTo    Number `json:"availabilityChangeTo,omitempty"`
	AvailabilityChangeStep  Number `json:"availabilityChangeStep,omitempty"`

	CostChange      Number `json:"costChange,omitempty"`
	CostChangeType  string `json:"costChangeType,omitempty"`
	CostChangeRange bool   `json:"costChangeRange,omitempty"`
	CostChangeFrom  Number `json:"costChangeFrom,omitempty"`
	CostChangeTo    Number `json:"costChangeTo,omitempty"`
	CostChangeStep  Number `json:"costChangeStep,omitempty"`
}

// Spec converts the wire shape into a domain change specification.
func (r ChangeRequest) Spec() domain.ChangeSpec {
	return domain.ChangeSpec{
		Filters: domain.FilterSet{
			Attributes: cloneFilterMap(r.Filters),
			Columns:    cloneFilterMap(r.CSVFilters),
		},
		Price:        metricChange(r.PriceChange, r.PriceChangeType, r.PriceChangeRange, r.PriceChangeFrom, r.PriceChangeTo, r.PriceChangeStep),
		Availability: metricChange(r.AvailabilityChange, r.AvailabilityChangeType, r.AvailabilityChangeRange, r.AvailabilityChangeFrom, r.AvailabilityChangeTo, r.AvailabilityChangeStep),
		Cost:         metricChange(r.CostChange, r.CostChangeType, r.CostChangeRange, r.CostChangeFrom, r.CostChangeTo, r.CostChangeStep),
	}
}

// Specs converts a batch of change requests.
func Specs(requests []ChangeRequest) []domain.ChangeSpec {
	specs := make([]domain.ChangeSpec, 0, len(requests))
	for _, req := range requests {
		specs = append(specs, req.Spec())
	}
	return specs
}

func metricChange(value Number, kind string, isRange bool, from, to, step Number) domain.MetricChange {
	change := domain.MetricChange{Kind: parseKind(kind)}
	if isRange {
		change.From = from.ptr()
		change.To = to.ptr()
		change.Step = step.ptr()
		return change
	}
	change.Value = value.ptr()
	return change
}

func parseKind(raw string) domain.ChangeKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "percentage", "percent":
		return domain.ChangeKindPercentage
	case "target":
		return domain.ChangeKindTarget
	case "absolute":
		return domain.ChangeKindAbsolute
	default:
		return ""
	}
}

func cloneFilterMap(src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string][]string, len(src))
	for key, values := range src {
		if len(values) == 0 {
			continue
		}
		out[key] = append([]string(nil), values...)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
