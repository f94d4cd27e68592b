package scenario

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rpattn/scenariogen/internal/domain"
)

// ErrKindConflict is returned when two change specifications declare
// different change kinds for the same metric.
var ErrKindConflict = errors.New("conflicting change kinds")

// ErrTargetNotPrice is returned when the Target kind is declared for a
// metric other than price.
var ErrTargetNotPrice = errors.New("target kind is only valid for price")

// Expand turns an ordered list of change specifications into the ordered
// cartesian product of concrete scenario parameters.
//
// Filters are union-merged across all specs. Each metric's values are the
// sorted, de-duplicated union of every spec's contribution (singleton or
// range). The product is nested price-outermost, then availability, then
// cost, each ascending. If no spec declares any metric value at all, a
// single all-absent (filter-only) entry is emitted.
func Expand(specs []domain.ChangeSpec) ([]domain.ScenarioParams, error) {
	merged := mergeFilters(specs)

	metrics := []domain.Metric{domain.MetricPrice, domain.MetricAvailability, domain.MetricCost}
	values := make(map[domain.Metric][]float64, len(metrics))
	kinds := make(map[domain.Metric]domain.ChangeKind, len(metrics))

	for _, metric := range metrics {
		vals, kind, err := collectMetric(specs, metric)
		if err != nil {
			return nil, err
		}
		values[metric] = vals
		kinds[metric] = kind
	}

	if len(values[domain.MetricPrice]) == 0 &&
		len(values[domain.MetricAvailability]) == 0 &&
		len(values[domain.MetricCost]) == 0 {
		return []domain.ScenarioParams{{Filters: merged}}, nil
	}

	var params []domain.ScenarioParams
	for _, price := range orAbsent(values[domain.MetricPrice]) {
		for _, avail := range orAbsent(values[domain.MetricAvailability]) {
			for _, cost := range orAbsent(values[domain.MetricCost]) {
				if price == nil && avail == nil && cost == nil {
					continue
				}
				params = append(params, domain.ScenarioParams{
					Filters:      merged.Clone(),
					Price:        metricValue(price, kinds[domain.MetricPrice]),
					Availability: metricValue(avail, kinds[domain.MetricAvailability]),
					Cost:         metricValue(cost, kinds[domain.MetricCost]),
				})
			}
		}
	}
	return params, nil
}

// collectMetric unions one metric's values across all specs and settles
// its change kind. Specs that declare the metric must agree on kind;
// disagreement is a validation error rather than silent first-wins.
func collectMetric(specs []domain.ChangeSpec, metric domain.Metric) ([]float64, domain.ChangeKind, error) {
	kind := domain.ChangeKindAbsolute
	kindSettled := false
	seen := make(map[float64]struct{})

	for _, spec := range specs {
		change := spec.MetricChange(metric)
		if !change.Declared() {
			continue
		}
		declared := change.EffectiveKind()
		if declared == domain.ChangeKindTarget && metric != domain.MetricPrice {
			return nil, "", fmt.Errorf("%s: %w", metric, ErrTargetNotPrice)
		}
		if !kindSettled {
			kind = declared
			kindSettled = true
		} else if declared != kind {
			return nil, "", fmt.Errorf("%s: %w: %s vs %s", metric, ErrKindConflict, kind, declared)
		}
		for _, v := range change.Values() {
			seen[v] = struct{}{}
		}
	}

	values := make([]float64, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Float64s(values)
	return values, kind, nil
}

// mergeFilters unions accepted-value lists per key across all specs, for
// both attribute and column filters, sorted for determinism.
func mergeFilters(specs []domain.ChangeSpec) domain.FilterSet {
	attributes := make(map[string]map[string]struct{})
	columns := make(map[string]map[string]struct{})

	for _, spec := range specs {
		unionInto(attributes, spec.Filters.Attributes)
		unionInto(columns, spec.Filters.Columns)
	}

	return domain.FilterSet{
		Attributes: flatten(attributes),
		Columns:    flatten(columns),
	}
}

func unionInto(dst map[string]map[string]struct{}, src map[string][]string) {
	for key, values := range src {
		if len(values) == 0 {
			continue
		}
		if dst[key] == nil {
			dst[key] = make(map[string]struct{})
		}
		for _, v := range values {
			dst[key][v] = struct{}{}
		}
	}
}

func flatten(src map[string]map[string]struct{}) map[string][]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string][]string, len(src))
	for key, set := range src {
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		out[key] = values
	}
	return out
}

// orAbsent treats a metric with no values as the singleton {absent}.
func orAbsent(values []float64) []*float64 {
	if len(values) == 0 {
		return []*float64{nil}
	}
	out := make([]*float64, len(values))
	for i := range values {
		v := values[i]
		out[i] = &v
	}
	return out
}

func metricValue(v *float64, kind domain.ChangeKind) *domain.MetricValue {
	if v == nil {
		return nil
	}
	return &domain.MetricValue{Value: *v, Kind: kind}
}
