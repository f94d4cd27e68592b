package domain

import "math"

// ChangeKind tags how a numeric change value is applied.
type ChangeKind string

const (
	ChangeKindAbsolute   ChangeKind = "Absolute"
	ChangeKindPercentage ChangeKind = "Percentage"
	// ChangeKindTarget declares the value as the new price outright.
	// Valid for the price metric only.
	ChangeKindTarget ChangeKind = "Target"
)

// Metric identifies one of the three transformable quantities.
type Metric string

const (
	MetricPrice        Metric = "price"
	MetricAvailability Metric = "availability"
	MetricCost         Metric = "cost"
)

// Change-type annotation labels written next to transformed columns.
const (
	ChangeTypeTargetPrice     = "TARGET_PRICE"
	ChangeTypeIncreasePercent = "INCREASE_PERCENT"
	ChangeTypeDecreasePercent = "DECREASE_PERCENT"
	ChangeTypeIncreaseAmount  = "INCREASE_AMOUNT"
	ChangeTypeDecreaseAmount  = "DECREASE_AMOUNT"
)

// ChangeTypeLabel derives the annotation label from the recorded change
// value and kind. Target price wins over the sign-based labels.
func ChangeTypeLabel(recorded float64, kind ChangeKind, targetPrice bool) string {
	if targetPrice {
		return ChangeTypeTargetPrice
	}
	if kind == ChangeKindPercentage {
		if recorded >= 0 {
			return ChangeTypeIncreasePercent
		}
		return ChangeTypeDecreasePercent
	}
	if recorded >= 0 {
		return ChangeTypeIncreaseAmount
	}
	return ChangeTypeDecreaseAmount
}

// MetricChange is the user-authored change for one metric: either a single
// value or a from/to/step range, tagged with a kind. A zero MetricChange
// declares nothing.
type MetricChange struct {
	Value *float64   `json:"value,omitempty"`
	From  *float64   `json:"from,omitempty"`
	To    *float64   `json:"to,omitempty"`
	Step  *float64   `json:"step,omitempty"`
	Kind  ChangeKind `json:"kind,omitempty"`
}

// EffectiveKind defaults an unset kind to Absolute.
func (m MetricChange) EffectiveKind() ChangeKind {
	if m.Kind == "" {
		return ChangeKindAbsolute
	}
	return m.Kind
}

// Declared reports whether the change contributes any value at all.
func (m MetricChange) Declared() bool {
	if m.Value != nil && isFinite(*m.Value) {
		return true
	}
	return m.From != nil && m.To != nil
}

// Values enumerates the concrete values this change contributes. A range
// yields from, from+step, ... up to and including to. A missing or zero
// step defaults to 1; a negative step, or a reversed range, yields nothing.
func (m MetricChange) Values() []float64 {
	if m.From != nil && m.To != nil {
		from, to := *m.From, *m.To
		if !isFinite(from) || !isFinite(to) {
			return nil
		}
		step := 1.0
		if m.Step != nil && isFinite(*m.Step) && *m.Step != 0 {
			step = *m.Step
		}
		if step < 0 {
			return nil
		}
		var values []float64
		for v := from; v <= to; v += step {
			values = append(values, v)
		}
		return values
	}
	if m.Value != nil && isFinite(*m.Value) {
		return []float64{*m.Value}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ChangeSpec is one user-authored intent: a filter scope plus per-metric
// changes, possibly range-valued, prior to expansion.
type ChangeSpec struct {
	Filters      FilterSet    `json:"filters"`
	Price        MetricChange `json:"price"`
	Availability MetricChange `json:"availability"`
	Cost         MetricChange `json:"cost"`
}

// MetricChange returns the change declared for the given metric.
func (c ChangeSpec) MetricChange(metric Metric) MetricChange {
	switch metric {
	case MetricPrice:
		return c.Price
	case MetricAvailability:
		return c.Availability
	case MetricCost:
		return c.Cost
	}
	return MetricChange{}
}
