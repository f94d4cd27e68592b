package scenario

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rpattn/scenariogen/internal/domain"
)

func f(v float64) *float64 { return &v }

func TestExpandCartesianOrdering(t *testing.T) {
	specs := []domain.ChangeSpec{
		{
			Price:        domain.MetricChange{From: f(5), To: f(15), Step: f(5), Kind: domain.ChangeKindPercentage},
			Availability: domain.MetricChange{Value: f(-10)},
		},
	}

	params, err := Expand(specs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 3 {
		t.Fatalf("expected 3 combinations, got %d", len(params))
	}

	wantPrices := []float64{5, 10, 15}
	for i, p := range params {
		if p.Price == nil || p.Price.Value != wantPrices[i] {
			t.Errorf("combination %d: expected price %v, got %+v", i, wantPrices[i], p.Price)
		}
		if p.Price.Kind != domain.ChangeKindPercentage {
			t.Errorf("combination %d: expected percentage kind, got %s", i, p.Price.Kind)
		}
		if p.Availability == nil || p.Availability.Value != -10 {
			t.Errorf("combination %d: expected availability -10, got %+v", i, p.Availability)
		}
		if p.Cost != nil {
			t.Errorf("combination %d: expected absent cost, got %+v", i, p.Cost)
		}
	}
}

func TestExpandUnionsValuesAcrossSpecs(t *testing.T) {
	specs := []domain.ChangeSpec{
		{Price: domain.MetricChange{Value: f(10), Kind: domain.ChangeKindPercentage}},
		{Price: domain.MetricChange{Value: f(5), Kind: domain.ChangeKindPercentage}},
		{Price: domain.MetricChange{Value: f(10), Kind: domain.ChangeKindPercentage}},
	}

	params, err := Expand(specs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 2 {
		t.Fatalf("expected deduplicated union of 2 values, got %d", len(params))
	}
	if params[0].Price.Value != 5 || params[1].Price.Value != 10 {
		t.Errorf("expected ascending values [5 10], got [%v %v]",
			params[0].Price.Value, params[1].Price.Value)
	}
}

func TestExpandAllAbsentCollapses(t *testing.T) {
	specs := []domain.ChangeSpec{
		{Filters: domain.FilterSet{Columns: map[string][]string{"Region": {"North"}}}},
	}

	params, err := Expand(specs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 1 {
		t.Fatalf("expected single filter-only entry, got %d", len(params))
	}
	if !params[0].IsNoOp() {
		t.Errorf("expected no-op params, got %+v", params[0])
	}
	if got := params[0].Filters.Columns["Region"]; !reflect.DeepEqual(got, []string{"North"}) {
		t.Errorf("expected region filter preserved, got %v", got)
	}
}

func TestExpandMergesFilters(t *testing.T) {
	specs := []domain.ChangeSpec{
		{
			Filters: domain.FilterSet{Attributes: map[string][]string{"brand": {"brand_b"}}},
			Price:   domain.MetricChange{Value: f(1)},
		},
		{
			Filters: domain.FilterSet{
				Attributes: map[string][]string{"brand": {"brand_a"}},
				Columns:    map[string][]string{"Retailer": {"Retailer 1"}},
			},
		},
	}

	params, err := Expand(specs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 1 {
		t.Fatalf("expected 1 combination, got %d", len(params))
	}
	if got := params[0].Filters.Attributes["brand"]; !reflect.DeepEqual(got, []string{"brand_a", "brand_b"}) {
		t.Errorf("expected sorted union of brands, got %v", got)
	}
	if got := params[0].Filters.Columns["Retailer"]; !reflect.DeepEqual(got, []string{"Retailer 1"}) {
		t.Errorf("expected column filter carried through, got %v", got)
	}
}

func TestExpandKindConflict(t *testing.T) {
	specs := []domain.ChangeSpec{
		{Price: domain.MetricChange{Value: f(5), Kind: domain.ChangeKindPercentage}},
		{Price: domain.MetricChange{Value: f(2), Kind: domain.ChangeKindAbsolute}},
	}

	if _, err := Expand(specs); !errors.Is(err, ErrKindConflict) {
		t.Fatalf("expected kind conflict error, got %v", err)
	}
}

func TestExpandTargetOnlyForPrice(t *testing.T) {
	specs := []domain.ChangeSpec{
		{Availability: domain.MetricChange{Value: f(50), Kind: domain.ChangeKindTarget}},
	}

	if _, err := Expand(specs); !errors.Is(err, ErrTargetNotPrice) {
		t.Fatalf("expected target-not-price error, got %v", err)
	}
}

func TestExpandRangeEdgeCases(t *testing.T) {
	// Reversed range contributes nothing, so the metric stays absent.
	reversed := []domain.ChangeSpec{
		{Price: domain.MetricChange{From: f(10), To: f(5)}},
	}
	params, err := Expand(reversed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 1 || !params[0].IsNoOp() {
		t.Errorf("reversed range must collapse to a no-op entry, got %+v", params)
	}

	// Missing step defaults to 1.
	defaulted := []domain.ChangeSpec{
		{Cost: domain.MetricChange{From: f(1), To: f(3)}},
	}
	params, err = Expand(defaulted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 3 {
		t.Errorf("expected step to default to 1 giving 3 values, got %d", len(params))
	}

	// Negative step never loops.
	negative := []domain.ChangeSpec{
		{Price: domain.MetricChange{From: f(1), To: f(10), Step: f(-1)}},
	}
	params, err = Expand(negative)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params) != 1 || !params[0].IsNoOp() {
		t.Errorf("negative step must contribute no values, got %+v", params)
	}
}
