package scenario

import (
	"testing"

	"github.com/rpattn/scenariogen/internal/catalog"
	"github.com/rpattn/scenariogen/internal/domain"
)

var testColumns = []string{
	domain.ColumnProductVariantID,
	domain.ColumnProductName,
	"Region",
	domain.ColumnCurrentPrice,
	domain.ColumnCurrentAvailability,
	domain.ColumnCurrentCost,
}

func testRow(values map[string]string) domain.Row {
	row := domain.NewRow(testColumns)
	for _, column := range testColumns {
		row.Set(column, domain.StringValue(values[column]))
	}
	return row
}

func testIndex() *catalog.Index {
	return catalog.BuildIndex([]domain.Product{
		{
			ReferenceID: "prod_1",
			Name:        "Ice Tea",
			Attributes: []domain.ProductAttribute{
				{ValueDriverReferenceID: "brand", ReferenceID: "brand_alpha"},
			},
			Variants: []domain.ProductVariant{
				{
					ReferenceID: "var_1",
					Attributes: []domain.ProductAttribute{
						{ValueDriverReferenceID: "format", ReferenceID: "format_1.00l"},
					},
				},
				{
					ReferenceID: "var_2",
					Attributes: []domain.ProductAttribute{
						{ValueDriverReferenceID: "format", ReferenceID: "format_0.50l"},
					},
				},
			},
		},
	})
}

func TestMatchRowEmptyFiltersMatchEverything(t *testing.T) {
	row := testRow(map[string]string{domain.ColumnProductName: "Anything"})

	if !MatchRow(row, domain.FilterSet{}, testIndex()) {
		t.Errorf("empty filter set must match every row")
	}

	emptyKeys := domain.FilterSet{
		Attributes: map[string][]string{"brand": {}},
		Columns:    map[string][]string{"Region": nil},
	}
	if !MatchRow(row, emptyKeys, testIndex()) {
		t.Errorf("filters with only empty value lists must match every row")
	}
}

func TestMatchRowColumnFilterPrecedence(t *testing.T) {
	row := testRow(map[string]string{
		domain.ColumnProductName: "Ice Tea",
		"Region":                 "South",
	})
	filters := domain.FilterSet{
		Columns:    map[string][]string{"Region": {"North"}},
		Attributes: map[string][]string{"brand": {"brand_alpha"}},
	}

	// The attribute filter would match, but the failing column filter
	// rejects the row first.
	if MatchRow(row, filters, testIndex()) {
		t.Errorf("failing column filter must reject the row")
	}
}

func TestMatchRowAttributeFilter(t *testing.T) {
	idx := testIndex()
	row := testRow(map[string]string{domain.ColumnProductName: "Ice Tea"})

	match := domain.FilterSet{Attributes: map[string][]string{"brand": {"brand_alpha", "brand_other"}}}
	if !MatchRow(row, match, idx) {
		t.Errorf("expected brand filter to match")
	}

	mismatch := domain.FilterSet{Attributes: map[string][]string{"brand": {"brand_other"}}}
	if MatchRow(row, mismatch, idx) {
		t.Errorf("expected brand filter to reject")
	}
}

func TestMatchRowAmbiguousDriverMatchesAnyValue(t *testing.T) {
	// Ice Tea's variants disagree on format, so the merged by-name entry
	// carries both values; accepting either must match.
	idx := testIndex()
	row := testRow(map[string]string{domain.ColumnProductName: "Ice Tea"})

	filters := domain.FilterSet{Attributes: map[string][]string{"format": {"format_0.50l"}}}
	if !MatchRow(row, filters, idx) {
		t.Errorf("any variant value must satisfy the filter")
	}
}

func TestMatchRowUnresolvableNameRejects(t *testing.T) {
	idx := testIndex()
	row := testRow(map[string]string{domain.ColumnProductName: "Unknown Product"})

	filters := domain.FilterSet{Attributes: map[string][]string{"brand": {"brand_alpha"}}}
	if MatchRow(row, filters, idx) {
		t.Errorf("unresolvable product name must reject the row")
	}
}

func TestMatchRowByVariantID(t *testing.T) {
	idx := testIndex()
	row := testRow(map[string]string{domain.ColumnProductVariantID: "var_1"})

	if !MatchRowByVariantID(row, map[string][]string{"format": {"format_1.00l"}}, idx) {
		t.Errorf("expected variant id filter to match")
	}
	if MatchRowByVariantID(row, map[string][]string{"format": {"format_0.50l"}}, idx) {
		t.Errorf("variant-scoped set must not include sibling values")
	}
	if !MatchRowByVariantID(row, nil, idx) {
		t.Errorf("no attribute filters must match every row")
	}
}
