package catalog

import (
	"reflect"
	"testing"

	"github.com/rpattn/scenariogen/internal/domain"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
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
					Aggregations: map[string]any{"sugar": "free"},
				},
				{
					ReferenceID: "var_2",
					Attributes: []domain.ProductAttribute{
						{ValueDriverReferenceID: "format", ReferenceID: "format_0.50l"},
					},
				},
			},
		},
		{
			ReferenceID: "prod_2",
			Name:        "Lemonade",
			Attributes: []domain.ProductAttribute{
				{ValueDriverReferenceID: "brand", ReferenceID: "brand_beta"},
			},
		},
	}
}

func TestBuildIndexVariantOverlay(t *testing.T) {
	idx := BuildIndex(sampleProducts())

	attrs, ok := idx.ByID("var_1")
	if !ok {
		t.Fatalf("expected var_1 in index")
	}
	if got := attrs["brand"]; !reflect.DeepEqual(got, []string{"brand_alpha"}) {
		t.Errorf("expected inherited brand, got %v", got)
	}
	if got := attrs["format"]; !reflect.DeepEqual(got, []string{"format_1.00l"}) {
		t.Errorf("expected variant format, got %v", got)
	}
	if got := attrs["sugar"]; !reflect.DeepEqual(got, []string{"sugar_free"}) {
		t.Errorf("expected prefixed aggregation value, got %v", got)
	}

	attrs, ok = idx.ByID("var_2")
	if !ok {
		t.Fatalf("expected var_2 in index")
	}
	if got := attrs["format"]; !reflect.DeepEqual(got, []string{"format_0.50l"}) {
		t.Errorf("expected variant format, got %v", got)
	}
	if _, ok := attrs["sugar"]; ok {
		t.Errorf("var_2 must not inherit sibling aggregations")
	}
}

func TestBuildIndexProductID(t *testing.T) {
	idx := BuildIndex(sampleProducts())

	attrs, ok := idx.ByID("prod_1")
	if !ok {
		t.Fatalf("expected prod_1 in index")
	}
	if _, ok := attrs["format"]; ok {
		t.Errorf("product-level set must not carry variant attributes")
	}
}

func TestBuildIndexByNameMergesVariants(t *testing.T) {
	idx := BuildIndex(sampleProducts())

	entry, ok := idx.ByName("Ice Tea")
	if !ok {
		t.Fatalf("expected Ice Tea in by-name index")
	}
	want := []string{"format_0.50l", "format_1.00l"}
	if got := entry.Attributes["format"]; !reflect.DeepEqual(got, want) {
		t.Errorf("expected merged sorted formats %v, got %v", want, got)
	}
	if got := entry.Attributes["brand"]; !reflect.DeepEqual(got, []string{"brand_alpha"}) {
		t.Errorf("expected deduplicated brand, got %v", got)
	}
	if entry.Product.ReferenceID != "prod_1" {
		t.Errorf("expected source product prod_1, got %s", entry.Product.ReferenceID)
	}
}

func TestBuildIndexToleratesMalformedEntries(t *testing.T) {
	products := []domain.Product{
		{
			// No name, no reference id: contributes nothing but must not
			// fail the build.
			Variants: []domain.ProductVariant{
				{Aggregations: map[string]any{"sugar": nil, "": "x"}},
			},
		},
	}
	idx := BuildIndex(products)
	if _, ok := idx.ByName(""); ok {
		t.Errorf("empty product name must not be indexed")
	}
	if _, ok := idx.ByID(""); ok {
		t.Errorf("empty reference id must not be indexed")
	}
}

func TestNormalizeAggregation(t *testing.T) {
	tests := []struct {
		name   string
		driver string
		raw    any
		want   string
		ok     bool
	}{
		{"plain string", "sugar", "free", "sugar_free", true},
		{"already prefixed", "sugar", "sugar_free", "sugar_free", true},
		{"number", "size", 330.0, "size_330", true},
		{"bool", "organic", true, "organic_true", true},
		{"nil", "sugar", nil, "", false},
		{"empty driver", "", "free", "", false},
		{"empty value", "sugar", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeAggregation(tt.driver, tt.raw)
			if ok != tt.ok || got != tt.want {
				t.Errorf("normalizeAggregation(%q, %v) = (%q, %v), want (%q, %v)",
					tt.driver, tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}
