package catalog

import (
	"reflect"
	"testing"

	"github.com/rpattn/scenariogen/internal/domain"
)

func TestExtractValueDrivers(t *testing.T) {
	drivers := ExtractValueDrivers(sampleProducts())

	want := map[string][]string{
		"brand":  {"brand_alpha", "brand_beta"},
		"format": {"format_0.50l", "format_1.00l"},
		"sugar":  {"sugar_free"},
	}
	if !reflect.DeepEqual(drivers, want) {
		t.Errorf("unexpected drivers\n got: %v\nwant: %v", drivers, want)
	}
}

func TestExtractValueDriversIdempotent(t *testing.T) {
	products := sampleProducts()
	first := ExtractValueDrivers(products)
	second := ExtractValueDrivers(products)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction must be deterministic: %v vs %v", first, second)
	}
}

func TestExtractValueDriversEmptyCatalog(t *testing.T) {
	drivers := ExtractValueDrivers(nil)
	if len(drivers) != 0 {
		t.Errorf("expected no drivers for empty catalog, got %v", drivers)
	}
}

func TestExtractValueDriversSkipsEmptyValues(t *testing.T) {
	products := []domain.Product{
		{
			ReferenceID: "p",
			Name:        "P",
			Attributes: []domain.ProductAttribute{
				{ValueDriverReferenceID: "brand", ReferenceID: ""},
			},
		},
	}
	drivers := ExtractValueDrivers(products)
	if _, ok := drivers["brand"]; ok {
		t.Errorf("driver with only empty values must be omitted, got %v", drivers)
	}
}
