package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rpattn/scenariogen/internal/domain"
)

// Index provides read-only attribute lookups over a loaded product
// catalog. It is built once per catalog load and safe to share across
// concurrent filter and transform operations.
//
// Two keyings exist because the tabular dataset identifies products by
// variant id in some call paths and by display name in others.
type Index struct {
	byID   map[string]domain.AttributeSet
	byName map[string]NameEntry
}

// NameEntry is the by-name lookup result: the attribute set merged across
// the product and all of its variants, plus the source catalog entry.
type NameEntry struct {
	Attributes domain.AttributeSet
	Product    domain.Product
}

// BuildIndex walks the catalog and computes effective attribute sets.
// Malformed entries (missing ids, empty names, nil aggregation values)
// are tolerated by omission; an entirely malformed catalog yields empty
// indices, never an error.
func BuildIndex(products []domain.Product) *Index {
	idx := &Index{
		byID:   make(map[string]domain.AttributeSet),
		byName: make(map[string]NameEntry),
	}

	for _, product := range products {
		base := productAttributes(product)
		if product.ReferenceID != "" {
			idx.byID[product.ReferenceID] = base
		}

		merged := base.Clone()
		for _, variant := range product.Variants {
			effective := variantAttributes(base, variant)
			if variant.ReferenceID != "" {
				idx.byID[variant.ReferenceID] = effective
			}
			for driver, values := range effective {
				for _, value := range values {
					merged.Add(driver, value)
				}
			}
		}

		if product.Name != "" {
			idx.byName[product.Name] = NameEntry{Attributes: merged, Product: product}
		}
	}

	return idx
}

// ByID resolves the effective attribute set for a variant or product id.
func (idx *Index) ByID(id string) (domain.AttributeSet, bool) {
	set, ok := idx.byID[id]
	return set, ok
}

// ByName resolves the merged attribute entry for a product display name.
func (idx *Index) ByName(name string) (NameEntry, bool) {
	entry, ok := idx.byName[name]
	return entry, ok
}

// productAttributes computes a product's direct effective attributes.
func productAttributes(product domain.Product) domain.AttributeSet {
	set := make(domain.AttributeSet, len(product.Attributes))
	for _, attr := range product.Attributes {
		set.Put(attr.ValueDriverReferenceID, attr.ReferenceID)
	}
	return set
}

// variantAttributes overlays variant attributes and normalized
// aggregations on the parent's effective set.
func variantAttributes(base domain.AttributeSet, variant domain.ProductVariant) domain.AttributeSet {
	effective := base.Clone()
	for _, attr := range variant.Attributes {
		effective.Put(attr.ValueDriverReferenceID, attr.ReferenceID)
	}
	for driver, raw := range variant.Aggregations {
		if valueID, ok := normalizeAggregation(driver, raw); ok {
			effective.Put(driver, valueID)
		}
	}
	return effective
}

// normalizeAggregation turns a raw aggregation scalar into a value id.
// A value that already carries the "<driverId>_" prefix is used as-is;
// anything else gets the prefix synthesized. The prefix check is plain
// string matching and can misfire for drivers with shared name prefixes.
func normalizeAggregation(driverID string, raw any) (string, bool) {
	if driverID == "" || raw == nil {
		return "", false
	}

	var value string
	switch v := raw.(type) {
	case string:
		value = v
	case float64:
		value = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		value = strconv.Itoa(v)
	case int64:
		value = strconv.FormatInt(v, 10)
	case bool:
		value = strconv.FormatBool(v)
	default:
		value = fmt.Sprintf("%v", v)
	}
	if value == "" {
		return "", false
	}

	if strings.HasPrefix(value, driverID+"_") {
		return value, true
	}
	return driverID + "_" + value, true
}
