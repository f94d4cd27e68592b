package scenario

import (
	"github.com/rpattn/scenariogen/internal/catalog"
	"github.com/rpattn/scenariogen/internal/domain"
)

// MatchRow decides whether a row falls inside a filter scope.
//
// Column filters are evaluated first and a single failing one rejects the
// row regardless of attribute filters. Attribute filters resolve the row's
// Product Name through the by-name index; a name that cannot be resolved
// is a non-match, never an error. A filter set with no populated keys
// matches every row.
func MatchRow(row domain.Row, filters domain.FilterSet, idx *catalog.Index) bool {
	if filters.IsEmpty() {
		return true
	}

	for column, accepted := range filters.Columns {
		if len(accepted) == 0 {
			continue
		}
		if !containsValue(accepted, row.Text(column)) {
			return false
		}
	}

	if !hasPopulatedKeys(filters.Attributes) {
		return true
	}

	entry, ok := idx.ByName(row.Text(domain.ColumnProductName))
	if !ok {
		return false
	}
	return matchAttributes(entry.Attributes, filters.Attributes)
}

// MatchRowByVariantID is the id-keyed variant of MatchRow, used by the
// interactive filter path where rows are resolved by Product Variant Id.
// Only attribute filters apply here.
func MatchRowByVariantID(row domain.Row, attributeFilters map[string][]string, idx *catalog.Index) bool {
	if !hasPopulatedKeys(attributeFilters) {
		return true
	}
	attrs, ok := idx.ByID(row.Text(domain.ColumnProductVariantID))
	if !ok {
		return false
	}
	return matchAttributes(attrs, attributeFilters)
}

func matchAttributes(attrs domain.AttributeSet, filters map[string][]string) bool {
	for driver, accepted := range filters {
		if len(accepted) == 0 {
			continue
		}
		if !attrs.Matches(driver, accepted) {
			return false
		}
	}
	return true
}

func hasPopulatedKeys(filters map[string][]string) bool {
	for _, accepted := range filters {
		if len(accepted) > 0 {
			return true
		}
	}
	return false
}

func containsValue(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
