package catalog

import (
	"sort"

	"github.com/rpattn/scenariogen/internal/domain"
)

// ExtractValueDrivers derives the distinct filterable attribute
// dimensions and their possible values from the catalog. Every product's
// and every variant's effective attributes contribute, aggregations
// included. Each driver's value list is de-duplicated and sorted; drivers
// with no valid value are omitted entirely. Deterministic and idempotent.
func ExtractValueDrivers(products []domain.Product) map[string][]string {
	observed := make(map[string]map[string]struct{})

	collect := func(set domain.AttributeSet) {
		for driver, values := range set {
			for _, value := range values {
				if value == "" {
					continue
				}
				if observed[driver] == nil {
					observed[driver] = make(map[string]struct{})
				}
				observed[driver][value] = struct{}{}
			}
		}
	}

	for _, product := range products {
		base := productAttributes(product)
		collect(base)
		for _, variant := range product.Variants {
			collect(variantAttributes(base, variant))
		}
	}

	drivers := make(map[string][]string, len(observed))
	for driver, values := range observed {
		if len(values) == 0 {
			continue
		}
		list := make([]string, 0, len(values))
		for value := range values {
			list = append(list, value)
		}
		sort.Strings(list)
		drivers[driver] = list
	}
	return drivers
}
