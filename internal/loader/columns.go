package loader

import (
	"sort"

	"github.com/rpattn/scenariogen/internal/domain"
)

// DistinctColumnValues collects the distinct non-empty values per column,
// sorted, capped at max per column. Used to ground prompt interpretation
// and column filter pickers in values that actually occur.
func DistinctColumnValues(rows []domain.Row, columns []string, max int) map[string][]string {
	if max <= 0 {
		max = 50
	}
	sets := make(map[string]map[string]struct{}, len(columns))
	for _, column := range columns {
		sets[column] = make(map[string]struct{})
	}
	for _, row := range rows {
		for _, column := range columns {
			value := row.Text(column)
			if value == "" {
				continue
			}
			sets[column][value] = struct{}{}
		}
	}

	out := make(map[string][]string, len(columns))
	for column, set := range sets {
		if len(set) == 0 {
			continue
		}
		values := make([]string, 0, len(set))
		for v := range set {
			values = append(values, v)
		}
		sort.Strings(values)
		if len(values) > max {
			values = values[:max]
		}
		out[column] = values
	}
	return out
}
