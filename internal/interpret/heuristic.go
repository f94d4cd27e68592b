package interpret

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/rpattn/scenariogen/internal/domain"
)

// Heuristic is a rule-based interpreter used when no language model is
// configured or reachable. It recognizes a useful subset of phrasing:
// competitor/own-product wording, region and retailer values present in
// the dataset, driver option names, and single or ranged metric amounts.
type Heuristic struct{}

var _ Interpreter = (*Heuristic)(nil)

var (
	priceAmountRe        = regexp.MustCompile(`(?i)(?:price)\s*(?:increase|decrease|change|by|to)?\s*([+-]?\d+(?:\.\d+)?)\s*%?`)
	availabilityAmountRe = regexp.MustCompile(`(?i)(?:availability|stock)\s*(?:increase|decrease|change|by)?\s*([+-]?\d+(?:\.\d+)?)\s*%?`)
	costAmountRe         = regexp.MustCompile(`(?i)(?:cost|manufacturing cost)\s*(?:increase|decrease|change|by)?\s*([+-]?\d+(?:\.\d+)?)\s*%?`)
	rangeRe              = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:to|-|through)\s*(\d+(?:\.\d+)?)\s*%?`)
)

func (h *Heuristic) Interpret(_ context.Context, prompt string, dataset DatasetContext) ([]domain.ChangeSpec, error) {
	lower := strings.ToLower(prompt)

	spec := domain.ChangeSpec{
		Filters: domain.FilterSet{
			Attributes: map[string][]string{},
			Columns:    map[string][]string{},
		},
	}

	h.matchColumnFilters(lower, dataset, &spec)
	h.matchDriverFilters(lower, dataset, &spec)
	matchedMetric := h.matchAmounts(lower, &spec)
	matchedMetric = h.matchRanges(prompt, lower, &spec) || matchedMetric

	if !matchedMetric && !hasFilters(spec.Filters) {
		return nil, ErrNotInterpretable
	}
	return []domain.ChangeSpec{spec}, nil
}

func (h *Heuristic) matchColumnFilters(lower string, dataset DatasetContext, spec *domain.ChangeSpec) {
	if competitorCol := findColumn(dataset.Columns, "competitor"); competitorCol != "" {
		switch {
		case strings.Contains(lower, "competitor"):
			spec.Filters.Columns[competitorCol] = []string{"Yes"}
		case strings.Contains(lower, "own product") ||
			strings.Contains(lower, "our product") ||
			strings.Contains(lower, "own brand"):
			spec.Filters.Columns[competitorCol] = []string{"No"}
		}
	}

	// Region and retailer values only count when the dataset actually
	// carries them; free-form location words are never guessed.
	for _, column := range dataset.Columns {
		columnLower := strings.ToLower(column)
		if !strings.Contains(columnLower, "region") && !strings.Contains(columnLower, "retailer") {
			continue
		}
		for _, value := range dataset.ColumnValues[column] {
			if value == "" || !strings.Contains(lower, strings.ToLower(value)) {
				continue
			}
			if !containsString(spec.Filters.Columns[column], value) {
				spec.Filters.Columns[column] = append(spec.Filters.Columns[column], value)
			}
		}
	}
}

func (h *Heuristic) matchDriverFilters(lower string, dataset DatasetContext, spec *domain.ChangeSpec) {
	for driver, options := range dataset.Drivers {
		if driver == "" || !mentionsWords(lower, driver) {
			continue
		}
		for _, option := range options {
			if option == "" || !mentionsWords(lower, option) {
				continue
			}
			if !containsString(spec.Filters.Attributes[driver], option) {
				spec.Filters.Attributes[driver] = append(spec.Filters.Attributes[driver], option)
			}
		}
	}
}

func (h *Heuristic) matchAmounts(lower string, spec *domain.ChangeSpec) bool {
	kind := domain.ChangeKindAbsolute
	if strings.Contains(lower, "%") || strings.Contains(lower, "percent") {
		kind = domain.ChangeKindPercentage
	}
	priceKind := kind
	if strings.Contains(lower, "target price") || strings.Contains(lower, "target of") {
		priceKind = domain.ChangeKindTarget
	}

	matched := false
	if value, ok := firstAmount(priceAmountRe, lower); ok {
		spec.Price = domain.MetricChange{Value: &value, Kind: priceKind}
		matched = true
	}
	if value, ok := firstAmount(availabilityAmountRe, lower); ok {
		spec.Availability = domain.MetricChange{Value: &value, Kind: kind}
		matched = true
	}
	if value, ok := firstAmount(costAmountRe, lower); ok {
		spec.Cost = domain.MetricChange{Value: &value, Kind: kind}
		matched = true
	}
	return matched
}

func (h *Heuristic) matchRanges(prompt, lower string, spec *domain.ChangeSpec) bool {
	match := rangeRe.FindStringSubmatch(prompt)
	if match == nil {
		return false
	}
	from, errFrom := strconv.ParseFloat(match[1], 64)
	to, errTo := strconv.ParseFloat(match[2], 64)
	if errFrom != nil || errTo != nil {
		return false
	}
	kind := domain.ChangeKindAbsolute
	if strings.Contains(prompt, "%") {
		kind = domain.ChangeKindPercentage
	}
	ranged := domain.MetricChange{From: &from, To: &to, Kind: kind}

	switch {
	case strings.Contains(lower, "price"):
		spec.Price = ranged
	case strings.Contains(lower, "availability"):
		spec.Availability = ranged
	case strings.Contains(lower, "cost"):
		spec.Cost = ranged
	default:
		return false
	}
	return true
}

func firstAmount(re *regexp.Regexp, text string) (float64, bool) {
	match := re.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// mentionsWords reports whether the prompt contains the identifier itself
// or any of its underscore-separated words.
func mentionsWords(lower, identifier string) bool {
	if strings.Contains(lower, strings.ToLower(identifier)) {
		return true
	}
	for _, word := range strings.Fields(strings.ReplaceAll(strings.ToLower(identifier), "_", " ")) {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func findColumn(columns []string, fragment string) string {
	for _, column := range columns {
		if strings.Contains(strings.ToLower(column), fragment) {
			return column
		}
	}
	return ""
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func hasFilters(filters domain.FilterSet) bool {
	for _, values := range filters.Attributes {
		if len(values) > 0 {
			return true
		}
	}
	for _, values := range filters.Columns {
		if len(values) > 0 {
			return true
		}
	}
	return false
}
