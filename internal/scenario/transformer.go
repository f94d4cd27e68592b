package scenario

import (
	"strconv"

	"github.com/rpattn/scenariogen/internal/catalog"
	"github.com/rpattn/scenariogen/internal/domain"
)

// Transformer applies one concrete scenario's changes to a base table.
type Transformer struct {
	index *catalog.Index
}

// NewTransformer creates a transformer resolving rows through the given
// catalog index.
func NewTransformer(index *catalog.Index) *Transformer {
	return &Transformer{index: index}
}

// Result is a derived table: every base row is present, matching rows
// transformed, the rest copied untouched.
type Result struct {
	Rows         []domain.Row
	Columns      []string
	ModifiedRows int
}

// Apply transforms every matching row of the table. Filtering controls
// which rows change, not which rows are emitted: non-matching rows are
// copied through unmodified. Rows are independent, so execution order
// never affects the output.
func (t *Transformer) Apply(table []domain.Row, params domain.ScenarioParams) Result {
	rows := make([]domain.Row, 0, len(table))
	modified := 0

	for _, source := range table {
		row := source.Clone()
		if MatchRow(source, params.Filters, t.index) {
			if params.Price != nil {
				applyPrice(&row, *params.Price)
			}
			if params.Availability != nil {
				applyAvailability(&row, *params.Availability)
			}
			if params.Cost != nil {
				applyCost(&row, *params.Cost)
			}
		}
		if row.Has(domain.ColumnPriceChange) ||
			row.Has(domain.ColumnAvailabilityChange) ||
			row.Has(domain.ColumnCostChange) {
			modified++
		}
		rows = append(rows, row)
	}

	return Result{
		Rows:         rows,
		Columns:      outputColumns(table, params),
		ModifiedRows: modified,
	}
}

func applyPrice(row *domain.Row, change domain.MetricValue) {
	current, _ := row.Number(domain.ColumnCurrentPrice)

	var newPrice, recorded float64
	switch change.Kind {
	case domain.ChangeKindTarget:
		// The declared value is the new price; the recorded delta is
		// the implied difference, not the target itself.
		newPrice = change.Value
		recorded = change.Value - current
	case domain.ChangeKindPercentage:
		newPrice = current * (1 + change.Value/100)
		recorded = change.Value
	default:
		newPrice = current + change.Value
		recorded = change.Value
	}

	row.Set(domain.ColumnPriceChange, domain.NumberValue(recorded))
	row.Set(domain.ColumnPriceChangeType, domain.StringValue(
		domain.ChangeTypeLabel(recorded, change.Kind, change.Kind == domain.ChangeKindTarget)))
	row.Set(domain.ColumnCurrentPrice, domain.StringValue(formatAmount(newPrice)))
}

func applyAvailability(row *domain.Row, change domain.MetricValue) {
	current, _ := row.Number(domain.ColumnCurrentAvailability)

	var newAvailability float64
	if change.Kind == domain.ChangeKindPercentage {
		newAvailability = current * (1 + change.Value/100)
	} else {
		newAvailability = current + change.Value
	}
	// Availability is a percentage of distribution; clamp to [0, 100].
	// The recorded delta stays raw.
	newAvailability = clamp(newAvailability, 0, 100)

	row.Set(domain.ColumnAvailabilityChange, domain.NumberValue(change.Value))
	row.Set(domain.ColumnAvailabilityChangeType, domain.StringValue(
		domain.ChangeTypeLabel(change.Value, change.Kind, false)))
	row.Set(domain.ColumnCurrentAvailability, domain.StringValue(formatAmount(newAvailability)))
}

func applyCost(row *domain.Row, change domain.MetricValue) {
	current, _ := row.Number(domain.ColumnCurrentCost)

	var newCost float64
	if change.Kind == domain.ChangeKindPercentage {
		newCost = current * (1 + change.Value/100)
	} else {
		newCost = current + change.Value
	}

	row.Set(domain.ColumnCostChange, domain.NumberValue(change.Value))
	row.Set(domain.ColumnCostChangeType, domain.StringValue(
		domain.ChangeTypeLabel(change.Value, change.Kind, false)))
	row.Set(domain.ColumnCurrentCost, domain.StringValue(formatAmount(newCost)))
}

// outputColumns is the base column order plus the annotation columns the
// scenario can write, in a fixed order.
func outputColumns(table []domain.Row, params domain.ScenarioParams) []string {
	var base []string
	if len(table) > 0 {
		base = table[0].Columns()
	}
	columns := make([]string, len(base))
	copy(columns, base)

	appendColumn := func(name string) {
		for _, c := range columns {
			if c == name {
				return
			}
		}
		columns = append(columns, name)
	}

	if params.Price != nil {
		appendColumn(domain.ColumnPriceChange)
		appendColumn(domain.ColumnPriceChangeType)
	}
	if params.Availability != nil {
		appendColumn(domain.ColumnAvailabilityChange)
		appendColumn(domain.ColumnAvailabilityChangeType)
	}
	if params.Cost != nil {
		appendColumn(domain.ColumnCostChange)
		appendColumn(domain.ColumnCostChangeType)
	}
	return columns
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
