package core

import "github.com/shopspring/decimal"

// ChartSlice is one pie-chart segment.
type ChartSlice struct {
	Name  Category
	Value decimal.Decimal
	Color string
}

// ColorFor returns the chart colour for a category. Unknown categories use the
// Others colour; this is the only place the fallback bucket is applied.
func ColorFor(c Category) string {
	switch c {
	case Food:
		return "#10b981"
	case Transport:
		return "#3b82f6"
	case Shopping:
		return "#f59e0b"
	default:
		return "#6b7280"
	}
}

// BadgeFor returns the list badge class for a category.
func BadgeFor(c Category) string {
	switch c {
	case Food:
		return "bg-green-500"
	case Transport:
		return "bg-blue-500"
	case Shopping:
		return "bg-orange-500"
	default:
		return "bg-gray-500"
	}
}

// DisplayCategory maps a stored category onto its display bucket.
func DisplayCategory(c Category) Category {
	if c.IsCanonical() {
		return c
	}
	return Others
}

// ChartSlices attaches colours to a category breakdown, keeping its order and keys.
func ChartSlices(breakdown []CategoryAmount) []ChartSlice {
	out := make([]ChartSlice, 0, len(breakdown))
	for _, ca := range breakdown {
		out = append(out, ChartSlice{Name: ca.Name, Value: ca.Amount, Color: ColorFor(ca.Name)})
	}
	return out
}
