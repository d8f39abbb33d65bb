package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   Category
	Amount decimal.Decimal
}

// Summary is the derived view of a record subset.
type Summary struct {
	Count      int
	Total      decimal.Decimal
	ByCategory []CategoryAmount
}

// Total sums the amounts exactly; an empty input yields zero.
func Total(records []ExpenseRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.Amount)
	}
	return sum
}

// ByCategory groups by the verbatim category and sums each group. Groups appear
// in order of first occurrence so results are deterministic.
func ByCategory(records []ExpenseRecord) []CategoryAmount {
	index := make(map[Category]int)
	out := make([]CategoryAmount, 0, 4)
	for _, r := range records {
		i, ok := index[r.Category]
		if !ok {
			i = len(out)
			index[r.Category] = i
			out = append(out, CategoryAmount{Name: r.Category, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(r.Amount)
	}
	return out
}

// CategoryTotals flattens a breakdown into a map keyed by category.
func CategoryTotals(breakdown []CategoryAmount) map[Category]decimal.Decimal {
	m := make(map[Category]decimal.Decimal, len(breakdown))
	for _, ca := range breakdown {
		m[ca.Name] = ca.Amount
	}
	return m
}

// Summarize computes count, total and per-category breakdown of records.
func Summarize(records []ExpenseRecord) Summary {
	return Summary{
		Count:      len(records),
		Total:      Total(records),
		ByCategory: ByCategory(records),
	}
}
