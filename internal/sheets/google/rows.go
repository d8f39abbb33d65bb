package google

import (
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
)

const lastColumn = "H"

func headerRow() []any {
	return []any{"Timestamp", "Operation", "ID", "Title", "Amount", "Display", "Category", "Date"}
}

// eventRow lays out one event. Amounts are written as decimal text so the
// sheet holds the exact stored value next to its display form.
func eventRow(ev *amqp.RecordEvent) []any {
	r := ev.Record
	return []any{
		ev.Timestamp.UTC().Format(time.RFC3339),
		string(ev.Op),
		r.ID,
		r.Title,
		r.Amount.String(),
		core.FormatAmount(r.Amount),
		string(r.Category),
		r.Date.String(),
	}
}
