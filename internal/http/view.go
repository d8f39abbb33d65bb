package http

import (
	"encoding/json"
	"strings"

	"expensetracker/internal/core"

	"github.com/shopspring/decimal"
)

const (
	emptyListMessage  = "No expenses found."
	emptyChartMessage = "No data to display"
	staleMessage      = "Could not reach the expense service; showing the last loaded expenses."
)

type recordView struct {
	ID              string      `json:"_id"`
	Title           string      `json:"title"`
	Amount          json.Number `json:"amount"`
	AmountDisplay   string      `json:"amount_display"`
	Category        string      `json:"category"`
	DisplayCategory string      `json:"display_category"`
	Badge           string      `json:"badge"`
	Date            string      `json:"date"`
}

type categoryView struct {
	Name    string      `json:"name"`
	Amount  json.Number `json:"amount"`
	Display string      `json:"display"`
}

type sliceView struct {
	Name  string      `json:"name"`
	Value json.Number `json:"value"`
	Color string      `json:"color"`
}

// viewPayload is the dashboard read model returned by GET /api/view.
type viewPayload struct {
	Records      []recordView   `json:"records"`
	Count        int            `json:"count"`
	Total        json.Number    `json:"total"`
	TotalDisplay string         `json:"total_display"`
	ByCategory   []categoryView `json:"by_category"`
	Chart        []sliceView    `json:"chart"`
	Empty        bool           `json:"empty"`
	EmptyMessage string         `json:"empty_message,omitempty"`
	ChartMessage string         `json:"chart_message,omitempty"`
	Stale        bool           `json:"stale"`
	Error        string         `json:"error,omitempty"`
}

// formPayload describes the expense form after a transition.
type formPayload struct {
	Record      *core.ExpenseRecord `json:"record,omitempty"`
	Form        core.FormDraft      `json:"form"`
	EditingID   string              `json:"editing_id,omitempty"`
	SubmitLabel string              `json:"submit_label"`
}

type categoryOption struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Badge string `json:"badge"`
}

func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func newViewPayload(v core.View) viewPayload {
	p := viewPayload{
		Records:      make([]recordView, 0, len(v.Records)),
		Count:        v.Summary.Count,
		Total:        number(v.Summary.Total),
		TotalDisplay: core.FormatAmount(v.Summary.Total),
		ByCategory:   make([]categoryView, 0, len(v.Summary.ByCategory)),
		Chart:        make([]sliceView, 0, len(v.Chart)),
		Empty:        v.Empty,
	}
	for _, r := range v.Records {
		p.Records = append(p.Records, recordView{
			ID:              r.ID,
			Title:           r.Title,
			Amount:          number(r.Amount),
			AmountDisplay:   core.FormatAmount(r.Amount),
			Category:        string(r.Category),
			DisplayCategory: string(core.DisplayCategory(r.Category)),
			Badge:           core.BadgeFor(r.Category),
			Date:            r.Date.String(),
		})
	}
	for _, ca := range v.Summary.ByCategory {
		p.ByCategory = append(p.ByCategory, categoryView{
			Name:    string(ca.Name),
			Amount:  number(ca.Amount),
			Display: core.FormatAmount(ca.Amount),
		})
	}
	for _, cs := range v.Chart {
		p.Chart = append(p.Chart, sliceView{Name: string(cs.Name), Value: number(cs.Value), Color: cs.Color})
	}
	if v.Empty {
		p.EmptyMessage = emptyListMessage
		p.ChartMessage = emptyChartMessage
	}
	return p
}

// parseCriteria reads category, start and end from the query. Blank values
// and the "All" category leave the criterion unset; malformed dates fail.
func parseCriteria(q interface{ Get(string) string }) (core.Criteria, error) {
	var c core.Criteria
	if cat := strings.TrimSpace(q.Get("category")); cat != "" && !strings.EqualFold(cat, "all") {
		c.Category = core.Category(cat)
	}
	for _, bound := range []struct {
		field string
		dst   *core.Date
	}{{"start", &c.Start}, {"end", &c.End}} {
		raw := strings.TrimSpace(q.Get(bound.field))
		if raw == "" {
			continue
		}
		d := core.ParseDate(raw)
		if !d.Valid() {
			return core.Criteria{}, &core.ValidationError{Field: bound.field, Err: core.ErrInvalidDate}
		}
		*bound.dst = d
	}
	return c, nil
}

func categoryOptions() []categoryOption {
	cats := core.Categories()
	out := make([]categoryOption, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryOption{Name: string(c), Color: core.ColorFor(c), Badge: core.BadgeFor(c)})
	}
	return out
}
