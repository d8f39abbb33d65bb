package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Wire format shared with the remote collection:
//
//	{"_id": "1", "title": "Lunch", "amount": 15, "category": "Food", "date": "2025-08-14"}
//
// Decoding is permissive: the id may live under "_id" or "id" and be a string or a
// number; the amount may be a number or a numeric string (form input) and falls
// back to zero when it cannot be parsed. Non-string title, category or date
// values are kept as their raw JSON text.

type wireRecord struct {
	ID       json.RawMessage `json:"_id,omitempty"`
	AltID    json.RawMessage `json:"id,omitempty"`
	Title    json.RawMessage `json:"title"`
	Amount   json.RawMessage `json:"amount"`
	Category json.RawMessage `json:"category"`
	Date     json.RawMessage `json:"date"`
}

type wireDraft struct {
	Title    string      `json:"title"`
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Date     string      `json:"date"`
}

type wireOut struct {
	ID string `json:"_id"`
	wireDraft
}

func (d Draft) wire() wireDraft {
	return wireDraft{
		Title:    d.Title,
		Amount:   json.Number(d.Amount.String()),
		Category: string(d.Category),
		Date:     d.Date.String(),
	}
}

func (d Draft) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.wire())
}

func (d *Draft) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = w.draft()
	return nil
}

func (r ExpenseRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireOut{ID: r.ID, wireDraft: r.Draft().wire()})
}

func (r *ExpenseRecord) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id, err := decodeID(w.ID)
	if err != nil {
		return err
	}
	if id == "" {
		if id, err = decodeID(w.AltID); err != nil {
			return err
		}
	}
	*r = w.draft().WithID(id)
	return nil
}

func (w wireRecord) draft() Draft {
	return Draft{
		Title:    decodeText(w.Title),
		Amount:   decodeAmount(w.Amount),
		Category: Category(decodeText(w.Category)),
		Date:     ParseDate(decodeText(w.Date)),
	}
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode id: %w", err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decode id: %w", err)
	}
	return n.String(), nil
}

// decodeText reads a JSON string. Any other value keeps its raw JSON text, so a
// numeric date such as 20250815 becomes an invalid Date instead of failing the
// whole list.
func decodeText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

func decodeAmount(raw json.RawMessage) decimal.Decimal {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero
		}
		return CoerceAmount(s)
	}
	return CoerceAmount(string(raw))
}

// MergeDraft overlays the fields present in a partial JSON body onto base.
// Keys other than title, amount, category and date are ignored.
func MergeDraft(base Draft, patch []byte) (Draft, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return Draft{}, fmt.Errorf("decode patch: %w", err)
	}
	merged := map[string]json.RawMessage{}
	current, err := json.Marshal(base)
	if err != nil {
		return Draft{}, err
	}
	if err := json.Unmarshal(current, &merged); err != nil {
		return Draft{}, err
	}
	for _, key := range []string{"title", "amount", "category", "date"} {
		if v, ok := fields[key]; ok {
			merged[key] = v
		}
	}
	body, err := json.Marshal(merged)
	if err != nil {
		return Draft{}, err
	}
	var out Draft
	if err := json.Unmarshal(body, &out); err != nil {
		return Draft{}, fmt.Errorf("decode merged draft: %w", err)
	}
	return out, nil
}
