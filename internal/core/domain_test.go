package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
		out   string
	}{
		{"2025-08-14", true, "2025-08-14"},
		{" 2025-08-15 ", true, "2025-08-15"},
		{"2025-08-15T23:30:00+02:00", true, "2025-08-15"},
		{"15/08/2025", false, "15/08/2025"},
		{"", false, ""},
		{"2025-02-30", false, "2025-02-30"},
	}
	for _, tc := range cases {
		d := ParseDate(tc.in)
		if d.Valid() != tc.valid {
			t.Fatalf("%q: valid=%v, want %v", tc.in, d.Valid(), tc.valid)
		}
		if d.String() != tc.out {
			t.Fatalf("%q: string=%q, want %q", tc.in, d.String(), tc.out)
		}
	}
}

func TestDateCompare(t *testing.T) {
	a := NewDate(2025, 8, 14)
	b := ParseDate("2025-08-15T00:10:00Z")
	if a.Compare(b) >= 0 || b.Compare(a) <= 0 {
		t.Fatalf("expected %v < %v", a, b)
	}
	if a.Compare(NewDate(2025, 8, 14)) != 0 {
		t.Fatalf("expected equal dates to compare as 0")
	}
}

func TestCategoryIsCanonical(t *testing.T) {
	for _, c := range Categories() {
		if !c.IsCanonical() {
			t.Fatalf("%s should be canonical", c)
		}
	}
	for _, c := range []Category{"food", "Travel", ""} {
		if c.IsCanonical() {
			t.Fatalf("%q should not be canonical", c)
		}
	}
}

func TestDraftValidate(t *testing.T) {
	good := Draft{
		Title:    "Lunch",
		Amount:   decimal.NewFromInt(15),
		Category: Food,
		Date:     NewDate(2025, 8, 14),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Non-canonical categories are accepted and stored verbatim.
	custom := good
	custom.Category = "Travel"
	if err := custom.Validate(); err != nil {
		t.Fatalf("expected custom category to validate, got %v", err)
	}

	bads := []struct {
		mutate func(*Draft)
		field  string
		want   error
	}{
		{func(d *Draft) { d.Title = "ab" }, "title", ErrTitleTooShort},
		{func(d *Draft) { d.Title = "   ab   " }, "title", ErrTitleTooShort},
		{func(d *Draft) { d.Amount = decimal.Zero }, "amount", ErrInvalidAmount},
		{func(d *Draft) { d.Amount = decimal.NewFromInt(-3) }, "amount", ErrInvalidAmount},
		{func(d *Draft) { d.Amount = decimal.New(1, 50000000) }, "amount", ErrInvalidAmount},
		{func(d *Draft) { d.Amount = decimal.New(1, -50000000) }, "amount", ErrInvalidAmount},
		{func(d *Draft) { d.Category = " " }, "category", ErrEmptyCategory},
		{func(d *Draft) { d.Date = ParseDate("tomorrow") }, "date", ErrInvalidDate},
	}
	for i, tc := range bads {
		d := good
		tc.mutate(&d)
		err := d.Validate()
		if !errors.Is(err, tc.want) {
			t.Fatalf("case %d: expected %v, got %v", i, tc.want, err)
		}
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Fatalf("case %d: expected validation error on %s, got %v", i, tc.field, err)
		}
	}
}

func TestDraftWithIDRoundTrip(t *testing.T) {
	d := Draft{Title: "Bus Ticket", Amount: decimal.NewFromInt(5), Category: Transport, Date: NewDate(2025, 8, 15)}
	r := d.WithID("2")
	if r.ID != "2" || r.Draft() != d {
		t.Fatalf("unexpected record %+v", r)
	}
}
