package core

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	Food      Category = "Food"
	Transport Category = "Transport"
	Shopping  Category = "Shopping"
	Others    Category = "Others"
)

const (
	DateLayout     = "2006-01-02"
	MinTitleLength = 3
	MaxTitleLength = 200
)

type (
	// Category is stored verbatim; only the four constants above are canonical.
	Category string

	// Date is a calendar date. A Date built from an unparseable string keeps the
	// raw text for display and reports Valid() == false.
	Date struct {
		time.Time
		raw string
	}

	ExpenseRecord struct {
		ID       string
		Title    string
		Amount   decimal.Decimal
		Category Category
		Date     Date
	}

	// Draft is an ExpenseRecord without its store-assigned id.
	Draft struct {
		Title    string
		Amount   decimal.Decimal
		Category Category
		Date     Date
	}
)

// Categories lists the canonical categories in form order.
func Categories() []Category {
	return []Category{Food, Transport, Shopping, Others}
}

// IsCanonical reports whether c is one of the predefined categories.
func (c Category) IsCanonical() bool {
	switch c {
	case Food, Transport, Shopping, Others:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate never fails: unparseable input yields an invalid Date carrying the raw text.
// Besides YYYY-MM-DD it accepts RFC 3339 timestamps, keeping only their calendar day.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewDate(t.Year(), int(t.Month()), t.Day())
	}
	return Date{raw: s}
}

// Valid reports whether the date holds a concrete calendar day.
func (d Date) Valid() bool {
	return !d.IsZero()
}

func (d Date) String() string {
	if !d.Valid() {
		return d.raw
	}
	return d.Format(DateLayout)
}

// Compare orders two valid dates by calendar day.
func (d Date) Compare(o Date) int {
	a, b := d.Format(DateLayout), o.Format(DateLayout)
	return strings.Compare(a, b)
}

func (d Date) Validate() error {
	if !d.Valid() {
		return ErrInvalidDate
	}
	return nil
}

// Draft strips the id from a record.
func (r ExpenseRecord) Draft() Draft {
	return Draft{Title: r.Title, Amount: r.Amount, Category: r.Category, Date: r.Date}
}

// WithID attaches a store-assigned id to the draft.
func (d Draft) WithID(id string) ExpenseRecord {
	return ExpenseRecord{ID: id, Title: d.Title, Amount: d.Amount, Category: d.Category, Date: d.Date}
}

// Validate applies the input-boundary rules. Stored records are not re-validated.
func (d Draft) Validate() error {
	title := strings.TrimSpace(d.Title)
	if utf8.RuneCountInString(title) < MinTitleLength {
		return &ValidationError{Field: "title", Err: ErrTitleTooShort}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return &ValidationError{Field: "title", Err: ErrTitleTooLong}
	}
	if !d.Amount.IsPositive() || !AmountInRange(d.Amount) {
		return &ValidationError{Field: "amount", Err: ErrInvalidAmount}
	}
	if strings.TrimSpace(string(d.Category)) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if err := d.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	return nil
}
