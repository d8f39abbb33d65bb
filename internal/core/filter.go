package core

// Criteria narrows a record list. Zero-valued fields are unset and match everything.
type Criteria struct {
	Category Category
	Start    Date // inclusive
	End      Date // inclusive
}

// IsEmpty reports whether no constraint is set.
func (c Criteria) IsEmpty() bool {
	return c.Category == "" && !c.Start.Valid() && !c.End.Valid()
}

// Matches is the AND of the category, lower-bound and upper-bound predicates.
// A record with a malformed date fails both bound predicates.
func (c Criteria) Matches(r ExpenseRecord) bool {
	if c.Category != "" && r.Category != c.Category {
		return false
	}
	if c.Start.Valid() && (!r.Date.Valid() || r.Date.Compare(c.Start) < 0) {
		return false
	}
	if c.End.Valid() && (!r.Date.Valid() || r.Date.Compare(c.End) > 0) {
		return false
	}
	return true
}

// Filter returns the records matching c in their original order.
// The result never aliases the input slice.
func Filter(records []ExpenseRecord, c Criteria) []ExpenseRecord {
	out := make([]ExpenseRecord, 0, len(records))
	for _, r := range records {
		if c.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
