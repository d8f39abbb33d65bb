package core

import (
	"slices"
	"strings"
)

// FormDraft holds the raw text of the expense form.
type FormDraft struct {
	Title    string `json:"title"`
	Amount   string `json:"amount"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

// Parse converts form input into a validated Draft.
func (f FormDraft) Parse() (Draft, error) {
	amount, _ := ParseAmount(f.Amount)
	d := Draft{
		Title:    strings.TrimSpace(f.Title),
		Amount:   amount,
		Category: Category(strings.TrimSpace(f.Category)),
		Date:     ParseDate(f.Date),
	}
	if err := d.Validate(); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// FormFromRecord fills the form with an existing record for editing.
func FormFromRecord(r ExpenseRecord) FormDraft {
	return FormDraft{
		Title:    r.Title,
		Amount:   r.Amount.String(),
		Category: string(r.Category),
		Date:     r.Date.String(),
	}
}

// Submission is the validated intent produced by a form submit.
type Submission struct {
	ID    string // empty for a create
	Draft Draft
}

func (s Submission) IsUpdate() bool {
	return s.ID != ""
}

// State is the UI state as a value. Every transition returns a new State and
// leaves the receiver untouched.
type State struct {
	Records   []ExpenseRecord
	Criteria  Criteria
	Form      FormDraft
	EditingID string
}

// View is everything the presentation layer renders.
type View struct {
	Records     []ExpenseRecord
	Summary     Summary
	Chart       []ChartSlice
	Empty       bool
	SubmitLabel string
}

func (s State) WithRecords(records []ExpenseRecord) State {
	s.Records = slices.Clone(records)
	return s
}

func (s State) WithCriteria(c Criteria) State {
	s.Criteria = c
	return s
}

func (s State) WithForm(f FormDraft) State {
	s.Form = f
	return s
}

func (s State) Editing() bool {
	return s.EditingID != ""
}

// BeginEdit loads record id into the form.
func (s State) BeginEdit(id string) (State, error) {
	i := slices.IndexFunc(s.Records, func(r ExpenseRecord) bool { return r.ID == id })
	if i < 0 {
		return s, ErrNotFound
	}
	s.Form = FormFromRecord(s.Records[i])
	s.EditingID = id
	return s, nil
}

// CancelEdit leaves edit mode and clears the form.
func (s State) CancelEdit() State {
	return s.ResetForm()
}

// ResetForm clears the form after a successful submit.
func (s State) ResetForm() State {
	s.Form = FormDraft{}
	s.EditingID = ""
	return s
}

// Submission validates the form. On error nothing should be sent to the store.
func (s State) Submission() (Submission, error) {
	d, err := s.Form.Parse()
	if err != nil {
		return Submission{}, err
	}
	return Submission{ID: s.EditingID, Draft: d}, nil
}

// View runs the filter and aggregation pipeline over the current records.
func (s State) View() View {
	visible := Filter(s.Records, s.Criteria)
	summary := Summarize(visible)
	label := "Add"
	if s.Editing() {
		label = "Update"
	}
	return View{
		Records:     visible,
		Summary:     summary,
		Chart:       ChartSlices(summary.ByCategory),
		Empty:       len(visible) == 0,
		SubmitLabel: label,
	}
}
