package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"expensetracker/internal/core"
)

// EventOp names the collection change carried by a RecordEvent.
type EventOp string

const (
	EventCreated EventOp = "created"
	EventUpdated EventOp = "updated"
	EventDeleted EventOp = "deleted"
)

func (op EventOp) Valid() bool {
	switch op {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	}
	return false
}

// RecordEvent is published after every successful mutation of the collection.
// Deleted events carry the record as it was before removal.
type RecordEvent struct {
	Op        EventOp            `json:"op"`
	Record    core.ExpenseRecord `json:"record"`
	Timestamp time.Time          `json:"timestamp"`
}

func NewRecordEvent(op EventOp, rec core.ExpenseRecord) *RecordEvent {
	return &RecordEvent{
		Op:        op,
		Record:    rec,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes an event and rejects unknown operations.
func RecordEventFromJSON(data []byte) (*RecordEvent, error) {
	var ev RecordEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if !ev.Op.Valid() {
		return nil, fmt.Errorf("unknown event op %q", ev.Op)
	}
	return &ev, nil
}
