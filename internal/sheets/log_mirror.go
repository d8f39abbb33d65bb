package sheets

import (
	"context"
	"fmt"
	"sync/atomic"

	"expensetracker/internal/amqp"
	"expensetracker/internal/log"
)

// LogMirror writes events to the log only. The worker uses it when no
// spreadsheet is configured.
type LogMirror struct {
	logger *log.Logger
	rows   atomic.Int64
}

func NewLogMirror(logger *log.Logger) *LogMirror {
	if logger == nil {
		logger = log.Discard()
	}
	return &LogMirror{logger: logger.WithComponent(log.ComponentSheets)}
}

func (m *LogMirror) Mirror(ctx context.Context, ev *amqp.RecordEvent) (string, error) {
	n := m.rows.Add(1)
	r := ev.Record
	m.logger.InfoContext(ctx, "Record event",
		log.FieldOperation, string(ev.Op),
		log.FieldRecordID, r.ID,
		log.FieldTitle, r.Title,
		log.FieldAmount, r.Amount.String(),
		log.FieldCategory, string(r.Category),
		log.FieldDate, r.Date.String())
	return fmt.Sprintf("log:%d", n), nil
}
