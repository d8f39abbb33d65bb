package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/cache"
	"expensetracker/internal/log"
	ports "expensetracker/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var _ ports.EventMirror = (*Client)(nil)

// Options selects the spreadsheet and the service account used to write to it.
type Options struct {
	SpreadsheetID      string
	SheetName          string // base name, the event year is prefixed
	ServiceAccountFile string
	ServiceAccountJSON string
}

// Client appends one row per record event to a yearly sheet ("2025 Events").
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	logger        *log.Logger

	// sheets known to have a header row
	headers cache.Cache[bool]
}

const headerTTL = time.Hour

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, sheetBase string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.Discard()
	}
	if strings.TrimSpace(sheetBase) == "" {
		sheetBase = "Events"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     strings.TrimSpace(sheetBase),
		logger:        logger.WithComponent(log.ComponentSheets),
		headers:       cache.NewLRU[bool](16, headerTTL),
	}
}

// NewFromOptions authenticates with a service account and builds the client.
func NewFromOptions(ctx context.Context, opts Options, logger *log.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	creds, err := serviceAccountJSON(opts)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return New(svc, spreadsheetID, opts.SheetName, logger), nil
}

// serviceAccountJSON resolves credentials from inline JSON, a file, or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func serviceAccountJSON(opts Options) ([]byte, error) {
	inline := strings.TrimSpace(opts.ServiceAccountJSON)
	file := strings.TrimSpace(opts.ServiceAccountFile)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Mirror appends the event to the sheet for the event's year and returns the
// updated range.
func (c *Client) Mirror(ctx context.Context, ev *amqp.RecordEvent) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if ev == nil {
		return "", errors.New("nil record event")
	}
	sheet := yearPrefixedName(c.sheetBase, ev.Timestamp.Year())
	if err := c.ensureHeader(ctx, sheet); err != nil {
		return "", err
	}

	rng := fmt.Sprintf("%s!A:%s", sheet, lastColumn)
	vr := &gsheet.ValueRange{Values: [][]any{eventRow(ev)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		// the sheet may have been removed or renamed; check the header again next time
		c.headers.Delete(sheet)
		return "", fmt.Errorf("append event to %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Mirrored record event",
		log.FieldOperation, string(ev.Op),
		log.FieldRecordID, ev.Record.ID,
		"range", ref)
	return ref, nil
}

// ensureHeader writes the column titles into an empty sheet. A sheet seen
// with a header is not read again until headerTTL passes.
func (c *Client) ensureHeader(ctx context.Context, sheet string) error {
	if _, ok := c.headers.Get(sheet); ok {
		return nil
	}

	rng := fmt.Sprintf("%s!A1:%s1", sheet, lastColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read header of %s: %w", sheet, err)
	}
	if len(resp.Values) == 0 {
		vr := &gsheet.ValueRange{Values: [][]any{headerRow()}}
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write header of %s: %w", sheet, err)
		}
	}

	c.headers.Set(sheet, true)
	return nil
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
