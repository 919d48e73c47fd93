// Package receiptlog records every saved or shared receipt.
package receiptlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/reactbank/reactbank/internal/currency"
)

// Action is what happened to a receipt.
type Action string

const (
	ActionSave  Action = "save"
	ActionShare Action = "share"
)

// Entry is one row in the receipt log.
type Entry struct {
	Timestamp     time.Time
	Action        Action
	RefID         string
	ReceiptNumber string
	Currency      currency.Code
	Format        string
	Destination   string // file path for saves, "-" or a target name for shares
}

// Header is the CSV header for receipt-log.csv.
const Header = "timestamp,action,ref_id,receipt_number,currency,format,destination"

const (
	numFields      = 7
	logDir         = "logs"
	logFile        = "receipt-log.csv"
	colTimestamp   = 0
	colAction      = 1
	colRefID       = 2
	colReceiptNo   = 3
	colCurrency    = 4
	colFormat      = 5
	colDestination = 6
)

// Path returns the log file location under root.
func Path(root string) string {
	return filepath.Join(root, logDir, logFile)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colAction] = string(e.Action)
	row[colRefID] = e.RefID
	row[colReceiptNo] = e.ReceiptNumber
	row[colCurrency] = e.Currency.String()
	row[colFormat] = e.Format
	row[colDestination] = e.Destination
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	action := Action(record[colAction])
	if action != ActionSave && action != ActionShare {
		return Entry{}, fmt.Errorf("unknown action %q", record[colAction])
	}

	code, err := currency.Parse(record[colCurrency])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing currency: %w", err)
	}

	return Entry{
		Timestamp:     ts,
		Action:        action,
		RefID:         record[colRefID],
		ReceiptNumber: record[colReceiptNo],
		Currency:      code,
		Format:        record[colFormat],
		Destination:   record[colDestination],
	}, nil
}

// Append writes entries to <root>/logs/receipt-log.csv, creating the file and
// header if needed.
func Append(root string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Join(root, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(root)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening receipt log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/receipt-log.csv, or nil if the
// file does not exist.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(Path(root))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening receipt log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading receipt log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
