package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timestampLayout is the wire format used by the offline base export.
const timestampLayout = "20060102150405"

var nonDigits = regexp.MustCompile(`[^0-9]`)

// Record is a single parsed line from the offline base file.
type Record struct {
	CustomerID int64
	ProductID  int64
	CreatedAt  time.Time
}

// Error kinds reported by Parse.
const (
	ErrKindMalformedRecord  = "malformed_record"
	ErrKindInvalidID        = "invalid_id"
	ErrKindInvalidTimestamp = "invalid_timestamp"
)

// RecordError describes why a line could not be parsed.
type RecordError struct {
	Kind  string
	Value string
	Line  int
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Kind, e.Value)
}

// Parse parses one pipe-delimited line of the offline base file. The expected
// shape is "<customer id>|<product id>|<timestamp>" where ids may carry
// formatting characters and the timestamp is 14 digits, local time.
func Parse(line string, lineNumber int) (*Record, error) {
	fields := strings.Split(line, "|")
	if len(fields) != 3 {
		return nil, &RecordError{Kind: ErrKindMalformedRecord, Value: line, Line: lineNumber}
	}

	customerID, err := parseID(fields[0], lineNumber)
	if err != nil {
		return nil, err
	}
	productID, err := parseID(fields[1], lineNumber)
	if err != nil {
		return nil, err
	}

	raw := nonDigits.ReplaceAllString(fields[2], "")
	if len(raw) != len(timestampLayout) {
		return nil, &RecordError{Kind: ErrKindInvalidTimestamp, Value: fields[2], Line: lineNumber}
	}
	createdAt, err := time.ParseInLocation(timestampLayout, raw, time.Local)
	if err != nil {
		return nil, &RecordError{Kind: ErrKindInvalidTimestamp, Value: fields[2], Line: lineNumber}
	}

	return &Record{
		CustomerID: customerID,
		ProductID:  productID,
		CreatedAt:  createdAt,
	}, nil
}

func parseID(field string, lineNumber int) (int64, error) {
	digits := nonDigits.ReplaceAllString(field, "")
	if digits == "" {
		return 0, &RecordError{Kind: ErrKindInvalidID, Value: field, Line: lineNumber}
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, &RecordError{Kind: ErrKindInvalidID, Value: field, Line: lineNumber}
	}
	return id, nil
}
