package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	record, err := Parse("00000001|00000002|20230615143000", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.CustomerID)
	assert.Equal(t, int64(2), record.ProductID)
	assert.Equal(t, time.Date(2023, 6, 15, 14, 30, 0, 0, time.Local), record.CreatedAt)
}

func TestParseFormattedIDs(t *testing.T) {
	record, err := Parse("123.456.789-00|00-42|20230101000000", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(12345678900), record.CustomerID)
	assert.Equal(t, int64(42), record.ProductID)
}

func TestParseWrongFieldCount(t *testing.T) {
	cases := []string{
		"1|2",
		"1|2|20230615143000|extra",
		"",
		"no delimiters here",
	}
	for _, line := range cases {
		_, err := Parse(line, 7)
		var recordErr *RecordError
		require.True(t, errors.As(err, &recordErr), "line %q", line)
		assert.Equal(t, ErrKindMalformedRecord, recordErr.Kind)
		assert.Equal(t, 7, recordErr.Line)
	}
}

func TestParseEmptyID(t *testing.T) {
	_, err := Parse("|2|20230615143000", 1)
	var recordErr *RecordError
	require.True(t, errors.As(err, &recordErr))
	assert.Equal(t, ErrKindInvalidID, recordErr.Kind)

	_, err = Parse("1|--|20230615143000", 1)
	require.True(t, errors.As(err, &recordErr))
	assert.Equal(t, ErrKindInvalidID, recordErr.Kind)
}

func TestParseInvalidTimestamp(t *testing.T) {
	cases := []string{
		"1|2|bad-timestamp",
		"1|2|2023061514300",   // 13 digits
		"1|2|202306151430000", // 15 digits
		"1|2|20231315143000",  // month 13
		"1|2|",
	}
	for _, line := range cases {
		_, err := Parse(line, 2)
		var recordErr *RecordError
		require.True(t, errors.As(err, &recordErr), "line %q", line)
		assert.Equal(t, ErrKindInvalidTimestamp, recordErr.Kind, "line %q", line)
	}
}
