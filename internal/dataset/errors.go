package dataset

import (
	"fmt"
	"strings"
)

// EncodingError means the file bytes could not be decoded at all.
// Detection itself never fails; this only fires when the decoder does.
type EncodingError struct {
	Charset string
	Err     error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("failed to decode file as %s: %v", e.Charset, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// MissingIdentifierError means neither customer identifier column survived
// header mapping.
type MissingIdentifierError struct {
	Candidates []string
}

func (e *MissingIdentifierError) Error() string {
	return fmt.Sprintf("file must contain at least one customer identifier column: %s",
		strings.Join(e.Candidates, ", "))
}

// MissingColumnsError enumerates exactly which required columns are absent
// after header mapping.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("file missing columns after mapping: %s",
		strings.Join(e.Missing, ", "))
}

// EmptyDatasetError means cleaning dropped every row. This almost always
// indicates an upstream mapping or encoding failure rather than a genuinely
// empty export, so it aborts instead of returning an empty table.
type EmptyDatasetError struct {
	Dropped DropCounts
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("no valid rows after cleaning (%d rows dropped)", e.Dropped.Total())
}

// InsufficientDataError means an analysis has too little data to produce a
// meaningful result.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %s", e.Reason)
}
