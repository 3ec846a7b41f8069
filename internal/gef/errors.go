package gef

import (
	"errors"
	"fmt"
)

// Reasons a GEF file is rejected. A FormatError wraps exactly one of these so
// callers can test for the category with errors.Is.
var (
	ErrMalformedHeader  = errors.New("malformed header")
	ErrMissingHeaderEnd = errors.New("missing #EOH")
	ErrMissingColumn    = errors.New("missing column mapping")
	ErrVoidBeforeColumn = errors.New("#COLUMNVOID before #COLUMNINFO")
	ErrNotCPT           = errors.New("not of type CPT")
	ErrMissingPosition  = errors.New("no coordinates found (#XYID)")
	ErrInvalidNumber    = errors.New("invalid number")
	ErrShortRow         = errors.New("row has too few columns")
	ErrNoSamples        = errors.New("no samples retained")
)

// FormatError reports why a single GEF file could not be read. It is always
// fatal to that file and never to a batch.
type FormatError struct {
	File   string
	Line   int // 0 when the error is not tied to a line
	Kind   error
	Detail string
}

func (e *FormatError) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Line > 0 {
		return fmt.Sprintf("ERROR in file %s line %d: %s", e.File, e.Line, msg)
	}
	return fmt.Sprintf("ERROR in file %s: %s", e.File, msg)
}

func (e *FormatError) Unwrap() error {
	return e.Kind
}
