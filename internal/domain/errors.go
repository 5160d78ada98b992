package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every *ParseError.
	ErrParse = errors.New("parse number")

	// ErrInvalidPattern is returned when a pattern table fails to compile or
	// names a field the extractor does not know.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrOrphanOverride is returned when an absolute override targets a date
	// the merged series does not contain.
	ErrOrphanOverride = errors.New("override without base record")

	// ErrIncompleteSeries is returned when a day lacks confirmed or recovered
	// at projection time.
	ErrIncompleteSeries = errors.New("incomplete series")

	// ErrInvalidArtifact is wrapped by every violation ValidateArtifact reports.
	ErrInvalidArtifact = errors.New("invalid artifact")
)

// ParseError reports a matched fragment that could not be turned into a number.
type ParseError struct {
	Kind  string // "number", "ordinal" or "percentage"
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q", e.Kind, e.Input)
}

// Unwrap lets errors.Is(err, ErrParse) match.
func (e *ParseError) Unwrap() error { return ErrParse }
