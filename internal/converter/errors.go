package converter

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrParseFailure      = errors.New("parse failure")
	ErrEmptyMeanFill     = errors.New("no values to compute mean")
	ErrUnknownColumn     = errors.New("column not found")
	ErrDuplicateColumn   = errors.New("column selected more than once")
	ErrUnknownOperation  = errors.New("unknown cleaning operation")
	ErrNoNumericColumns  = errors.New("no numeric columns")
	ErrFileTooLarge      = errors.New("file too large")
)

// UnsupportedFormatError is returned for any extension other than .csv and .xlsx.
type UnsupportedFormatError struct {
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.Ext)
}

func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// ParseError wraps a CSV or XLSX decoding failure.
type ParseError struct {
	Ext string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Ext, e.Err)
}

func (e *ParseError) Is(target error) bool { return target == ErrParseFailure }

func (e *ParseError) Unwrap() error { return e.Err }

// EmptyMeanFillError reports a numeric column left unfilled because it
// has no values at all.
type EmptyMeanFillError struct {
	Column string
}

func (e *EmptyMeanFillError) Error() string {
	return fmt.Sprintf("column %q: %v, left unchanged", e.Column, ErrEmptyMeanFill)
}

func (e *EmptyMeanFillError) Unwrap() error { return ErrEmptyMeanFill }
