package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrCampaignExists   = errors.New("campaign already exists")
	ErrInvalidCampaign  = errors.New("invalid campaign")
	ErrInvalidFileType  = errors.New("invalid file type: only .csv files are accepted")
	ErrEmptyFile        = errors.New("empty file")
	ErrFileTooLarge     = errors.New("file too large")
)

// ParseError reports a malformed input table.
// Row is the 1-based data row (0 for the header), Line the 1-based file line.
type ParseError struct {
	Row  int
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	switch {
	case e.Row > 0 && e.Line > 0:
		return fmt.Sprintf("parse error at row %d (line %d): %s", e.Row, e.Line, e.Msg)
	case e.Row > 0:
		return fmt.Sprintf("parse error at row %d: %s", e.Row, e.Msg)
	case e.Line > 0:
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Msg)
	default:
		return "parse error: " + e.Msg
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError reports configured columns that are absent from the input table.
type ValidationError struct {
	MissingColumns []string
}

func (e *ValidationError) Error() string {
	return "missing required columns: " + strings.Join(e.MissingColumns, ", ")
}
