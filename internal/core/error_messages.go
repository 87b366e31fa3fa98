package core

// error_messages.go maps technical errors to user-facing messages.
//
// # Error Codes Reference
//
// Validation errors (VAL001-VAL099):
//
//	VAL001 - Missing columns: configured columns are absent from the file
//
// File errors (FILE001-FILE099):
//
//	FILE001 - File too large
//	FILE002 - Invalid CSV (wrong field count, bad quoting)
//	FILE003 - Encoding error (not UTF-8)
//	FILE004 - No file provided
//	FILE005 - Empty file
//	FILE006 - Wrong file type (not .csv)
//
// Campaign errors (CMP001-CMP099):
//
//	CMP001 - Campaign not found
//	CMP002 - Campaign already exists
//	CMP003 - Invalid campaign configuration
//
// Upload errors (UPL001-UPL099):
//
//	UPL002 - System busy
//	UPL004 - Request cancelled
//	UPL005 - Request timeout
//
// Database errors (DB001-DB099):
//
//	DB004 - Connection refused
//	DB005 - Connection reset
//	DB006 - Timeout
//
// Rate limiting (RATE001): too many requests.
//
// ERR000 is the fallback when nothing matches; the technical error is in the logs.
//
// Typed errors (ParseError, ValidationError, sentinels) are matched first with
// errors.As / errors.Is. Remaining errors are matched case-insensitively by
// substring, first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var (
	msgMissingColumns = UserMessage{
		Message: "Required columns are missing from the file",
		Action:  "Check that every column configured for the campaign is present in your file",
		Code:    "VAL001",
	}
	msgFileTooLarge = UserMessage{
		Message: "File exceeds maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}
	msgInvalidCSV = UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Ensure the file is comma-separated with the same number of fields on every row",
		Code:    "FILE002",
	}
	msgEncoding = UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save the file with UTF-8 encoding",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to upload",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The uploaded file is empty",
		Action:  "Please upload a CSV file with a header row",
		Code:    "FILE005",
	}
	msgFileType = UserMessage{
		Message: "Invalid file type",
		Action:  "Only .csv files are accepted",
		Code:    "FILE006",
	}
	msgCampaignNotFound = UserMessage{
		Message: "Campaign not found",
		Action:  "Verify the campaign identifier",
		Code:    "CMP001",
	}
	msgCampaignExists = UserMessage{
		Message: "A campaign with this name already exists",
		Action:  "Choose a different name or edit the existing campaign",
		Code:    "CMP002",
	}
	msgInvalidCampaign = UserMessage{
		Message: "The campaign configuration is invalid",
		Action:  "Give the campaign a name and at least one named column",
		Code:    "CMP003",
	}
	msgBusy = UserMessage{
		Message: "Too many files are being processed",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}
)

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error substrings (case-insensitive) to user messages.
// More specific patterns come first.
var errorPatterns = []errorPattern{
	{pattern: "connection refused", msg: UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}},
	{pattern: "connection reset", msg: UserMessage{
		Message: "Database connection was interrupted",
		Action:  "Please try again",
		Code:    "DB005",
	}},
	{pattern: "context canceled", msg: UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
	}},
	{pattern: "context deadline exceeded", msg: UserMessage{
		Message: "Request timed out",
		Action:  "Try a smaller file or check your connection",
		Code:    "UPL005",
	}},
	{pattern: "timeout", msg: UserMessage{
		Message: "Operation timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "DB006",
	}},
	{pattern: "request body too large", msg: msgFileTooLarge},
	{pattern: "file too large", msg: msgFileTooLarge},
	{pattern: "no file provided", msg: msgNoFile},
	{pattern: "rate limit", msg: UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Returns an empty UserMessage for nil.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		msg := msgMissingColumns
		msg.Message = fmt.Sprintf("%s: %s", msg.Message, strings.Join(valErr.MissingColumns, ", "))
		return msg
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		switch {
		case strings.HasPrefix(parseErr.Msg, "encoding error"):
			return msgEncoding
		case strings.HasPrefix(parseErr.Msg, "empty file"):
			return msgEmptyFile
		default:
			msg := msgInvalidCSV
			msg.Message = fmt.Sprintf("%s (%s)", msg.Message, parseErr.Error())
			return msg
		}
	}

	switch {
	case errors.Is(err, ErrEmptyFile):
		return msgEmptyFile
	case errors.Is(err, ErrFileTooLarge):
		return msgFileTooLarge
	case errors.Is(err, ErrInvalidFileType):
		return msgFileType
	case errors.Is(err, ErrCampaignNotFound):
		return msgCampaignNotFound
	case errors.Is(err, ErrCampaignExists):
		return msgCampaignExists
	case errors.Is(err, ErrInvalidCampaign):
		return msgInvalidCampaign
	case errors.Is(err, ErrTooManyUploads):
		return msgBusy
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
