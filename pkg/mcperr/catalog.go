package mcperr

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Code defines a canonical MCP error code used across tools.
type Code string

const (
	// Validation & Input
	Validation    Code = "VALIDATION"
	InvalidHandle Code = "INVALID_HANDLE"
	InvalidSheet  Code = "INVALID_SHEET"

	// Resource & Limits
	BusyResource    Code = "BUSY_RESOURCE"
	Timeout         Code = "TIMEOUT"
	LimitExceeded   Code = "LIMIT_EXCEEDED"
	PayloadTooLarge Code = "PAYLOAD_TOO_LARGE"

	// IO & Formats
	OpenFailed      Code = "OPEN_FAILED"
	DiscoveryFailed Code = "DISCOVERY_FAILED"
	ReadFailed      Code = "READ_FAILED"

	// Dataset shape
	SchemaMissingHeader Code = "SCHEMA_MISSING_HEADER"
	EmptyDataset        Code = "EMPTY_DATASET"
	PeriodFormat        Code = "PERIOD_FORMAT"

	// Pipeline
	GridFailed  Code = "GRID_FAILED"
	ChartFailed Code = "CHART_FAILED"

	// Integrity
	CorruptWorkbook   Code = "CORRUPT_WORKBOOK"
	UnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	PermissionDenied  Code = "PERMISSION_DENIED"
)

// Entry documents a code's standard message, retry semantics, and next steps.
type Entry struct {
	Code      Code
	Message   string
	Retryable bool
	NextSteps []string
}

// catalog maps canonical codes to guidance. Messages can be overridden per error.
var catalog = map[Code]Entry{
	Validation:    {Code: Validation, Message: "invalid inputs", Retryable: true, NextSteps: []string{"Correct the inputs per schema and retry", "See examples in tool description"}},
	InvalidHandle: {Code: InvalidHandle, Message: "workbook handle not found or expired", Retryable: true, NextSteps: []string{"Reopen the workbook via path and retry"}},
	InvalidSheet:  {Code: InvalidSheet, Message: "sheet not found", Retryable: true, NextSteps: []string{"Call list_structure to verify sheet names", "Check case and spacing"}},

	BusyResource:    {Code: BusyResource, Message: "concurrent request limit reached", Retryable: true, NextSteps: []string{"Retry after a short delay"}},
	Timeout:         {Code: Timeout, Message: "operation exceeded configured time limit", Retryable: true, NextSteps: []string{"Narrow scope (rows/cells) or increase timeout"}},
	LimitExceeded:   {Code: LimitExceeded, Message: "operation exceeded configured limits", Retryable: true, NextSteps: []string{"Narrow the range or raise max_cells within global limits"}},
	PayloadTooLarge: {Code: PayloadTooLarge, Message: "payload exceeds configured size", Retryable: true, NextSteps: []string{"Reduce the product or period lists"}},

	OpenFailed:      {Code: OpenFailed, Message: "failed to open workbook", Retryable: true, NextSteps: []string{"Verify path, permissions, and format"}},
	DiscoveryFailed: {Code: DiscoveryFailed, Message: "failed to discover structure", Retryable: true, NextSteps: []string{"Retry or open the workbook and inspect"}},
	ReadFailed:      {Code: ReadFailed, Message: "failed to read range", Retryable: true, NextSteps: []string{"Verify A1 range and retry", "Reduce max_cells if needed"}},

	SchemaMissingHeader: {Code: SchemaMissingHeader, Message: "required dataset header missing", Retryable: false, NextSteps: []string{"Check the header row for Product/Year/Quarter/Revenue and the configured margin column", "Adjust product_column or margin_column to match the sheet"}},
	EmptyDataset:        {Code: EmptyDataset, Message: "dataset has no data rows", Retryable: false, NextSteps: []string{"Verify the range covers header plus at least one data row"}},
	PeriodFormat:        {Code: PeriodFormat, Message: "period label is not 'YYYY Qn'", Retryable: true, NextSteps: []string{"Use labels like '2023 Q1'"}},

	GridFailed:  {Code: GridFailed, Message: "metrics grid build failed", Retryable: true, NextSteps: []string{"Verify range, products, and periods", "Reduce max_cells if needed"}},
	ChartFailed: {Code: ChartFailed, Message: "chart table build failed", Retryable: true, NextSteps: []string{"Verify range, products, periods, and excluded_period"}},

	CorruptWorkbook:   {Code: CorruptWorkbook, Message: "workbook appears corrupt or unreadable", Retryable: false, NextSteps: []string{"Open in Excel and re-save or repair", "Provide a clean copy"}},
	UnsupportedFormat: {Code: UnsupportedFormat, Message: "unsupported workbook format", Retryable: false, NextSteps: []string{"Convert to .xlsx and retry"}},
	PermissionDenied:  {Code: PermissionDenied, Message: "insufficient permissions to access path", Retryable: false, NextSteps: []string{"Adjust permissions or choose an allowed directory"}},
}

// normalize builds a standard error string including next steps for MCP
// clients that surface only a message string. Format: "CODE: message"
// followed by a guidance tail.
func normalize(code Code, msg string) string {
	base := strings.TrimSpace(msg)
	e, ok := catalog[code]
	if !ok {
		if base == "" {
			return string(code)
		}
		return fmt.Sprintf("%s: %s", string(code), base)
	}
	if base == "" {
		base = e.Message
	}
	guidance := ""
	if len(e.NextSteps) > 0 {
		guidance = " | nextSteps: " + strings.Join(e.NextSteps, "; ")
	}
	return fmt.Sprintf("%s: %s%s", e.Code, base, guidance)
}

// FromText parses a "CODE: message" string, enriches it with catalog
// guidance, and returns an MCP tool error result.
func FromText(text string) *mcp.CallToolResult {
	t := strings.TrimSpace(text)
	if t == "" {
		return mcp.NewToolResultError(normalize(Validation, ""))
	}
	parts := strings.SplitN(t, ":", 2)
	code := Code(strings.TrimSpace(parts[0]))
	msg := ""
	if len(parts) > 1 {
		msg = strings.TrimSpace(parts[1])
	}
	return mcp.NewToolResultError(normalize(code, msg))
}

// New returns an MCP error result for a given code and optional message override.
func New(code Code, message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, message))
}

// Wrapf formats details and returns an MCP error result for the code.
func Wrapf(code Code, format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, fmt.Sprintf(format, args...)))
}

// IsInvalidSheet returns true if an error matches common excelize "sheet does
// not exist" messages.
func IsInvalidSheet(err error) bool {
	if err == nil {
		return false
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "doesn't exist") || strings.Contains(low, "does not exist")
}
