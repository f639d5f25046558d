package config

import "time"

// Default runtime limits and guardrails for the MCP Margin Dashboard Server.
// These values are conservative and can be overridden by future configuration
// mechanisms (env, CLI, or files). They are referenced by internal/runtime.

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxOpenWorkbooks      = 4

	// Payload and row limits
	DefaultMaxPayloadBytes = 128 * 1024 // 128KB
	DefaultMaxCellsPerOp   = 10_000
	DefaultPreviewRowLimit = 10 // First 10 rows by default
)

const (
	// Timeouts
	DefaultOperationTimeout      = 30 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second

	// Workbook handle lifecycle
	DefaultWorkbookIdleTTL       = 2 * time.Minute
	DefaultWorkbookCleanupPeriod = 30 * time.Second
)

// Default header names for the raw transactional dataset. Headers are matched
// exactly after trimming; the margin-amount column name is configurable per
// call because source workbooks label it inconsistently.
const (
	DefaultProductHeader = "Product"
	DefaultYearHeader    = "Year"
	DefaultQuarterHeader = "Quarter"
	DefaultRevenueHeader = "Revenue"
	DefaultMarginHeader  = "Margin"
)
