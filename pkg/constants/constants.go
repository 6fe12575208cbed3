// Package constants provides shared constants for the pricing engine.
package constants

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// HealthyMarginPercent is the minimum realized margin considered healthy
	HealthyMarginPercent = 10.0

	// DaysPerMonth is the averaged month length used for velocity projections
	DaysPerMonth = 30.0
)

// ICMS rate constants
const (
	// DefaultInterstateRate is the ICMS rate for interstate operations between
	// developed-region states
	DefaultInterstateRate = 12.0

	// PreferentialInterstateRate is the ICMS rate for operations from a
	// developed region into an underdeveloped region
	PreferentialInterstateRate = 7.0
)

// Break-even advisory thresholds
const (
	// SlowBreakEvenDays flags a break-even horizon long enough to warrant caution
	SlowBreakEvenDays = 90.0

	// ComfortableMarginPercent marks headroom for volume-pricing suggestions
	ComfortableMarginPercent = 30.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024
)

// Scheduler defaults
const (
	// DefaultTaskTimeoutSeconds is the per-task deadline for batch computations
	DefaultTaskTimeoutSeconds = 30

	// DefaultTaskQueueDepth is the dispatch queue capacity of the background worker
	DefaultTaskQueueDepth = 128

	// ProgressCheckpointItems is the number of items between progress emissions
	ProgressCheckpointItems = 50
)
