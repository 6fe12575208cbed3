package scheduler

import (
	"github.com/precify/pricing-engine/pkg/pricing"
)

// Kind identifies the computation a task requests.
type Kind string

const (
	// KindBatch prices a catalog of items, preserving input order.
	KindBatch Kind = "CALCULATE_BATCH"

	// KindScenarios prices one cost base under several named rate variations.
	KindScenarios Kind = "CALCULATE_SCENARIOS"

	// KindMarketAnalysis positions a cost structure against competitor prices.
	KindMarketAnalysis Kind = "CALCULATE_MARKET_ANALYSIS"
)

// Task is a unit of work dispatched to the background worker. The correlation
// ID must be unique within the lifetime of the scheduler instance.
type Task struct {
	ID      string      `json:"id"`
	Kind    Kind        `json:"kind"`
	Payload interface{} `json:"payload"`
}

// BatchItem is one catalog entry of a CALCULATE_BATCH task. A non-nil
// SellingPrice switches the item to reverse/manual mode.
type BatchItem struct {
	Name         string              `json:"name"`
	Costs        pricing.CostInputs  `json:"costs"`
	Rates        pricing.ChargeRates `json:"rates"`
	SellingPrice *float64            `json:"sellingPrice,omitempty"`
}

// BatchPayload carries the items of a CALCULATE_BATCH task.
type BatchPayload struct {
	Items []BatchItem `json:"items"`
}

// BatchItemResult is the outcome for a single item. Exactly one of Result and
// Error is set; the i-th result always corresponds to the i-th input item.
type BatchItemResult struct {
	Name   string                     `json:"name"`
	Result *pricing.CalculationResult `json:"result,omitempty"`
	Error  string                     `json:"error,omitempty"`
}

// BatchResult is the ordered outcome of a CALCULATE_BATCH task.
type BatchResult struct {
	Items []BatchItemResult `json:"items"`
}

// Scenario is one named rate variation of a CALCULATE_SCENARIOS task.
type Scenario struct {
	Name  string              `json:"name"`
	Rates pricing.ChargeRates `json:"rates"`
}

// ScenariosPayload prices a shared cost base under each scenario's rates.
type ScenariosPayload struct {
	Costs     pricing.CostInputs `json:"costs"`
	Scenarios []Scenario         `json:"scenarios"`
}

// ScenarioResult is the outcome of a single scenario, in input order.
type ScenarioResult struct {
	Name   string                     `json:"name"`
	Result *pricing.CalculationResult `json:"result,omitempty"`
	Error  string                     `json:"error,omitempty"`
}

// ScenariosResult is the ordered outcome of a CALCULATE_SCENARIOS task.
type ScenariosResult struct {
	Items []ScenarioResult `json:"items"`
}

// MarketPayload carries a CALCULATE_MARKET_ANALYSIS task: the caller's cost
// structure plus observed competitor prices.
type MarketPayload struct {
	Costs            pricing.CostInputs  `json:"costs"`
	Rates            pricing.ChargeRates `json:"rates"`
	CompetitorPrices []float64           `json:"competitorPrices"`
}

// Market price positions.
const (
	PositionBelow  = "below"
	PositionWithin = "within"
	PositionAbove  = "above"
)

// MarketResult summarizes how the computed price sits against competitors,
// including the margin that would be achieved at each competitor percentile.
type MarketResult struct {
	CompetitorCount int     `json:"competitorCount"`
	MinPrice        float64 `json:"minPrice"`
	AvgPrice        float64 `json:"avgPrice"`
	MaxPrice        float64 `json:"maxPrice"`
	SuggestedPrice  float64 `json:"suggestedPrice"`
	Position        string  `json:"position"`
	MarginAtMin     float64 `json:"marginAtMin"`
	MarginAtAvg     float64 `json:"marginAtAvg"`
	MarginAtMax     float64 `json:"marginAtMax"`
}
