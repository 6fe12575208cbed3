package scheduler

import (
	"github.com/precify/pricing-engine/pkg/calcerr"
	"github.com/precify/pricing-engine/pkg/constants"
	"github.com/precify/pricing-engine/pkg/pricing"
)

// execute runs a task's computation synchronously. It is called on the worker
// goroutine only; emit receives progress checkpoints in [0,1].
func execute(task Task, emit func(float64)) (interface{}, error) {
	switch task.Kind {
	case KindBatch:
		payload, ok := task.Payload.(BatchPayload)
		if !ok {
			return nil, calcerr.Validation("payload", "CALCULATE_BATCH requires a BatchPayload")
		}
		return computeBatch(payload, emit)
	case KindScenarios:
		payload, ok := task.Payload.(ScenariosPayload)
		if !ok {
			return nil, calcerr.Validation("payload", "CALCULATE_SCENARIOS requires a ScenariosPayload")
		}
		return computeScenarios(payload, emit)
	case KindMarketAnalysis:
		payload, ok := task.Payload.(MarketPayload)
		if !ok {
			return nil, calcerr.Validation("payload", "CALCULATE_MARKET_ANALYSIS requires a MarketPayload")
		}
		return computeMarketAnalysis(payload)
	default:
		return nil, calcerr.Validationf("kind", "unknown task kind %q", task.Kind)
	}
}

// computeBatch prices every item, preserving input order. A failing item
// records its error in place rather than sinking the whole batch.
func computeBatch(payload BatchPayload, emit func(float64)) (*BatchResult, error) {
	total := len(payload.Items)
	result := &BatchResult{Items: make([]BatchItemResult, total)}

	for i, item := range payload.Items {
		result.Items[i] = priceItem(item)

		if emit != nil && total > 0 && (i+1)%constants.ProgressCheckpointItems == 0 {
			emit(float64(i+1) / float64(total))
		}
	}
	return result, nil
}

func priceItem(item BatchItem) BatchItemResult {
	var computed *pricing.CalculationResult
	var err error
	if item.SellingPrice != nil {
		computed, err = pricing.CalculateFromPrice(item.Costs, *item.SellingPrice, item.Rates)
	} else {
		computed, err = pricing.CalculatePrice(item.Costs, item.Rates)
	}
	if err != nil {
		return BatchItemResult{Name: item.Name, Error: err.Error()}
	}
	return BatchItemResult{Name: item.Name, Result: computed}
}

// computeScenarios prices the shared cost base under each scenario's rates,
// preserving input order.
func computeScenarios(payload ScenariosPayload, emit func(float64)) (*ScenariosResult, error) {
	total := len(payload.Scenarios)
	result := &ScenariosResult{Items: make([]ScenarioResult, total)}

	for i, scenario := range payload.Scenarios {
		computed, err := pricing.CalculatePrice(payload.Costs, scenario.Rates)
		if err != nil {
			result.Items[i] = ScenarioResult{Name: scenario.Name, Error: err.Error()}
		} else {
			result.Items[i] = ScenarioResult{Name: scenario.Name, Result: computed}
		}

		if emit != nil && total > 0 && (i+1)%constants.ProgressCheckpointItems == 0 {
			emit(float64(i+1) / float64(total))
		}
	}
	return result, nil
}

// computeMarketAnalysis positions the forward-mode price against the observed
// competitor prices and reports the margin achieved at each percentile price.
func computeMarketAnalysis(payload MarketPayload) (*MarketResult, error) {
	if len(payload.CompetitorPrices) == 0 {
		return nil, calcerr.Validation("competitorPrices", "at least one competitor price is required")
	}
	for i, price := range payload.CompetitorPrices {
		if price <= 0 {
			return nil, calcerr.Validationf("competitorPrices", "price at index %d must be greater than zero", i)
		}
	}

	own, err := pricing.CalculatePrice(payload.Costs, payload.Rates)
	if err != nil {
		return nil, err
	}

	min, max := payload.CompetitorPrices[0], payload.CompetitorPrices[0]
	sum := 0.0
	for _, price := range payload.CompetitorPrices {
		if price < min {
			min = price
		}
		if price > max {
			max = price
		}
		sum += price
	}
	avg := sum / float64(len(payload.CompetitorPrices))

	position := PositionWithin
	if own.SellingPrice < min {
		position = PositionBelow
	} else if own.SellingPrice > max {
		position = PositionAbove
	}

	result := &MarketResult{
		CompetitorCount: len(payload.CompetitorPrices),
		MinPrice:        min,
		AvgPrice:        avg,
		MaxPrice:        max,
		SuggestedPrice:  own.SellingPrice,
		Position:        position,
	}

	for _, probe := range []struct {
		price  float64
		target *float64
	}{
		{min, &result.MarginAtMin},
		{avg, &result.MarginAtAvg},
		{max, &result.MarginAtMax},
	} {
		at, err := pricing.CalculateFromPrice(payload.Costs, probe.price, payload.Rates)
		if err != nil {
			return nil, err
		}
		*probe.target = at.Breakdown.RealMarginPercent
	}

	return result, nil
}
