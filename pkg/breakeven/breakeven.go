// Package breakeven computes break-even, ROI and payback figures from the
// unit economics produced by the price solver, plus fixed-cost and
// sales-velocity inputs. The economics are linear per unit, so every target
// is solved in closed form; there is no iterative search.
package breakeven

import (
	"encoding/json"
	"math"

	"github.com/precify/pricing-engine/pkg/calcerr"
	"github.com/precify/pricing-engine/pkg/constants"
	"github.com/precify/pricing-engine/pkg/pricing"
)

// Alert severities.
const (
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// Alert is a threshold-triggered advisory attached to a result.
type Alert struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Input holds the parameters of a break-even analysis. Unit economics come
// from Costs and Rates, or from a precomputed solver result in Precomputed.
// Optional parameters use pointers so absence stays representable.
type Input struct {
	Costs       pricing.CostInputs         `json:"costs"`
	Rates       pricing.ChargeRates        `json:"rates"`
	Precomputed *pricing.CalculationResult `json:"precomputed,omitempty"`

	MonthlyFixedCosts     float64  `json:"monthlyFixedCosts"`
	AverageDailySales     float64  `json:"averageDailySales,omitempty"`
	ProjectedMonthlyUnits float64  `json:"projectedMonthlyUnits,omitempty"`
	InitialInvestment     *float64 `json:"initialInvestment,omitempty"`
	TargetMonthlyProfit   *float64 `json:"targetMonthlyProfit,omitempty"`
}

// Result is the output contract of the engine. BreakEvenUnits is +Inf when
// the unit profit cannot close the fixed-cost gap at any volume; optional
// figures are nil when their inputs were not supplied.
type Result struct {
	BreakEvenUnits   float64  `json:"-"`
	BreakEvenRevenue float64  `json:"breakEvenRevenue"`
	BreakEvenDays    *float64 `json:"breakEvenDays,omitempty"`

	UnitProfit   float64 `json:"unitProfit"`
	UnitCost     float64 `json:"unitCost"`
	ProfitMargin float64 `json:"profitMargin"`

	ROI           *float64 `json:"roi,omitempty"`
	PaybackPeriod *float64 `json:"paybackPeriod,omitempty"`

	UnitsForTarget *float64 `json:"unitsForTarget,omitempty"`
	DaysForTarget  *float64 `json:"daysForTarget,omitempty"`

	Recommendations []string `json:"recommendations"`
	Alerts          []Alert  `json:"alerts"`
}

// Reachable reports whether any sales volume reaches break-even.
func (r *Result) Reachable() bool {
	return !math.IsInf(r.BreakEvenUnits, 1)
}

// ComputeBreakEven runs the analysis. Unit economics come from the price
// solver unless a precomputed result is supplied.
func ComputeBreakEven(input Input) (*Result, error) {
	if input.MonthlyFixedCosts < 0 {
		return nil, calcerr.Validation("monthlyFixedCosts", "cannot be negative")
	}
	if input.AverageDailySales < 0 {
		return nil, calcerr.Validation("averageDailySales", "cannot be negative")
	}
	if input.ProjectedMonthlyUnits < 0 {
		return nil, calcerr.Validation("projectedMonthlyUnits", "cannot be negative")
	}
	if input.InitialInvestment != nil && *input.InitialInvestment <= 0 {
		return nil, calcerr.Validation("initialInvestment", "must be greater than zero when supplied")
	}
	if input.TargetMonthlyProfit != nil && *input.TargetMonthlyProfit <= 0 {
		return nil, calcerr.Validation("targetMonthlyProfit", "must be greater than zero when supplied")
	}

	unit := input.Precomputed
	if unit == nil {
		computed, err := pricing.CalculatePrice(input.Costs, input.Rates)
		if err != nil {
			return nil, err
		}
		unit = computed
	}

	result := &Result{
		UnitProfit:      unit.Profit,
		UnitCost:        unit.Breakdown.TotalCost,
		ProfitMargin:    unit.Breakdown.RealMarginPercent,
		Recommendations: []string{},
		Alerts:          []Alert{},
	}

	if unit.Profit <= 0 {
		result.BreakEvenUnits = math.Inf(1)
		result.BreakEvenRevenue = math.Inf(1)
		result.Alerts = append(result.Alerts, Alert{
			Severity: SeverityDanger,
			Message:  "unit profit is zero or negative; no sales volume closes the fixed-cost gap",
		})
		result.Recommendations = append(result.Recommendations,
			"raise the sale price or reduce per-unit costs until unit profit is positive")
		return result, nil
	}

	units := math.Ceil(input.MonthlyFixedCosts / unit.Profit)
	result.BreakEvenUnits = units
	result.BreakEvenRevenue = units * unit.SellingPrice

	if input.AverageDailySales > 0 {
		days := units / input.AverageDailySales
		result.BreakEvenDays = &days
	}

	if input.InitialInvestment != nil {
		monthlyNet := unit.Profit*input.ProjectedMonthlyUnits - input.MonthlyFixedCosts
		roi := monthlyNet / *input.InitialInvestment * constants.PercentageMultiplier
		result.ROI = &roi
		if monthlyNet > 0 {
			payback := *input.InitialInvestment / monthlyNet
			result.PaybackPeriod = &payback
		} else {
			result.Alerts = append(result.Alerts, Alert{
				Severity: SeverityDanger,
				Message:  "projected monthly volume does not cover fixed costs; investment never pays back",
			})
		}
	}

	if input.TargetMonthlyProfit != nil {
		// Fixed costs must be covered before the target profit accrues.
		targetUnits := math.Ceil((*input.TargetMonthlyProfit + input.MonthlyFixedCosts) / unit.Profit)
		result.UnitsForTarget = &targetUnits
		if input.AverageDailySales > 0 {
			targetDays := targetUnits / input.AverageDailySales
			result.DaysForTarget = &targetDays
		}
	}

	advise(result, input)
	return result, nil
}

// advise applies the deterministic threshold rules that populate
// recommendations and alerts.
func advise(result *Result, input Input) {
	if result.ProfitMargin < constants.HealthyMarginPercent {
		result.Alerts = append(result.Alerts, Alert{
			Severity: SeverityWarning,
			Message:  "realized margin is below the healthy 10% threshold",
		})
		result.Recommendations = append(result.Recommendations,
			"review percentage charges; small fee reductions materially improve thin margins")
	}

	if result.BreakEvenDays != nil && *result.BreakEvenDays > constants.SlowBreakEvenDays {
		result.Alerts = append(result.Alerts, Alert{
			Severity: SeverityDanger,
			Message:  "break-even exceeds 90 days at the stated sales velocity",
		})
		result.Recommendations = append(result.Recommendations,
			"increase sales velocity or reduce monthly fixed costs to shorten the break-even horizon")
	}

	if result.ProfitMargin >= constants.ComfortableMarginPercent {
		result.Recommendations = append(result.Recommendations,
			"margin leaves room for volume pricing or promotional discounts")
	}

	if input.AverageDailySales > 0 && input.ProjectedMonthlyUnits > 0 {
		capacity := input.AverageDailySales * constants.DaysPerMonth
		if input.ProjectedMonthlyUnits > capacity {
			result.Alerts = append(result.Alerts, Alert{
				Severity: SeverityWarning,
				Message:  "projected monthly units exceed the volume implied by average daily sales",
			})
		}
	}
}

// MarshalJSON encodes break-even units and revenue as null when break-even
// is unreachable, so the non-finite sentinel never reaches the wire.
func (r Result) MarshalJSON() ([]byte, error) {
	type shadow Result
	aux := struct {
		shadow
		BreakEvenUnits   *float64 `json:"breakEvenUnits"`
		BreakEvenRevenue *float64 `json:"breakEvenRevenue"`
	}{shadow: shadow(r)}
	if r.Reachable() {
		aux.BreakEvenUnits = &r.BreakEvenUnits
		aux.BreakEvenRevenue = &r.BreakEvenRevenue
	}
	return json.Marshal(aux)
}
