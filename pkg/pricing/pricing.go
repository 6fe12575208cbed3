// Package pricing implements the price solver: forward mode computes a sale
// price from a cost structure and percentage-stacked charges, reverse mode
// computes the achieved margin for a manually chosen price.
//
// Margin, tax and card-fee percentages are all defined against the final sale
// price, not against cost, so the forward price is obtained algebraically:
//
//	sellingPrice = totalCost / (1 - (margin + tax + cardFee)/100)
//
// guarded by the < 100% constraint. Results keep full float precision;
// rounding to currency precision happens only at the presentation boundary.
package pricing

import (
	"github.com/precify/pricing-engine/pkg/calcerr"
	"github.com/precify/pricing-engine/pkg/constants"
	"github.com/precify/pricing-engine/pkg/mathutil"
)

// CostInputs holds the per-unit cost structure of a product. Values are
// immutable per calculation.
type CostInputs struct {
	Cost            float64 `json:"cost"`
	OtherCosts      float64 `json:"otherCosts"`
	Shipping        float64 `json:"shipping"`
	IncludeShipping bool    `json:"includeShipping"`
}

// TotalCost returns the cost base the price is solved against.
func (c CostInputs) TotalCost() float64 {
	total := c.Cost + c.OtherCosts
	if c.IncludeShipping {
		total += c.Shipping
	}
	return total
}

// ChargeRates holds the percentage charges applied to the final sale price.
// Percentages are human-readable numbers, e.g. 30 for 30%.
type ChargeRates struct {
	MarginPercent  float64 `json:"marginPercent"`
	TaxPercent     float64 `json:"taxPercent"`
	CardFeePercent float64 `json:"cardFeePercent"`
}

// Sum returns the combined percentage stack.
func (r ChargeRates) Sum() float64 {
	return r.MarginPercent + r.TaxPercent + r.CardFeePercent
}

// PriceBreakdown itemizes a solved price. The shape is identical for forward
// and reverse mode so downstream consumers are mode-agnostic.
type PriceBreakdown struct {
	CostValue         float64 `json:"costValue"`
	OtherCostsValue   float64 `json:"otherCostsValue"`
	ShippingValue     float64 `json:"shippingValue"`
	TotalCost         float64 `json:"totalCost"`
	MarginAmount      float64 `json:"marginAmount"`
	TaxAmount         float64 `json:"taxAmount"`
	CardFeeAmount     float64 `json:"cardFeeAmount"`
	RealMarginPercent float64 `json:"realMarginPercent"`
}

// CalculationResult is the output contract of the solver. Created per
// invocation and never mutated afterwards.
type CalculationResult struct {
	SellingPrice    float64        `json:"sellingPrice"`
	Profit          float64        `json:"profit"`
	IsHealthyProfit bool           `json:"isHealthyProfit"`
	Breakdown       PriceBreakdown `json:"breakdown"`
}

func validateCosts(costs CostInputs) error {
	if costs.Cost < 0 {
		return calcerr.Validation("cost", "cannot be negative")
	}
	if costs.OtherCosts < 0 {
		return calcerr.Validation("otherCosts", "cannot be negative")
	}
	if costs.Shipping < 0 {
		return calcerr.Validation("shipping", "cannot be negative")
	}
	return nil
}

func validateRates(rates ChargeRates) error {
	if rates.MarginPercent < 0 {
		return calcerr.Validation("marginPercent", "cannot be negative")
	}
	if rates.TaxPercent < 0 {
		return calcerr.Validation("taxPercent", "cannot be negative")
	}
	if rates.CardFeePercent < 0 {
		return calcerr.Validation("cardFeePercent", "cannot be negative")
	}
	return nil
}

// CalculatePrice solves forward mode: given costs and the desired percentage
// stack, compute the sale price and its breakdown. A stack at or above 100%
// is a domain error; the solver never clamps and never returns a non-finite
// price.
func CalculatePrice(costs CostInputs, rates ChargeRates) (*CalculationResult, error) {
	if err := validateCosts(costs); err != nil {
		return nil, err
	}
	if err := validateRates(rates); err != nil {
		return nil, err
	}

	stack := rates.Sum()
	if stack >= constants.PercentageMultiplier {
		return nil, calcerr.Domain("unsustainable rate stack: margin, tax and card fee total 100% or more of the sale price")
	}

	totalCost := costs.TotalCost()
	sellingPrice := totalCost / (1 - stack/constants.PercentageMultiplier)

	return buildResult(costs, rates, sellingPrice), nil
}

// CalculateFromPrice solves reverse/manual mode: given an explicit sale price,
// derive the margin actually achieved after tax and card fees. The margin
// component of rates is ignored; tax and card fee percentages still apply to
// the given price.
func CalculateFromPrice(costs CostInputs, sellingPrice float64, rates ChargeRates) (*CalculationResult, error) {
	if err := validateCosts(costs); err != nil {
		return nil, err
	}
	if err := validateRates(rates); err != nil {
		return nil, err
	}
	if sellingPrice <= 0 {
		return nil, calcerr.Validation("sellingPrice", "must be greater than zero")
	}

	return buildResult(costs, rates, sellingPrice), nil
}

// buildResult derives the breakdown shared by both modes. Margin is whatever
// remains of the price after cost, tax and card fee, so the real margin is
// recomputed from actual profit rather than echoed from the requested rate.
func buildResult(costs CostInputs, rates ChargeRates, sellingPrice float64) *CalculationResult {
	totalCost := costs.TotalCost()
	taxAmount := mathutil.ApplyPercentage(sellingPrice, rates.TaxPercent)
	cardFeeAmount := mathutil.ApplyPercentage(sellingPrice, rates.CardFeePercent)

	profit := sellingPrice - totalCost - taxAmount - cardFeeAmount
	realMargin := mathutil.CalculatePercentage(profit, sellingPrice)

	shippingValue := costs.Shipping

	return &CalculationResult{
		SellingPrice:    sellingPrice,
		Profit:          profit,
		IsHealthyProfit: realMargin >= constants.HealthyMarginPercent,
		Breakdown: PriceBreakdown{
			CostValue:         costs.Cost,
			OtherCostsValue:   costs.OtherCosts,
			ShippingValue:     shippingValue,
			TotalCost:         totalCost,
			MarginAmount:      profit,
			TaxAmount:         taxAmount,
			CardFeeAmount:     cardFeeAmount,
			RealMarginPercent: realMargin,
		},
	}
}

// RoundResult returns a copy of the result with all monetary fields rounded
// to currency precision. Intended for the presentation boundary only.
func RoundResult(r *CalculationResult) *CalculationResult {
	if r == nil {
		return nil
	}
	rounded := *r
	rounded.SellingPrice = mathutil.Round(r.SellingPrice)
	rounded.Profit = mathutil.Round(r.Profit)
	rounded.Breakdown = PriceBreakdown{
		CostValue:         mathutil.Round(r.Breakdown.CostValue),
		OtherCostsValue:   mathutil.Round(r.Breakdown.OtherCostsValue),
		ShippingValue:     mathutil.Round(r.Breakdown.ShippingValue),
		TotalCost:         mathutil.Round(r.Breakdown.TotalCost),
		MarginAmount:      mathutil.Round(r.Breakdown.MarginAmount),
		TaxAmount:         mathutil.Round(r.Breakdown.TaxAmount),
		CardFeeAmount:     mathutil.Round(r.Breakdown.CardFeeAmount),
		RealMarginPercent: mathutil.Round(r.Breakdown.RealMarginPercent),
	}
	return &rounded
}
