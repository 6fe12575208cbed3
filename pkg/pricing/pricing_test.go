package pricing

import (
	"math"
	"testing"

	"github.com/precify/pricing-engine/pkg/calcerr"
	"github.com/precify/pricing-engine/pkg/constants"
	"github.com/precify/pricing-engine/pkg/mathutil"
)

func TestCalculatePriceForward(t *testing.T) {
	tests := []struct {
		name          string
		costs         CostInputs
		rates         ChargeRates
		expectedPrice float64
	}{
		{
			name:          "Margin only",
			costs:         CostInputs{Cost: 100},
			rates:         ChargeRates{MarginPercent: 20},
			expectedPrice: 125.0, // 100 / (1 - 0.20)
		},
		{
			name:          "Full stack",
			costs:         CostInputs{Cost: 50, OtherCosts: 10},
			rates:         ChargeRates{MarginPercent: 30, TaxPercent: 18, CardFeePercent: 4},
			expectedPrice: 125.0, // 60 / (1 - 0.52)
		},
		{
			name:          "Shipping included",
			costs:         CostInputs{Cost: 80, Shipping: 20, IncludeShipping: true},
			rates:         ChargeRates{MarginPercent: 50},
			expectedPrice: 200.0, // 100 / 0.5
		},
		{
			name:          "Shipping excluded",
			costs:         CostInputs{Cost: 80, Shipping: 20},
			rates:         ChargeRates{MarginPercent: 50},
			expectedPrice: 160.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CalculatePrice(tt.costs, tt.rates)
			if err != nil {
				t.Fatalf("CalculatePrice() error = %v", err)
			}

			if !mathutil.WithinTolerance(result.SellingPrice, tt.expectedPrice, constants.CurrencyTolerance) {
				t.Errorf("SellingPrice = %.4f, expected %.4f", result.SellingPrice, tt.expectedPrice)
			}

			// Tax and card fee are percentages of price, not cost.
			expectedTax := result.SellingPrice * tt.rates.TaxPercent / 100
			if !mathutil.WithinTolerance(result.Breakdown.TaxAmount, expectedTax, 1e-9) {
				t.Errorf("TaxAmount = %.4f, expected %.4f", result.Breakdown.TaxAmount, expectedTax)
			}

			// The identity profit = price - totalCost - tax - cardFee must hold.
			expectedProfit := result.SellingPrice - result.Breakdown.TotalCost - result.Breakdown.TaxAmount - result.Breakdown.CardFeeAmount
			if !mathutil.WithinTolerance(result.Profit, expectedProfit, 1e-9) {
				t.Errorf("Profit = %.4f, expected %.4f", result.Profit, expectedProfit)
			}
		})
	}
}

func TestZeroRateIdentity(t *testing.T) {
	costs := []float64{0, 1, 99.99, 1234.56}
	for _, cost := range costs {
		result, err := CalculatePrice(CostInputs{Cost: cost}, ChargeRates{})
		if err != nil {
			t.Fatalf("CalculatePrice(cost=%.2f) error = %v", cost, err)
		}
		if result.SellingPrice != cost {
			t.Errorf("SellingPrice = %v, expected exactly %v", result.SellingPrice, cost)
		}
		if result.Profit != 0 {
			t.Errorf("Profit = %v, expected exactly 0", result.Profit)
		}
		if result.IsHealthyProfit {
			t.Error("IsHealthyProfit = true, expected false at zero margin")
		}
	}
}

func TestRoundTripConsistency(t *testing.T) {
	tests := []struct {
		name  string
		costs CostInputs
		rates ChargeRates
	}{
		{"Margin only", CostInputs{Cost: 100}, ChargeRates{MarginPercent: 25}},
		{"Full stack", CostInputs{Cost: 42.5, OtherCosts: 7.5}, ChargeRates{MarginPercent: 30, TaxPercent: 12, CardFeePercent: 3.5}},
		{"Thin margin", CostInputs{Cost: 10}, ChargeRates{MarginPercent: 2, TaxPercent: 18, CardFeePercent: 4}},
		{"With shipping", CostInputs{Cost: 100, Shipping: 15, IncludeShipping: true}, ChargeRates{MarginPercent: 40, TaxPercent: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forward, err := CalculatePrice(tt.costs, tt.rates)
			if err != nil {
				t.Fatalf("forward mode error = %v", err)
			}

			reverse, err := CalculateFromPrice(tt.costs, forward.SellingPrice, tt.rates)
			if err != nil {
				t.Fatalf("reverse mode error = %v", err)
			}

			if !mathutil.WithinTolerance(reverse.Breakdown.RealMarginPercent, tt.rates.MarginPercent, 1e-9) {
				t.Errorf("round-trip RealMarginPercent = %.6f, expected %.6f",
					reverse.Breakdown.RealMarginPercent, tt.rates.MarginPercent)
			}
			if !mathutil.WithinTolerance(reverse.Profit, forward.Profit, 1e-9) {
				t.Errorf("round-trip Profit = %.6f, expected %.6f", reverse.Profit, forward.Profit)
			}
		})
	}
}

func TestShippingInclusionToggle(t *testing.T) {
	base := CostInputs{Cost: 100, Shipping: 10}
	rates := ChargeRates{MarginPercent: 20}

	excluded, err := CalculatePrice(base, rates)
	if err != nil {
		t.Fatalf("excluded error = %v", err)
	}

	base.IncludeShipping = true
	included, err := CalculatePrice(base, rates)
	if err != nil {
		t.Fatalf("included error = %v", err)
	}

	if diff := included.Breakdown.TotalCost - excluded.Breakdown.TotalCost; !mathutil.WithinTolerance(diff, 10, 1e-9) {
		t.Errorf("TotalCost difference = %.4f, expected exactly the shipping value 10", diff)
	}
	if included.SellingPrice <= excluded.SellingPrice {
		t.Errorf("including shipping must increase the price: %.4f vs %.4f",
			included.SellingPrice, excluded.SellingPrice)
	}
}

func TestUnsustainableStackRejection(t *testing.T) {
	tests := []struct {
		name  string
		rates ChargeRates
	}{
		{"Exactly 100", ChargeRates{MarginPercent: 50, TaxPercent: 30, CardFeePercent: 20}},
		{"Above 100", ChargeRates{MarginPercent: 90, TaxPercent: 40}},
		{"Margin alone at 100", ChargeRates{MarginPercent: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CalculatePrice(CostInputs{Cost: 100}, tt.rates)
			if err == nil {
				t.Fatalf("expected domain error, got price %.4f", result.SellingPrice)
			}
			if !calcerr.IsDomain(err) {
				t.Errorf("expected a domain error, got %T: %v", err, err)
			}
			if result != nil {
				t.Error("expected nil result on domain error")
			}
		})
	}
}

func TestForwardNeverReturnsNonFinite(t *testing.T) {
	result, err := CalculatePrice(CostInputs{Cost: 100}, ChargeRates{MarginPercent: 99.999})
	if err != nil {
		t.Fatalf("stack below 100 must solve, got %v", err)
	}
	if math.IsInf(result.SellingPrice, 0) || math.IsNaN(result.SellingPrice) {
		t.Errorf("SellingPrice = %v, expected a finite value", result.SellingPrice)
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		costs CostInputs
		rates ChargeRates
	}{
		{"Negative cost", CostInputs{Cost: -1}, ChargeRates{}},
		{"Negative other costs", CostInputs{OtherCosts: -5}, ChargeRates{}},
		{"Negative shipping", CostInputs{Shipping: -0.01}, ChargeRates{}},
		{"Negative margin", CostInputs{Cost: 10}, ChargeRates{MarginPercent: -10}},
		{"Negative tax", CostInputs{Cost: 10}, ChargeRates{TaxPercent: -1}},
		{"Negative card fee", CostInputs{Cost: 10}, ChargeRates{CardFeePercent: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CalculatePrice(tt.costs, tt.rates); !calcerr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCalculateFromPrice(t *testing.T) {
	tests := []struct {
		name           string
		costs          CostInputs
		price          float64
		rates          ChargeRates
		expectedMargin float64
		healthy        bool
	}{
		{
			name:           "Healthy manual price",
			costs:          CostInputs{Cost: 60},
			price:          100,
			rates:          ChargeRates{TaxPercent: 10, CardFeePercent: 5},
			expectedMargin: 25.0, // (100 - 60 - 10 - 5) / 100
			healthy:        true,
		},
		{
			name:           "Price below cost yields negative margin",
			costs:          CostInputs{Cost: 120},
			price:          100,
			rates:          ChargeRates{},
			expectedMargin: -20.0,
			healthy:        false,
		},
		{
			name:           "Exactly at healthy threshold",
			costs:          CostInputs{Cost: 90},
			price:          100,
			rates:          ChargeRates{},
			expectedMargin: 10.0,
			healthy:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CalculateFromPrice(tt.costs, tt.price, tt.rates)
			if err != nil {
				t.Fatalf("CalculateFromPrice() error = %v", err)
			}
			if !mathutil.WithinTolerance(result.Breakdown.RealMarginPercent, tt.expectedMargin, 1e-9) {
				t.Errorf("RealMarginPercent = %.4f, expected %.4f", result.Breakdown.RealMarginPercent, tt.expectedMargin)
			}
			if result.IsHealthyProfit != tt.healthy {
				t.Errorf("IsHealthyProfit = %t, expected %t", result.IsHealthyProfit, tt.healthy)
			}
		})
	}
}

func TestCalculateFromPriceRejectsNonPositivePrice(t *testing.T) {
	for _, price := range []float64{0, -10} {
		if _, err := CalculateFromPrice(CostInputs{Cost: 10}, price, ChargeRates{}); !calcerr.IsValidation(err) {
			t.Errorf("price %.2f: expected validation error, got %v", price, err)
		}
	}
}

func TestRoundResult(t *testing.T) {
	result, err := CalculatePrice(CostInputs{Cost: 10}, ChargeRates{MarginPercent: 33.33, TaxPercent: 7.77})
	if err != nil {
		t.Fatalf("CalculatePrice() error = %v", err)
	}

	rounded := RoundResult(result)
	if rounded.SellingPrice != mathutil.Round(result.SellingPrice) {
		t.Errorf("rounded SellingPrice = %v, expected %v", rounded.SellingPrice, mathutil.Round(result.SellingPrice))
	}
	// The original must stay untouched; rounding is presentation-only.
	if rounded.SellingPrice == result.SellingPrice && rounded.Breakdown.TaxAmount == result.Breakdown.TaxAmount {
		recomputed, _ := CalculatePrice(CostInputs{Cost: 10}, ChargeRates{MarginPercent: 33.33, TaxPercent: 7.77})
		if result.SellingPrice != recomputed.SellingPrice {
			t.Error("original result was mutated by RoundResult")
		}
	}
}
