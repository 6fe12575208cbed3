package scheduler

import (
	"context"
	"testing"

	"github.com/precify/pricing-engine/pkg/calcerr"
	"github.com/precify/pricing-engine/pkg/mathutil"
	"github.com/precify/pricing-engine/pkg/pricing"
	"go.uber.org/zap"
)

func TestMarketAnalysis(t *testing.T) {
	s := New(zap.NewNop(), Config{})
	defer s.Close()

	payload := MarketPayload{
		Costs:            pricing.CostInputs{Cost: 60},
		Rates:            pricing.ChargeRates{MarginPercent: 25, TaxPercent: 10, CardFeePercent: 5},
		CompetitorPrices: []float64{90, 100, 110},
	}

	data, err := s.Dispatch(Task{ID: "market", Kind: KindMarketAnalysis, Payload: payload}, nil).Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	result := data.(*MarketResult)

	if result.CompetitorCount != 3 {
		t.Errorf("CompetitorCount = %d, expected 3", result.CompetitorCount)
	}
	if result.MinPrice != 90 || result.MaxPrice != 110 {
		t.Errorf("price range = [%.2f, %.2f], expected [90, 110]", result.MinPrice, result.MaxPrice)
	}
	if !mathutil.WithinTolerance(result.AvgPrice, 100, 1e-9) {
		t.Errorf("AvgPrice = %.2f, expected 100", result.AvgPrice)
	}

	// cost 60, stack 40% -> suggested price 100, inside the competitor range.
	if !mathutil.WithinTolerance(result.SuggestedPrice, 100, 1e-9) {
		t.Errorf("SuggestedPrice = %.2f, expected 100", result.SuggestedPrice)
	}
	if result.Position != PositionWithin {
		t.Errorf("Position = %q, expected %q", result.Position, PositionWithin)
	}

	// At the average competitor price the requested margin is achieved exactly.
	if !mathutil.WithinTolerance(result.MarginAtAvg, 25, 1e-9) {
		t.Errorf("MarginAtAvg = %.2f, expected 25", result.MarginAtAvg)
	}
	if result.MarginAtMin >= result.MarginAtMax {
		t.Errorf("margin must grow with price: atMin %.2f, atMax %.2f", result.MarginAtMin, result.MarginAtMax)
	}
}

func TestMarketAnalysisPositions(t *testing.T) {
	tests := []struct {
		name        string
		competitors []float64
		expected    string
	}{
		{"Above the range", []float64{50, 60}, PositionAbove},
		{"Below the range", []float64{200, 300}, PositionBelow},
		{"Inside the range", []float64{80, 120}, PositionWithin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// cost 60, stack 40% -> own price 100.
			result, err := computeMarketAnalysis(MarketPayload{
				Costs:            pricing.CostInputs{Cost: 60},
				Rates:            pricing.ChargeRates{MarginPercent: 25, TaxPercent: 10, CardFeePercent: 5},
				CompetitorPrices: tt.competitors,
			})
			if err != nil {
				t.Fatalf("computeMarketAnalysis() error = %v", err)
			}
			if result.Position != tt.expected {
				t.Errorf("Position = %q, expected %q", result.Position, tt.expected)
			}
		})
	}
}

func TestMarketAnalysisValidation(t *testing.T) {
	tests := []struct {
		name        string
		competitors []float64
	}{
		{"No competitors", nil},
		{"Non-positive price", []float64{100, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := computeMarketAnalysis(MarketPayload{
				Costs:            pricing.CostInputs{Cost: 60},
				Rates:            pricing.ChargeRates{MarginPercent: 25},
				CompetitorPrices: tt.competitors,
			})
			if !calcerr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestComputeBatchManualMode(t *testing.T) {
	price := 150.0
	result, err := computeBatch(BatchPayload{Items: []BatchItem{
		{Name: "manual", Costs: pricing.CostInputs{Cost: 100}, SellingPrice: &price},
	}}, nil)
	if err != nil {
		t.Fatalf("computeBatch() error = %v", err)
	}

	item := result.Items[0]
	if item.Error != "" {
		t.Fatalf("manual item failed: %s", item.Error)
	}
	if item.Result.SellingPrice != 150 {
		t.Errorf("SellingPrice = %.2f, expected the manual price 150", item.Result.SellingPrice)
	}
	if !mathutil.WithinTolerance(item.Result.Breakdown.RealMarginPercent, 100.0/3, 1e-9) {
		t.Errorf("RealMarginPercent = %.4f, expected %.4f", item.Result.Breakdown.RealMarginPercent, 100.0/3)
	}
}
