// Package output provides utilities for formatting and displaying pricing results.
package output

import (
	"fmt"
	"strings"

	"github.com/precify/pricing-engine/internal/scheduler"
	"github.com/precify/pricing-engine/pkg/breakeven"
	"github.com/precify/pricing-engine/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table of
// catalog pricing results.
func PrettyFormat(result *scheduler.BatchResult) {
	p := message.NewPrinter(language.English)
	fmt.Printf("--- Catalog pricing ---\n")
	fmt.Printf("Product              | Price        | Profit       | Margin   | Notes\n")
	fmt.Printf("_______              | _____        | ______       | ______   | _____\n")
	for _, item := range result.Items {
		if item.Error != "" {
			fmt.Printf("%-20s | %-12s | %-12s | %-8s | %s\n", item.Name, "-", "-", "-", item.Error)
			continue
		}
		notes := ""
		if !item.Result.IsHealthyProfit {
			notes = "margin below healthy threshold"
		}
		_, _ = p.Printf("%-20s | %-12s | %-12s | %-8s | %s\n",
			item.Name,
			format.Currency(item.Result.SellingPrice),
			format.Currency(item.Result.Profit),
			format.Percent(item.Result.Breakdown.RealMarginPercent),
			notes,
		)
	}
}

// PrettyScenarios outputs the scenario comparison table.
func PrettyScenarios(result *scheduler.ScenariosResult) {
	fmt.Printf("\n--- Scenario comparison ---\n")
	fmt.Printf("Scenario             | Price        | Profit       | Margin\n")
	fmt.Printf("________             | _____        | ______       | ______\n")
	for _, item := range result.Items {
		if item.Error != "" {
			fmt.Printf("%-20s | %-12s | %-12s | %s\n", item.Name, "-", "-", item.Error)
			continue
		}
		fmt.Printf("%-20s | %-12s | %-12s | %s\n",
			item.Name,
			format.Currency(item.Result.SellingPrice),
			format.Currency(item.Result.Profit),
			format.Percent(item.Result.Breakdown.RealMarginPercent),
		)
	}
}

// PrettyBreakEven outputs the break-even analysis summary.
func PrettyBreakEven(result *breakeven.Result) {
	fmt.Printf("\n--- Break-even analysis ---\n")
	if !result.Reachable() {
		fmt.Printf("Break-even: unreachable (unit profit %.2f)\n", result.UnitProfit)
	} else {
		fmt.Printf("Break-even units:   %.0f\n", result.BreakEvenUnits)
		fmt.Printf("Break-even revenue: %s\n", format.Currency(result.BreakEvenRevenue))
		if result.BreakEvenDays != nil {
			fmt.Printf("Break-even days:    %.1f\n", *result.BreakEvenDays)
		}
	}
	fmt.Printf("Unit profit: %s (margin %s)\n", format.Currency(result.UnitProfit), format.Percent(result.ProfitMargin))
	if result.ROI != nil {
		fmt.Printf("Monthly ROI: %s\n", format.Percent(*result.ROI))
	}
	if result.PaybackPeriod != nil {
		fmt.Printf("Payback:     %.1f months\n", *result.PaybackPeriod)
	}
	if result.UnitsForTarget != nil {
		fmt.Printf("Units for target profit: %.0f\n", *result.UnitsForTarget)
	}
	for _, alert := range result.Alerts {
		fmt.Printf("[%s] %s\n", alert.Severity, alert.Message)
	}
	for _, rec := range result.Recommendations {
		fmt.Printf("recommendation: %s\n", rec)
	}
}

// CsvFormat outputs catalog results in comma-separated value format.
func CsvFormat(result *scheduler.BatchResult) {
	fmt.Print(CsvString(result))
}

// CsvString renders catalog results as CSV. Monetary values are rounded to
// currency precision here, at the presentation boundary.
func CsvString(result *scheduler.BatchResult) string {
	var builder strings.Builder
	builder.WriteString(`"product","sellingPrice","profit","totalCost","taxAmount","cardFeeAmount","realMarginPercent","healthy","error"`)
	builder.WriteString("\n")
	for _, item := range result.Items {
		if item.Error != "" {
			builder.WriteString(fmt.Sprintf(`"%s","","","","","","","","%s"`, item.Name, item.Error))
			builder.WriteString("\n")
			continue
		}
		b := item.Result.Breakdown
		builder.WriteString(fmt.Sprintf(`"%s","%.2f","%.2f","%.2f","%.2f","%.2f","%.2f","%t",""`,
			item.Name,
			item.Result.SellingPrice,
			item.Result.Profit,
			b.TotalCost,
			b.TaxAmount,
			b.CardFeeAmount,
			b.RealMarginPercent,
			item.Result.IsHealthyProfit,
		))
		builder.WriteString("\n")
	}
	return builder.String()
}
