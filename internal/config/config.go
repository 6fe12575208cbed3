// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"

	"github.com/precify/pricing-engine/pkg/pricing"
	"github.com/precify/pricing-engine/pkg/tax"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for a pricing run.
type Configuration struct {
	Defaults  Defaults
	Catalog   []Product
	Scenarios []ScenarioConfig
	BreakEven *BreakEvenConfig
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// Defaults holds the charge rates and tax configuration shared by catalog
// items unless overridden per item.
type Defaults struct {
	MarginPercent  float64
	CardFeePercent float64
	Taxes          TaxesConfig
}

// TaxesConfig configures the tax side of the percentage stack. When origin
// and destination states are set the ICMS component is resolved from the
// regional rate matrix; otherwise the explicit ICMS value is used as-is.
type TaxesConfig struct {
	OriginState      string
	DestinationState string
	ICMS             float64
	IPI              float64
	PIS              float64
	COFINS           float64
	ISSQN            float64
	Simples          float64
}

// Product is one catalog entry. A non-nil SellingPrice switches the item to
// reverse/manual mode; nil percentage fields inherit the defaults.
type Product struct {
	Name            string
	Cost            float64
	OtherCosts      float64
	Shipping        float64
	IncludeShipping bool
	SellingPrice    *float64
	MarginPercent   *float64
	CardFeePercent  *float64
	TaxPercent      *float64
}

// ScenarioConfig is a named rate variation applied to a shared cost base.
type ScenarioConfig struct {
	Name           string
	MarginPercent  float64
	TaxPercent     float64
	CardFeePercent float64
}

// BreakEvenConfig enables the break-even analysis stage of a run.
type BreakEvenConfig struct {
	MonthlyFixedCosts     float64
	AverageDailySales     float64
	ProjectedMonthlyUnits float64
	InitialInvestment     *float64
	TargetMonthlyProfit   *float64
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from an
// in-memory reader, e.g. an uploaded file.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// ResolveTaxRate composes the aggregate tax percentage for the run. When
// origin/destination states are configured, the ICMS component comes from the
// regional rate matrix; explicit component values are summed on top.
func (c *Configuration) ResolveTaxRate() (float64, *tax.Summary, error) {
	components := tax.Components{
		ICMS:    c.Defaults.Taxes.ICMS,
		IPI:     c.Defaults.Taxes.IPI,
		PIS:     c.Defaults.Taxes.PIS,
		COFINS:  c.Defaults.Taxes.COFINS,
		ISSQN:   c.Defaults.Taxes.ISSQN,
		Simples: c.Defaults.Taxes.Simples,
	}

	if c.Defaults.Taxes.OriginState != "" && c.Defaults.Taxes.DestinationState != "" {
		resolved, err := tax.ResolveICMS(c.Defaults.Taxes.OriginState, c.Defaults.Taxes.DestinationState)
		if err != nil {
			return 0, nil, err
		}
		components.ICMS = resolved.Rate
	}

	summary, err := tax.AggregateTaxes(components)
	if err != nil {
		return 0, nil, err
	}
	return summary.TotalRate, summary, nil
}

// RatesFor resolves the effective charge rates for a product, applying
// per-item overrides on top of the defaults and the given tax rate.
func (c *Configuration) RatesFor(product Product, taxRate float64) pricing.ChargeRates {
	rates := pricing.ChargeRates{
		MarginPercent:  c.Defaults.MarginPercent,
		TaxPercent:     taxRate,
		CardFeePercent: c.Defaults.CardFeePercent,
	}
	if product.MarginPercent != nil {
		rates.MarginPercent = *product.MarginPercent
	}
	if product.TaxPercent != nil {
		rates.TaxPercent = *product.TaxPercent
	}
	if product.CardFeePercent != nil {
		rates.CardFeePercent = *product.CardFeePercent
	}
	return rates
}

// CostsFor maps a catalog product to the solver's cost inputs.
func (c *Configuration) CostsFor(product Product) pricing.CostInputs {
	return pricing.CostInputs{
		Cost:            product.Cost,
		OtherCosts:      product.OtherCosts,
		Shipping:        product.Shipping,
		IncludeShipping: product.IncludeShipping,
	}
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Hard errors surface later from the solvers; warnings flag
// legal but suspicious inputs.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(c.Catalog) == 0 {
		warnings = append(warnings, "catalog is empty; nothing to compute")
	}

	taxRate, _, err := c.ResolveTaxRate()
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("tax configuration invalid: %v", err))
		taxRate = 0
	}

	seen := make(map[string]bool)
	for _, product := range c.Catalog {
		if seen[product.Name] {
			warnings = append(warnings, fmt.Sprintf("duplicate product name '%s'", product.Name))
		}
		seen[product.Name] = true

		if product.Cost == 0 && product.OtherCosts == 0 {
			warnings = append(warnings, fmt.Sprintf("product '%s' has zero cost", product.Name))
		}

		rates := c.RatesFor(product, taxRate)
		if stack := rates.Sum(); stack >= 80 && stack < 100 {
			warnings = append(warnings, fmt.Sprintf("product '%s' has a rate stack of %.1f%%, leaving little room over cost", product.Name, stack))
		}

		if product.SellingPrice != nil {
			totalCost := c.CostsFor(product).TotalCost()
			if *product.SellingPrice < totalCost {
				warnings = append(warnings, fmt.Sprintf("product '%s' manual price %.2f is below its total cost %.2f", product.Name, *product.SellingPrice, totalCost))
			}
		}
	}

	scenarioNames := make(map[string]bool)
	for _, scenario := range c.Scenarios {
		if scenarioNames[scenario.Name] {
			warnings = append(warnings, fmt.Sprintf("duplicate scenario name '%s'", scenario.Name))
		}
		scenarioNames[scenario.Name] = true
	}

	if c.BreakEven != nil && c.BreakEven.MonthlyFixedCosts == 0 {
		warnings = append(warnings, "break-even configured with zero monthly fixed costs")
	}

	return warnings
}
