package tax

import (
	"github.com/precify/pricing-engine/pkg/calcerr"
)

// Components holds the individual tax components of a configuration, each as
// a percentage. Omitted components default to zero.
type Components struct {
	ICMS    float64 `json:"icms"`
	IPI     float64 `json:"ipi"`
	PIS     float64 `json:"pis"`
	COFINS  float64 `json:"cofins"`
	ISSQN   float64 `json:"issqn"`
	Simples float64 `json:"simples"`
}

// Summary is the aggregate of a multi-component tax configuration. Breakdown
// always carries every component key, including zero-valued ones; callers
// rely on key presence.
type Summary struct {
	TotalRate float64            `json:"totalRate"`
	Breakdown map[string]float64 `json:"breakdown"`
}

// AggregateTaxes sums the tax components into a single rate. Negative
// components are a validation error.
func AggregateTaxes(c Components) (*Summary, error) {
	parts := []struct {
		name  string
		value float64
	}{
		{"icms", c.ICMS},
		{"ipi", c.IPI},
		{"pis", c.PIS},
		{"cofins", c.COFINS},
		{"issqn", c.ISSQN},
		{"simples", c.Simples},
	}

	breakdown := make(map[string]float64, len(parts))
	total := 0.0
	for _, part := range parts {
		if part.value < 0 {
			return nil, calcerr.Validationf(part.name, "tax component cannot be negative, got %.4f", part.value)
		}
		breakdown[part.name] = part.value
		total += part.value
	}

	return &Summary{TotalRate: total, Breakdown: breakdown}, nil
}
