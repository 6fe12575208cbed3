// Package tax resolves Brazilian ICMS rates for origin/destination state pairs
// and aggregates multi-component tax configurations into a single rate.
//
// The region membership and internal rate tables are static reference data:
// loaded once at init, never mutated at runtime.
package tax

import (
	"fmt"
	"strings"

	"github.com/precify/pricing-engine/pkg/calcerr"
	"github.com/precify/pricing-engine/pkg/constants"
)

// Region identifies one of the five Brazilian macro-regions.
type Region string

const (
	RegionNorte       Region = "Norte"
	RegionNordeste    Region = "Nordeste"
	RegionCentroOeste Region = "Centro-Oeste"
	RegionSudeste     Region = "Sudeste"
	RegionSul         Region = "Sul"
)

// stateRegions maps each federative unit to its macro-region.
var stateRegions = map[string]Region{
	"AC": RegionNorte, "AP": RegionNorte, "AM": RegionNorte, "PA": RegionNorte,
	"RO": RegionNorte, "RR": RegionNorte, "TO": RegionNorte,

	"AL": RegionNordeste, "BA": RegionNordeste, "CE": RegionNordeste,
	"MA": RegionNordeste, "PB": RegionNordeste, "PE": RegionNordeste,
	"PI": RegionNordeste, "RN": RegionNordeste, "SE": RegionNordeste,

	"DF": RegionCentroOeste, "GO": RegionCentroOeste,
	"MT": RegionCentroOeste, "MS": RegionCentroOeste,

	"ES": RegionSudeste, "MG": RegionSudeste, "RJ": RegionSudeste, "SP": RegionSudeste,

	"PR": RegionSul, "RS": RegionSul, "SC": RegionSul,
}

// internalRates holds the ICMS rate applied to operations inside each state.
var internalRates = map[string]float64{
	"AC": 19.0, "AL": 19.0, "AP": 18.0, "AM": 20.0, "BA": 20.5, "CE": 20.0,
	"DF": 20.0, "ES": 17.0, "GO": 19.0, "MA": 22.0, "MT": 17.0, "MS": 17.0,
	"MG": 18.0, "PA": 19.0, "PB": 20.0, "PR": 19.5, "PE": 20.5, "PI": 21.0,
	"RJ": 22.0, "RN": 20.0, "RS": 17.0, "RO": 19.5, "RR": 20.0, "SC": 17.0,
	"SE": 19.0, "SP": 18.0, "TO": 20.0,
}

// developedRegions are the origins subject to the preferential interstate rate
// when shipping into an underdeveloped region.
var developedRegions = map[Region]bool{
	RegionSudeste: true,
	RegionSul:     true,
}

// underdevelopedRegions are the destinations that attract the preferential
// interstate rate. Espírito Santo belongs to Sudeste but is treated as an
// underdeveloped destination, which is handled as an explicit exception.
var underdevelopedRegions = map[Region]bool{
	RegionNorte:       true,
	RegionNordeste:    true,
	RegionCentroOeste: true,
}

// espiritoSanto is the single-member exception inside the developed Sudeste region.
const espiritoSanto = "ES"

// ICMSResult describes the resolved ICMS rate for an origin/destination pair.
// InternalRate always reflects the destination's internal rate so that
// downstream differential-tax computations have the right base.
type ICMSResult struct {
	Rate            float64 `json:"rate"`
	InternalRate    float64 `json:"internalRate"`
	IsInterstate    bool    `json:"isInterstate"`
	RuleDescription string  `json:"ruleDescription"`
}

// ResolveICMS resolves the applicable ICMS rate for an operation from the
// origin state to the destination state. State codes are two-letter federative
// unit codes, case-insensitive. Unknown codes are a validation error.
func ResolveICMS(origin, destination string) (*ICMSResult, error) {
	origin = strings.ToUpper(strings.TrimSpace(origin))
	destination = strings.ToUpper(strings.TrimSpace(destination))

	originRegion, ok := stateRegions[origin]
	if !ok {
		return nil, calcerr.Validationf("origin", "unknown state code %q", origin)
	}
	destRegion, ok := stateRegions[destination]
	if !ok {
		return nil, calcerr.Validationf("destination", "unknown state code %q", destination)
	}

	if origin == destination {
		rate := internalRates[origin]
		return &ICMSResult{
			Rate:            rate,
			InternalRate:    rate,
			IsInterstate:    false,
			RuleDescription: fmt.Sprintf("internal operation within %s", origin),
		}, nil
	}

	destInternal := internalRates[destination]

	if developedRegions[originRegion] && origin != espiritoSanto {
		if underdevelopedRegions[destRegion] || destination == espiritoSanto {
			return &ICMSResult{
				Rate:            constants.PreferentialInterstateRate,
				InternalRate:    destInternal,
				IsInterstate:    true,
				RuleDescription: fmt.Sprintf("interstate %s (%s) to %s (%s), preferential rate", origin, originRegion, destination, destRegion),
			}, nil
		}
	}

	return &ICMSResult{
		Rate:            constants.DefaultInterstateRate,
		InternalRate:    destInternal,
		IsInterstate:    true,
		RuleDescription: fmt.Sprintf("interstate %s (%s) to %s (%s), default rate", origin, originRegion, destination, destRegion),
	}, nil
}

// InternalRate returns the internal ICMS rate for a single state.
func InternalRate(state string) (float64, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	rate, ok := internalRates[state]
	if !ok {
		return 0, calcerr.Validationf("state", "unknown state code %q", state)
	}
	return rate, nil
}

// States returns the known federative unit codes.
func States() []string {
	out := make([]string, 0, len(stateRegions))
	for uf := range stateRegions {
		out = append(out, uf)
	}
	return out
}
