package tax

import (
	"testing"

	"github.com/precify/pricing-engine/pkg/calcerr"
)

func TestAggregateTaxes(t *testing.T) {
	summary, err := AggregateTaxes(Components{ICMS: 18, PIS: 1.65, COFINS: 7.6})
	if err != nil {
		t.Fatalf("AggregateTaxes() error = %v", err)
	}

	if summary.TotalRate != 27.25 {
		t.Errorf("TotalRate = %.2f, expected 27.25", summary.TotalRate)
	}

	// Every component key must be present, including omitted zero components.
	for _, key := range []string{"icms", "ipi", "pis", "cofins", "issqn", "simples"} {
		if _, ok := summary.Breakdown[key]; !ok {
			t.Errorf("breakdown is missing key %q", key)
		}
	}
	if summary.Breakdown["ipi"] != 0 {
		t.Errorf("breakdown[ipi] = %.2f, expected 0 for an omitted component", summary.Breakdown["ipi"])
	}
}

func TestAggregateTaxesEmpty(t *testing.T) {
	summary, err := AggregateTaxes(Components{})
	if err != nil {
		t.Fatalf("AggregateTaxes() error = %v", err)
	}
	if summary.TotalRate != 0 {
		t.Errorf("TotalRate = %.2f, expected 0", summary.TotalRate)
	}
	if len(summary.Breakdown) != 6 {
		t.Errorf("breakdown has %d keys, expected all 6", len(summary.Breakdown))
	}
}

func TestAggregateTaxesRejectsNegative(t *testing.T) {
	if _, err := AggregateTaxes(Components{COFINS: -1}); !calcerr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
