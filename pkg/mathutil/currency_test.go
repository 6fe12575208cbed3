package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number", -1.235, -1.24},
		{"Zero", 0.0, 0.0},
		{"Sub-cent value", 0.001, 0.00},
		{"Repeating decimal", 100.0 / 3, 33.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSignPredicates(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		zero     bool
		positive bool
		negative bool
	}{
		{"Exactly zero", 0.0, true, false, false},
		{"Within tolerance", 0.005, true, false, false},
		{"Within negative tolerance", -0.005, true, false, false},
		{"Clearly positive", 1.50, false, true, false},
		{"Clearly negative", -1.50, false, false, true},
		{"Exactly tolerance", 0.01, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsZero(tt.input); got != tt.zero {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, got, tt.zero)
			}
			if got := IsPositive(tt.input); got != tt.positive {
				t.Errorf("IsPositive(%v) = %v, expected %v", tt.input, got, tt.positive)
			}
			if got := IsNegative(tt.input); got != tt.negative {
				t.Errorf("IsNegative(%v) = %v, expected %v", tt.input, got, tt.negative)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(1.001, 1.002, 0.01) {
		t.Errorf("WithinTolerance(1.001, 1.002, 0.01) = false, expected true")
	}
	if WithinTolerance(1.0, 1.1, 0.01) {
		t.Errorf("WithinTolerance(1.0, 1.1, 0.01) = true, expected false")
	}
}

func TestCalculatePercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		total    float64
		expected float64
	}{
		{"Quarter", 25, 100, 25},
		{"Over one hundred percent", 150, 100, 150},
		{"Zero total", 10, 0, 0},
		{"Fractional", 1, 3, 100.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculatePercentage(tt.value, tt.total)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("CalculatePercentage(%v, %v) = %v, expected %v", tt.value, tt.total, result, tt.expected)
			}
		})
	}
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		percentage float64
		expected   float64
	}{
		{"Ten percent", 200, 10, 20},
		{"Zero percent", 200, 0, 0},
		{"Full value", 200, 100, 200},
		{"Negative percentage", 200, -10, -20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyPercentage(tt.value, tt.percentage)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ApplyPercentage(%v, %v) = %v, expected %v", tt.value, tt.percentage, result, tt.expected)
			}
		})
	}
}
