package siunits

import (
	"errors"
	"testing"
)

func TestScaleForSmallest(t *testing.T) {
	tests := []struct {
		name     string
		numbers  []float64
		baseUnit string
		wantUnit string
		wantFact float64
	}{
		{"all zero", []float64{0, 0, 0}, "s", "s", 1.0},
		{"empty", nil, "s", "s", 1.0},
		{"unscaled", []float64{1.5, 2.0}, "s", "s", 1.0},
		{"milli", []float64{0.002, 0.5}, "s", "ms", 1e3},
		{"micro", []float64{3e-6, 1.0}, "s", "μs", 1e6},
		{"nano", []float64{5e-9}, "s", "ns", 1e9},
		{"pico", []float64{2e-12}, "s", "ps", 1e12},
		{"femto", []float64{4e-15}, "s", "fs", 1e15},
		{"below femto clamps", []float64{1e-18}, "s", "fs", 1e15},
		{"kilo", []float64{2500}, "s", "ks", 1e-3},
		{"mega", []float64{3.2e6}, "s", "Ms", 1e-6},
		{"giga", []float64{7e9}, "s", "Gs", 1e-9},
		{"peta", []float64{2e15}, "s", "Ps", 1e-15},
		{"negative magnitudes", []float64{-0.004, 10}, "s", "ms", 1e3},
		{"zeros ignored", []float64{0, 5e-9, 0}, "s", "ns", 1e9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, fact := ScaleForSmallest(tt.numbers, tt.baseUnit)
			if unit != tt.wantUnit || fact != tt.wantFact {
				t.Errorf("ScaleForSmallest(%v, %q) = (%q, %g), want (%q, %g)",
					tt.numbers, tt.baseUnit, unit, fact, tt.wantUnit, tt.wantFact)
			}
		})
	}
}

func TestScaleForSmallestRendersAtLeastOne(t *testing.T) {
	numbers := []float64{0.00042, 3.0}
	unit, fact := ScaleForSmallest(numbers, "s")
	if unit != "μs" {
		t.Fatalf("unit = %q, want μs", unit)
	}
	if scaled := 0.00042 * fact; scaled < 1 {
		t.Errorf("smallest value scaled to %g, want >= 1", scaled)
	}
}

func TestScaleToUnit(t *testing.T) {
	tests := []struct {
		base, current, target string
		want                  float64
	}{
		{"s", "ns", "s", 1e9},
		{"s", "s", "ns", 1e-9},
		{"s", "ms", "μs", 1e-3},
		{"s", "s", "s", 1.0},
		{"s", "ks", "s", 1e-3},
	}
	for _, tt := range tests {
		got, err := ScaleToUnit(tt.base, tt.current, tt.target)
		if err != nil {
			t.Errorf("ScaleToUnit(%q, %q, %q) error: %v", tt.base, tt.current, tt.target, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ScaleToUnit(%q, %q, %q) = %g, want %g", tt.base, tt.current, tt.target, got, tt.want)
		}
	}
}

func TestScaleToUnitRoundTrip(t *testing.T) {
	forward, err := ScaleToUnit("s", "ns", "s")
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	back, err := ScaleToUnit("s", "s", "ns")
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if forward*back != 1.0 {
		t.Errorf("round trip product = %g, want 1.0", forward*back)
	}
}

func TestScaleToUnitErrors(t *testing.T) {
	tests := []struct {
		name                  string
		base, current, target string
		wantKind              ErrorKind
	}{
		{"empty base", "", "ns", "s", EmptyUnit},
		{"empty current", "s", "", "s", EmptyUnit},
		{"empty target", "s", "ns", "", EmptyUnit},
		{"unknown current prefix", "s", "xs", "s", UnknownPrefix},
		{"mismatched base", "s", "nm", "s", UnitMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ScaleToUnit(tt.base, tt.current, tt.target)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var serr *Error
			if !errors.As(err, &serr) {
				t.Fatalf("error type = %T, want *Error", err)
			}
			if serr.Kind != tt.wantKind {
				t.Errorf("error kind = %d, want %d", serr.Kind, tt.wantKind)
			}
		})
	}
}

func TestScale(t *testing.T) {
	got, err := Scale("ns", "s")
	if err != nil {
		t.Fatalf("Scale: %v", err)
	}
	if got != 1e-9 {
		t.Errorf("Scale(ns, s) = %g, want 1e-9", got)
	}

	if _, err := Scale("qs", "s"); err == nil {
		t.Error("Scale(qs, s): expected unknown prefix error")
	}
	if _, err := Scale("ns", ""); err == nil {
		t.Error("Scale with empty base: expected error")
	}
	if _, err := Scale("m", "s"); err == nil {
		t.Error("Scale(m, s): expected mismatch error")
	}
}

func TestUnitBase(t *testing.T) {
	tests := []struct {
		unit string
		want string
	}{
		{"ns", "s"},
		{"s", "s"},
		{"μs", "s"},
		{"µs", "s"},
		{"ks", "s"},
	}
	for _, tt := range tests {
		got, err := UnitBase(tt.unit)
		if err != nil {
			t.Errorf("UnitBase(%q) error: %v", tt.unit, err)
			continue
		}
		if got != tt.want {
			t.Errorf("UnitBase(%q) = %q, want %q", tt.unit, got, tt.want)
		}
	}

	if _, err := UnitBase(""); err == nil {
		t.Error("UnitBase(\"\"): expected error")
	}
	if _, err := UnitBase("xs"); err == nil {
		t.Error("UnitBase(xs): expected unknown prefix error")
	}
}
