// Package siunits maps raw measurements to human-readable SI-prefixed
// units. All functions are pure and stateless.
package siunits

import (
	"fmt"
	"math"
)

// prefix associates an SI prefix with the magnitude threshold at which it
// becomes the natural display unit and the factor dividing a raw value into
// that unit.
type prefix struct {
	threshold float64
	symbol    string
	factor    float64
}

// prefixes is ordered from largest to smallest threshold so that the first
// match during a scan is the largest prefix not exceeding a magnitude.
// The micro prefix appears twice: U+03BC (Greek small mu, the SI standard)
// and U+00B5 (the legacy micro sign) so both spellings parse.
var prefixes = []prefix{
	{1e15, "P", 1e-15},
	{1e12, "T", 1e-12},
	{1e9, "G", 1e-9},
	{1e6, "M", 1e-6},
	{1e3, "k", 1e-3},
	{1.0, "", 1.0},
	{1e-3, "m", 1e3},
	{1e-6, "μ", 1e6},
	{1e-6, "µ", 1e6},
	{1e-9, "n", 1e9},
	{1e-12, "p", 1e12},
	{1e-15, "f", 1e15},
}

// prefixScale maps each prefix symbol to its scale threshold, e.g. "k" -> 1e3.
var prefixScale = func() map[string]float64 {
	m := make(map[string]float64, len(prefixes))
	for _, p := range prefixes {
		m[p.symbol] = p.threshold
	}
	return m
}()

// ScaleForSmallest picks the display unit and scale factor for the smallest
// non-zero magnitude in numbers, so that value*factor renders as a number >= 1
// in the returned unit. If numbers is empty or all zero, the base unit and a
// factor of 1.0 are returned.
func ScaleForSmallest(numbers []float64, baseUnit string) (string, float64) {
	smallest := math.Inf(1)
	for _, n := range numbers {
		if n == 0 {
			continue
		}
		if a := math.Abs(n); a < smallest {
			smallest = a
		}
	}
	if math.IsInf(smallest, 1) {
		return baseUnit, 1.0
	}

	for _, p := range prefixes {
		if smallest >= p.threshold {
			return p.symbol + baseUnit, p.factor
		}
	}

	last := prefixes[len(prefixes)-1]
	return last.symbol + baseUnit, last.factor
}

// Scale returns the scale factor of unit relative to baseUnit, e.g.
// Scale("ns", "s") == 1e-9.
func Scale(unit, baseUnit string) (float64, error) {
	if baseUnit == "" {
		return 0, &Error{Kind: EmptyUnit, msg: "base unit must not be empty"}
	}
	if len(unit) < len(baseUnit) || unit[len(unit)-len(baseUnit):] != baseUnit {
		return 0, &Error{Kind: UnitMismatch, msg: fmt.Sprintf("unit %q does not end with base unit %q", unit, baseUnit)}
	}
	pfx := unit[:len(unit)-len(baseUnit)]
	scale, ok := prefixScale[pfx]
	if !ok {
		return 0, &Error{Kind: UnknownPrefix, msg: fmt.Sprintf("unknown SI prefix in unit %q", unit)}
	}
	return scale, nil
}

// UnitBase strips the SI prefix from unit, e.g. UnitBase("ns") == "s".
// A single-character unit is assumed to already be a base unit.
func UnitBase(unit string) (string, error) {
	if unit == "" {
		return "", &Error{Kind: EmptyUnit, msg: "unit must not be empty"}
	}
	runes := []rune(unit)
	if len(runes) == 1 {
		return unit, nil
	}
	pfx := string(runes[0])
	if _, ok := prefixScale[pfx]; ok {
		return string(runes[1:]), nil
	}
	return "", &Error{Kind: UnknownPrefix, msg: fmt.Sprintf("unknown SI prefix in unit %q", unit)}
}

// ScaleToUnit returns the factor converting values in currentUnit to
// targetUnit, e.g. ScaleToUnit("s", "ns", "s") == 1e9. All three units must
// decompose to the same SI base unit.
func ScaleToUnit(baseUnit, currentUnit, targetUnit string) (float64, error) {
	if baseUnit == "" || currentUnit == "" || targetUnit == "" {
		return 0, &Error{Kind: EmptyUnit, msg: "base, current and target units must not be empty"}
	}

	baseOf, err := UnitBase(baseUnit)
	if err != nil {
		return 0, err
	}
	currentOf, err := UnitBase(currentUnit)
	if err != nil {
		return 0, err
	}
	targetOf, err := UnitBase(targetUnit)
	if err != nil {
		return 0, err
	}
	if baseOf != currentOf || baseOf != targetOf {
		return 0, &Error{Kind: UnitMismatch, msg: fmt.Sprintf(
			"units are not compatible: base %q, current %q, target %q", baseUnit, currentUnit, targetUnit)}
	}

	currentScale, err := Scale(currentUnit, baseOf)
	if err != nil {
		return 0, err
	}
	targetScale, err := Scale(targetUnit, baseOf)
	if err != nil {
		return 0, err
	}
	return targetScale / currentScale, nil
}
