package model

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Units use a dot-separated factor form with caret exponents, e.g.
// "m^-3" or "T.m^-1". Factors are ordered lexicographically so that any
// two spellings of the same unit canonicalize to the same string.

var unitFactorPattern = regexp.MustCompile(`^[A-Za-zΩμ°%']+(\^-?[0-9]+)?$`)

// dimensionless spellings all canonicalize to the empty string.
var dimensionlessUnits = map[string]struct{}{
	"":              {},
	"1":             {},
	"-":             {},
	"none":          {},
	"dimensionless": {},
}

// CanonicalUnit normalizes a unit string to its canonical form. It splits
// the unit into dot-separated factors, merges repeated symbols by summing
// exponents, drops zero exponents and reassembles the factors in
// lexicographic order.
func CanonicalUnit(unit string) (string, error) {
	unit = strings.TrimSpace(unit)
	if _, ok := dimensionlessUnits[strings.ToLower(unit)]; ok {
		return "", nil
	}
	exponents := make(map[string]int)
	for _, factor := range strings.Split(unit, ".") {
		factor = strings.TrimSpace(factor)
		if !unitFactorPattern.MatchString(factor) {
			return "", fmt.Errorf("malformed unit factor %q in %q", factor, unit)
		}
		symbol, exp := factor, 1
		if i := strings.IndexByte(factor, '^'); i >= 0 {
			symbol = factor[:i]
			n, err := strconv.Atoi(factor[i+1:])
			if err != nil {
				return "", fmt.Errorf("malformed exponent in unit factor %q", factor)
			}
			exp = n
		}
		exponents[symbol] += exp
	}
	factors := make([]string, 0, len(exponents))
	for symbol, exp := range exponents {
		switch {
		case exp == 0:
		case exp == 1:
			factors = append(factors, symbol)
		default:
			factors = append(factors, symbol+"^"+strconv.Itoa(exp))
		}
	}
	sort.Strings(factors)
	return strings.Join(factors, "."), nil
}
