package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Ordered parse attempts, first match wins. Unit suffixes cover the symbols
// seen on compressor and well-test sheets (°C, %, Kg/cm², 1/64", BBL/D).
var (
	valueWithUnitPattern = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*([A-Za-z°%/²"][A-Za-z°%/²"\d\.]*)$`)
	bareNumberPattern    = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	groupedNumberPattern = regexp.MustCompile(`^(-?\d{1,3}(?:,\d{3})+(?:\.\d+)?)\s*([A-Za-z°%/²"][A-Za-z°%/²"\d\.]*)?$`)
)

// ValueUnit is the parse result for one cell of text.
type ValueUnit struct {
	// Value preserves the textual form of the match (separators stripped for
	// numeric matches, raw trimmed text otherwise).
	Value string
	// Unit is the unit captured from the text itself, "" when none was.
	Unit string
	// Numeric is the parsed value; meaningful only when IsNumeric is true.
	Numeric   float64
	IsNumeric bool
}

// ExtractValueUnit parses a token's raw text into a numeric value and a
// detected unit. It never fails: text with no numeric match is returned
// verbatim as a low-information value with an empty unit.
//
//	"1247BBL"      -> {Value: "1247", Unit: "BBL"}
//	"1,234.5 PSI"  -> {Value: "1234.5", Unit: "PSI"}
//	"95"           -> {Value: "95"}
//	"n/a"          -> {Value: "n/a"}
func ExtractValueUnit(text string) ValueUnit {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ValueUnit{}
	}

	if m := valueWithUnitPattern.FindStringSubmatch(trimmed); m != nil {
		return numericResult(m[1], m[2])
	}
	if bareNumberPattern.MatchString(trimmed) {
		return numericResult(trimmed, "")
	}
	if m := groupedNumberPattern.FindStringSubmatch(trimmed); m != nil {
		return numericResult(strings.ReplaceAll(m[1], ",", ""), m[2])
	}

	return ValueUnit{Value: trimmed}
}

func numericResult(value, unit string) ValueUnit {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return ValueUnit{Value: value, Unit: unit}
	}
	return ValueUnit{Value: value, Unit: unit, Numeric: n, IsNumeric: true}
}
