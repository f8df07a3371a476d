package cable

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Attributes holds the structured facts extracted from a free-text item description.
// An empty string means the attribute could not be determined.
type Attributes struct {
	Length        decimal.NullDecimal
	LengthUnit    string
	Speed         string
	CableType     string
	ConnectorType string
}

// LengthDisplay renders the length as "<value><unit>" (e.g. "2.5M"), or "" when unknown.
func (a Attributes) LengthDisplay() string {
	if !a.Length.Valid || a.LengthUnit == "" {
		return ""
	}
	return a.Length.Decimal.String() + a.LengthUnit
}

// Length units.
const (
	UnitMeter = "M"
	UnitFeet  = "FT"
)

// Length patterns are tried in order; the first one that matches wins.
var lengthPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[-\s](\d+(?:\.\d+)?)\s*(M|FT)[-\s]`),
	regexp.MustCompile(`(?i)-(\d+(?:\.\d+)?)(M|FT)-`),
	regexp.MustCompile(`(?i)[-\s](\d+(?:\.\d+)?)\s*(M|FT)$`),
}

var speedPattern = regexp.MustCompile(`(?i)(100G|200G|400G|800G)`)

type keyword struct {
	label   string
	pattern *regexp.Regexp
}

// cableTypes is evaluated in declaration order.
var cableTypes = []keyword{
	{"AOC", regexp.MustCompile(`(?i)\bAOC\b`)},
	{"PSM4", regexp.MustCompile(`(?i)\bPSM4?\b`)},
	{"DR4", regexp.MustCompile(`(?i)\bDR4\+?\b`)},
	{"DAC", regexp.MustCompile(`(?i)\bDAC\b`)},
	{"Copper", regexp.MustCompile(`(?i)\b(CAT6|COPPER)\b`)},
}

// connectors is evaluated in declaration order. QSFP-DD must stay ahead of QSFP28.
var connectors = []keyword{
	{"QSFP-DD", regexp.MustCompile(`(?i)QSFP-DD`)},
	{"QSFP28", regexp.MustCompile(`(?i)QSFP28`)},
	{"OSFP", regexp.MustCompile(`(?i)\bOSFP\b`)},
	{"MPO", regexp.MustCompile(`(?i)\bMPO\b`)},
	{"RJ45", regexp.MustCompile(`(?i)\bRJ45\b`)},
}

// Extract derives all cable attributes from a description. It never fails: anything it
// cannot recognise is left empty.
func Extract(description string) Attributes {
	length, unit := ExtractLength(description)
	return Attributes{
		Length:        length,
		LengthUnit:    unit,
		Speed:         ExtractSpeed(description),
		CableType:     ExtractCableType(description),
		ConnectorType: ExtractConnector(description),
	}
}

// ExtractLength returns the cable length and its unit ("M" or "FT").
func ExtractLength(description string) (decimal.NullDecimal, string) {
	for _, p := range lengthPatterns {
		m := p.FindStringSubmatch(description)
		if m == nil {
			continue
		}
		value, err := decimal.NewFromString(m[1])
		if err != nil {
			// The pattern only admits decimal literals.
			continue
		}
		return decimal.NewNullDecimal(value), strings.ToUpper(m[2])
	}
	return decimal.NullDecimal{}, ""
}

// ExtractSpeed returns the first speed token (100G, 200G, 400G or 800G).
func ExtractSpeed(description string) string {
	m := speedPattern.FindStringSubmatch(description)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// ExtractCableType returns the highest-priority physical cable type keyword.
func ExtractCableType(description string) string {
	return firstKeyword(cableTypes, description)
}

// ExtractConnector returns the highest-priority connector keyword.
func ExtractConnector(description string) string {
	return firstKeyword(connectors, description)
}

func firstKeyword(keywords []keyword, description string) string {
	for _, k := range keywords {
		if k.pattern.MatchString(description) {
			return k.label
		}
	}
	return ""
}
