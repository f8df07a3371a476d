package cable

import "strings"

// Category labels. The set is closed: Classify never returns anything else.
const (
	Category400GAOC      = "400G AOC"
	Category400GPSM      = "400G PSM"
	Category200GYAOC     = "200G Y AOC"
	Category100GAOC      = "100G AOC"
	Category100GPSM4     = "100G PSM4"
	CategorySMLC         = "SMLC"
	CategoryMTPFiber     = "MTP Fiber"
	CategoryCopper       = "Copper"
	CategoryFiberJumpers = "Fiber Jumpers"
	CategoryAOC          = "AOC"
	CategoryPSM4         = "PSM4"
	CategoryNetwork      = "Network Cable"
	CategoryTransceiver  = "Transceiver"
	CategoryOther        = "Other"
)

// Subject is what a classification rule looks at.
type Subject struct {
	// Upper is the upper-cased description.
	Upper      string
	ItemGroup  string
	Attributes Attributes
}

func (s Subject) has(token string) bool {
	return strings.Contains(s.Upper, token)
}

func (s Subject) hasAny(tokens ...string) bool {
	for _, t := range tokens {
		if s.has(t) {
			return true
		}
	}
	return false
}

// Rule guards one category. Rules are evaluated in order and the first match wins.
type Rule struct {
	Category string
	Match    func(Subject) bool
}

var rules = []Rule{
	{Category400GAOC, func(s Subject) bool {
		// DR4 parts are transceivers even when the description also says AOC.
		return s.has("400G") && s.has("AOC") && !s.has("DR4")
	}},
	{Category400GPSM, func(s Subject) bool {
		return s.hasAny("DR4", "400G") && s.hasAny("TRANSCEIVER", "PIGTAIL")
	}},
	{Category200GYAOC, func(s Subject) bool {
		return s.has("200G") && s.has("Y") && s.has("AOC")
	}},
	{Category100GAOC, func(s Subject) bool {
		return s.hasAny("100G", "QSFP28") && s.has("AOC") && !s.has("400G")
	}},
	{Category100GPSM4, func(s Subject) bool {
		return s.has("PSM4") && s.hasAny("100G", "QSFP28")
	}},
	{CategorySMLC, func(s Subject) bool {
		return s.hasAny("SINGLE MODE", "SM/LC", "SINGLE-MODE") && s.hasAny("UNIBOOT", "LC")
	}},
	{CategoryMTPFiber, func(s Subject) bool {
		return s.has("MTP") && s.hasAny("JUMPER", "FIBRE", "FIBER")
	}},
	{CategoryCopper, func(s Subject) bool {
		return s.has("CAT6") || (s.has("COPPER") && s.has("PATCHCORDS"))
	}},
	{CategoryFiberJumpers, func(s Subject) bool {
		return s.ItemGroup == "FibrJmpers" || s.hasAny("FIBER", "FIBRE")
	}},
}

type groupMapping struct {
	group    string
	category string
}

// groupFallback applies only when no rule matched. Item groups are matched exactly.
var groupFallback = []groupMapping{
	{"AOCCable", CategoryAOC},
	{"PatchCords", CategoryCopper},
	{"PSM4 Cable", CategoryPSM4},
	{"NetCable", CategoryNetwork},
	{"Trnscvr", CategoryTransceiver},
}

// Rules returns a copy of the ordered rule table.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Categories returns every label Classify can produce, rules first, then the item-group
// fallbacks, then Other.
func Categories() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, r := range rules {
		add(r.Category)
	}
	for _, g := range groupFallback {
		add(g.category)
	}
	add(CategoryOther)
	return out
}

// Classify assigns a category from the description, the source item group and the
// already-extracted attributes.
func Classify(description, itemGroup string, attrs Attributes) string {
	s := Subject{
		Upper:      strings.ToUpper(description),
		ItemGroup:  itemGroup,
		Attributes: attrs,
	}
	for _, r := range rules {
		if r.Match(s) {
			return r.Category
		}
	}
	for _, g := range groupFallback {
		if itemGroup == g.group {
			return g.category
		}
	}
	return CategoryOther
}
