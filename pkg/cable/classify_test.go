package cable

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func classify(description, group string) string {
	return Classify(description, group, Extract(description))
}

func TestClassify_Rules(t *testing.T) {
	tests := []struct {
		name        string
		description string
		group       string
		want        string
	}{
		{"400G AOC", "400G AOC 7M QSFP-DD", "", Category400GAOC},
		{"DR4 excluded from 400G AOC", "400G DR4 AOC TRANSCEIVER", "", Category400GPSM},
		{"400G pigtail", "400G PIGTAIL MPO 3M", "", Category400GPSM},
		{"DR4 transceiver without speed", "DR4 TRANSCEIVER OSFP", "Trnscvr", Category400GPSM},
		{"200G Y cable", "200G Y-CABLE AOC 3M", "", Category200GYAOC},
		{"100G AOC by speed", "QSFP28-100G-AOC-3M", "AOCCable", Category100GAOC},
		{"100G AOC by connector", "QSFP28 AOC 10M", "", Category100GAOC},
		{"100G PSM4", "100G PSM4 QSFP28 5M", "PSM4 Cable", Category100GPSM4},
		{"single mode uniboot", "SINGLE MODE LC UNIBOOT 3M", "FibrJmpers", CategorySMLC},
		{"SM/LC", "SM/LC DUPLEX 2M", "", CategorySMLC},
		{"MTP jumper", "MTP FIBER JUMPER 10M", "", CategoryMTPFiber},
		{"CAT6", "CAT6 COPPER 2FT PATCHCORD", "PatchCords", CategoryCopper},
		{"copper patchcords", "COPPER PATCHCORDS 1M", "", CategoryCopper},
		{"fiber by group", "JUMPER LC-LC 2M", "FibrJmpers", CategoryFiberJumpers},
		{"fiber by keyword", "LC-LC FIBRE 5M", "", CategoryFiberJumpers},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.description, tt.group))
		})
	}
}

func TestClassify_ItemGroupFallback(t *testing.T) {
	tests := []struct {
		group string
		want  string
	}{
		{"AOCCable", CategoryAOC},
		{"PatchCords", CategoryCopper},
		{"PSM4 Cable", CategoryPSM4},
		{"NetCable", CategoryNetwork},
		{"Trnscvr", CategoryTransceiver},
		{"Misc", CategoryOther},
		{"", CategoryOther},
		{"aoccable", CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			assert.Equal(t, tt.want, classify("PART 123", tt.group))
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// Matches both the 100G AOC and the 100G PSM4 rules.
	assert.Equal(t, Category100GAOC, classify("100G AOC PSM4 QSFP28", ""))
	// Matches both the Copper and Fiber Jumpers rules.
	assert.Equal(t, CategoryCopper, classify("CAT6 FIBER MEDIA CONVERTER", "FibrJmpers"))
	// A rule match always beats the item-group fallback.
	assert.Equal(t, Category400GAOC, classify("400G AOC 3M", "Trnscvr"))
}

func TestRules_Order(t *testing.T) {
	var got []string
	for _, r := range Rules() {
		got = append(got, r.Category)
	}
	assert.Equal(t, []string{
		Category400GAOC,
		Category400GPSM,
		Category200GYAOC,
		Category100GAOC,
		Category100GPSM4,
		CategorySMLC,
		CategoryMTPFiber,
		CategoryCopper,
		CategoryFiberJumpers,
	}, got)
}

func TestCategories_ClosedSet(t *testing.T) {
	categories := Categories()
	assert.Len(t, categories, 14)
	assert.Equal(t, CategoryOther, categories[len(categories)-1])

	known := make(map[string]bool)
	for _, c := range categories {
		known[c] = true
	}
	for _, description := range []string{
		"400G AOC 7M QSFP-DD", "PART 123", "CAT6 COPPER 2FT PATCHCORD", "SINGLE MODE LC", "",
	} {
		for _, group := range []string{"", "NetCable", "PSM4 Cable", "other"} {
			assert.True(t, known[classify(description, group)])
		}
	}
}
