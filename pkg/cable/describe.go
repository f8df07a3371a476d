package cable

import "strings"

const maxShortDescription = 40

// Describe builds a compact label such as "3M - 100G - AOC" from the known
// attributes. With none known it falls back to the first three dash-separated
// parts of the item name, capped at 40 runes.
func Describe(itemName string, attrs Attributes) string {
	var parts []string
	if d := attrs.LengthDisplay(); d != "" {
		parts = append(parts, d)
	}
	if attrs.Speed != "" {
		parts = append(parts, attrs.Speed)
	}
	if attrs.CableType != "" {
		parts = append(parts, attrs.CableType)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " - ")
	}

	segments := strings.Split(itemName, "-")
	if len(segments) > 3 {
		segments = segments[:3]
	}
	short := []rune(strings.Join(segments, "-"))
	if len(short) > maxShortDescription {
		return string(short[:maxShortDescription]) + "..."
	}
	return string(short)
}
