package amenities

import "strings"

const (
	customPrefix    = "custom:"
	customSeparator = "|"
)

// SelectionID identifies one chosen amenity. It is either a catalog id or a
// self-describing custom entry of the form "custom:<nameHe>|<nameEn>".
type SelectionID string

// IsCustom reports whether id carries the custom prefix.
func IsCustom(id SelectionID) bool {
	return strings.HasPrefix(string(id), customPrefix)
}

// CustomID builds the selection id for a user-entered amenity. nameHe is
// required; nameEn falls back to nameHe. The separator is stripped from both
// names so the id always parses back to the same pair.
func CustomID(nameHe, nameEn string) (SelectionID, bool) {
	nameHe = cleanCustomName(nameHe)
	nameEn = cleanCustomName(nameEn)
	if nameHe == "" {
		return "", false
	}
	if nameEn == "" {
		nameEn = nameHe
	}
	return SelectionID(customPrefix + nameHe + customSeparator + nameEn), true
}

// ParseCustom splits a custom id into its names. ok is false when id is not
// custom. A payload without the separator yields an empty Hebrew name and the
// whole payload as the English name.
func ParseCustom(id SelectionID) (nameHe, nameEn string, ok bool) {
	if !IsCustom(id) {
		return "", "", false
	}
	payload := strings.TrimPrefix(string(id), customPrefix)
	he, en, found := strings.Cut(payload, customSeparator)
	if !found {
		return "", payload, true
	}
	return he, en, true
}

// WellFormed reports whether id matches the custom grammar with a non-empty
// Hebrew name.
func WellFormed(id SelectionID) bool {
	he, _, ok := ParseCustom(id)
	return ok && strings.Contains(string(id), customSeparator) && he != ""
}

func cleanCustomName(name string) string {
	name = strings.ReplaceAll(name, customSeparator, " ")
	return strings.Join(strings.Fields(name), " ")
}

// customIcons is the rotation used for custom entries, indexed by encounter
// order within a single Encode call.
var customIcons = [20]string{
	"star",
	"sparkle",
	"heart",
	"gem",
	"crown",
	"flower",
	"mountain",
	"palmtree",
	"compass",
	"map-pin",
	"camera",
	"coffee",
	"music",
	"book-open",
	"palette",
	"gift",
	"award",
	"flag",
	"lightbulb",
	"check-circle",
}

func customIcon(n int) string {
	return customIcons[n%len(customIcons)]
}
