package reconcile

import (
	"encoding/json"
	"regexp"
	"strings"

	"projectadmin/internal/jsonx"
)

// Highlight is a short selling point shown on the project page.
type Highlight struct {
	Icon  string `json:"icon,omitempty"`
	Title string `json:"title"`
	Value string `json:"value,omitempty"`
}

// FAQ is a question and its answer.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Place is a point of interest near the project.
type Place struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Distance string `json:"distance,omitempty"`
}

// Unit is one apartment type offered in the project.
type Unit struct {
	Type      string  `json:"type"`
	Rooms     float64 `json:"rooms,omitempty"`
	AreaSqm   float64 `json:"areaSqm,omitempty"`
	PriceFrom float64 `json:"priceFrom,omitempty"`
}

// FloorPlan links a plan image.
type FloorPlan struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

func (h Highlight) valid() bool { return strings.TrimSpace(h.Title) != "" }
func (f FAQ) valid() bool       { return strings.TrimSpace(f.Question) != "" }
func (p Place) valid() bool     { return strings.TrimSpace(p.Name) != "" }
func (u Unit) valid() bool      { return strings.TrimSpace(u.Type) != "" }
func (f FloorPlan) valid() bool {
	return strings.TrimSpace(f.Name) != "" || strings.TrimSpace(f.ImageURL) != ""
}

var (
	highlightLine = regexp.MustCompile(`^(?:\[([^\]]*)\]\s*)?(.*?)(?:\s*\(([^()]*)\))?$`)
	placeLine     = regexp.MustCompile(`^(?:\[([^\]]*)\]\s*)?(.+?)(?:\s+[-–]\s+(.+))?$`)
)

func lines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ParseHighlightsText reads one highlight per line in the form
// "[icon] title (value)", where icon and value are optional.
func ParseHighlightsText(text string) []Highlight {
	out := make([]Highlight, 0)
	for _, line := range lines(text) {
		m := highlightLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		h := Highlight{
			Icon:  strings.TrimSpace(m[1]),
			Title: strings.TrimSpace(m[2]),
			Value: strings.TrimSpace(m[3]),
		}
		if h.valid() {
			out = append(out, h)
		}
	}
	return out
}

// ParseFAQText reads "question? answer" lines, splitting at the first
// question mark, and "Q: ..." / "A: ..." line pairs.
func ParseFAQText(text string) []FAQ {
	out := make([]FAQ, 0)
	open := -1
	for _, line := range lines(text) {
		switch {
		case hasPrefixFold(line, "q:"):
			out = append(out, FAQ{Question: strings.TrimSpace(line[2:])})
			open = len(out) - 1
		case hasPrefixFold(line, "a:"):
			if open >= 0 {
				out[open].Answer = strings.TrimSpace(line[2:])
			}
			open = -1
		default:
			question, answer, found := strings.Cut(line, "?")
			if found {
				question += "?"
			}
			out = append(out, FAQ{Question: strings.TrimSpace(question), Answer: strings.TrimSpace(answer)})
			open = -1
		}
	}

	kept := out[:0]
	for _, f := range out {
		if f.valid() {
			kept = append(kept, f)
		}
	}
	return kept
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// ParseNeighborhoodText reads one place per line in the form
// "[category] name - distance". The dash needs spaces around it so
// hyphenated names stay whole.
func ParseNeighborhoodText(text string) []Place {
	out := make([]Place, 0)
	for _, line := range lines(text) {
		m := placeLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		p := Place{
			Category: strings.TrimSpace(m[1]),
			Name:     strings.TrimSpace(m[2]),
			Distance: strings.TrimSpace(m[3]),
		}
		if p.valid() {
			out = append(out, p)
		}
	}
	return out
}

// ParseUnitsText reads "type | rooms | area | price" lines. Trailing columns
// may be omitted and unreadable numbers are left at zero.
func ParseUnitsText(text string) []Unit {
	out := make([]Unit, 0)
	for _, line := range lines(text) {
		cols := strings.Split(line, "|")
		u := Unit{Type: strings.TrimSpace(cols[0])}
		if len(cols) > 1 {
			u.Rooms, _ = jsonx.ParseNumber(cols[1])
		}
		if len(cols) > 2 {
			u.AreaSqm, _ = jsonx.ParseNumber(cols[2])
		}
		if len(cols) > 3 {
			u.PriceFrom, _ = jsonx.ParseNumber(cols[3])
		}
		if u.valid() {
			out = append(out, u)
		}
	}
	return out
}

// ParseFloorPlansText reads "name | url" lines. A line holding only a URL
// becomes an unnamed plan.
func ParseFloorPlansText(text string) []FloorPlan {
	out := make([]FloorPlan, 0)
	for _, line := range lines(text) {
		name, url, found := strings.Cut(line, "|")
		fp := FloorPlan{Name: strings.TrimSpace(name), ImageURL: strings.TrimSpace(url)}
		if !found && looksLikeURL(fp.Name) {
			fp = FloorPlan{ImageURL: fp.Name}
		}
		if fp.valid() {
			out = append(out, fp)
		}
	}
	return out
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "/")
}

// splitNames splits free-typed amenity text on newlines and commas.
func splitNames(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == ',' })
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			names = append(names, f)
		}
	}
	return names
}

type looseHighlight struct {
	Icon  jsonx.String `json:"icon"`
	Title jsonx.String `json:"title"`
	Value jsonx.String `json:"value"`
}

type looseFAQ struct {
	Question jsonx.String `json:"question"`
	Answer   jsonx.String `json:"answer"`
}

type loosePlace struct {
	Name     jsonx.String `json:"name"`
	Category jsonx.String `json:"category"`
	Distance jsonx.String `json:"distance"`
}

type looseUnit struct {
	Type      jsonx.String `json:"type"`
	Rooms     jsonx.Number `json:"rooms"`
	AreaSqm   jsonx.Number `json:"areaSqm"`
	PriceFrom jsonx.Number `json:"priceFrom"`
}

type looseFloorPlan struct {
	Name     jsonx.String `json:"name"`
	ImageURL jsonx.String `json:"imageUrl"`
}

// decodeList reads a persisted array element by element. Objects go through
// fromObject; bare strings through fromString. Other elements are skipped.
func decodeList[L any, T any](raw []byte, fromObject func(L) T, fromString func(string) T) []T {
	var elems jsonx.List
	_ = json.Unmarshal(raw, &elems)
	out := make([]T, 0, len(elems))
	for _, elem := range elems {
		switch jsonx.KindOf(elem) {
		case jsonx.KindObject:
			var l L
			if err := json.Unmarshal(elem, &l); err != nil {
				continue
			}
			out = append(out, fromObject(l))
		case jsonx.KindString:
			var s string
			if err := json.Unmarshal(elem, &s); err != nil || fromString == nil {
				continue
			}
			out = append(out, fromString(s))
		}
	}
	return out
}

func decodeHighlights(raw []byte) []Highlight {
	return decodeList(raw,
		func(l looseHighlight) Highlight {
			return Highlight{Icon: string(l.Icon), Title: string(l.Title), Value: string(l.Value)}
		},
		func(s string) Highlight { return Highlight{Title: s} })
}

func decodeFAQs(raw []byte) []FAQ {
	return decodeList(raw,
		func(l looseFAQ) FAQ { return FAQ{Question: string(l.Question), Answer: string(l.Answer)} },
		nil)
}

func decodePlaces(raw []byte) []Place {
	return decodeList(raw,
		func(l loosePlace) Place {
			return Place{Name: string(l.Name), Category: string(l.Category), Distance: string(l.Distance)}
		},
		func(s string) Place { return Place{Name: s} })
}

func decodeUnits(raw []byte) []Unit {
	return decodeList(raw,
		func(l looseUnit) Unit {
			return Unit{Type: string(l.Type), Rooms: float64(l.Rooms), AreaSqm: float64(l.AreaSqm), PriceFrom: float64(l.PriceFrom)}
		},
		func(s string) Unit { return Unit{Type: s} })
}

func decodeFloorPlans(raw []byte) []FloorPlan {
	return decodeList(raw,
		func(l looseFloorPlan) FloorPlan { return FloorPlan{Name: string(l.Name), ImageURL: string(l.ImageURL)} },
		func(s string) FloorPlan { return FloorPlan{ImageURL: s} })
}
