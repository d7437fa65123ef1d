// Package paymentplans normalizes payment-plan data persisted in several
// historical shapes into one structured multi-plan model, and back.
//
// Persisted values carry no version tag. The shape is inferred by trying each
// parser in this order, first match wins:
//
//  1. absent or null
//  2. plain string (free text)
//  3. object with "name" and no "milestones"/"milestone" key (named free text)
//  4. array whose first element has "milestones" (structured plans)
//  5. array whose first element has "milestone" or "percentage" (flat milestone list)
//
// Anything else is ShapeUnknown.
package paymentplans

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"projectadmin/internal/jsonx"
)

// DefaultPlanName names the single plan synthesized from a flat milestone list.
const DefaultPlanName = "Payment Plan"

// ErrShapeMismatch is returned by a parser that does not recognize its input.
var ErrShapeMismatch = errors.New("payment plan shape mismatch")

// Milestone is one percentage-weighted installment.
type Milestone struct {
	Title          string  `json:"title"`
	TitleHe        string  `json:"titleHe,omitempty"`
	Percentage     float64 `json:"percentage"`
	DueDate        string  `json:"dueDate,omitempty"`
	IsPostHandover bool    `json:"isPostHandover,omitempty"`
}

// Plan is a named list of milestones.
type Plan struct {
	Name           string      `json:"name"`
	IsPostHandover bool        `json:"isPostHandover"`
	Milestones     []Milestone `json:"milestones"`
}

// Shape identifies which historical form a persisted value has.
type Shape int

// Known persisted shapes.
const (
	ShapeEmpty Shape = iota
	ShapeText
	ShapeNamedText
	ShapeStructured
	ShapeFlat
	ShapeUnknown
)

func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "empty"
	case ShapeText:
		return "text"
	case ShapeNamedText:
		return "named_text"
	case ShapeStructured:
		return "structured"
	case ShapeFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Persisted is the parsed form of a stored payment-plan value. Text is set for
// the text shapes, Plans for the structured and flat shapes.
type Persisted struct {
	Shape Shape
	Text  string
	Plans []Plan
}

type parser func(raw []byte) (Persisted, error)

var parsers = []parser{
	parseEmpty,
	parseText,
	parseNamedText,
	parseStructured,
	parseFlat,
}

// Parse infers the shape of raw and decodes it. It never fails; unrecognized
// input is reported as ShapeUnknown.
func Parse(raw []byte) Persisted {
	for _, p := range parsers {
		if parsed, err := p(raw); err == nil {
			return parsed
		}
	}
	return Persisted{Shape: ShapeUnknown}
}

// ToEditablePlans returns the structured plans held in raw. Text shapes and
// unrecognized shapes give an empty list; their content, if any, is available
// through FreeformText.
func ToEditablePlans(raw []byte) []Plan {
	parsed := Parse(raw)
	switch parsed.Shape {
	case ShapeStructured, ShapeFlat:
		return parsed.Plans
	default:
		return []Plan{}
	}
}

// FreeformText returns the free text carried by the text shapes, or "".
func FreeformText(raw []byte) string {
	parsed := Parse(raw)
	switch parsed.Shape {
	case ShapeText, ShapeNamedText:
		return parsed.Text
	default:
		return ""
	}
}

// ToPersisted prepares edited plans for storage. Plans without a name or
// without milestones are dropped, as are milestones whose percentage is not
// positive. TitleHe falls back to Title; Title is never filled from TitleHe.
// It returns nil when no plan survives.
func ToPersisted(plans []Plan) []Plan {
	var out []Plan
	for _, plan := range plans {
		if strings.TrimSpace(plan.Name) == "" || len(plan.Milestones) == 0 {
			continue
		}
		kept := make([]Milestone, 0, len(plan.Milestones))
		for _, m := range plan.Milestones {
			if !(m.Percentage > 0) || math.IsInf(m.Percentage, 1) {
				continue
			}
			if m.TitleHe == "" {
				m.TitleHe = m.Title
			}
			kept = append(kept, m)
		}
		plan.Milestones = kept
		out = append(out, plan)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseEmpty(raw []byte) (Persisted, error) {
	switch jsonx.KindOf(raw) {
	case jsonx.KindAbsent, jsonx.KindNull:
		return Persisted{Shape: ShapeEmpty}, nil
	default:
		return Persisted{}, ErrShapeMismatch
	}
}

func parseText(raw []byte) (Persisted, error) {
	if jsonx.KindOf(raw) != jsonx.KindString {
		return Persisted{}, ErrShapeMismatch
	}
	var text string
	if err := json.Unmarshal(bytes.TrimSpace(raw), &text); err != nil {
		return Persisted{}, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	return Persisted{Shape: ShapeText, Text: text}, nil
}

func parseNamedText(raw []byte) (Persisted, error) {
	if jsonx.KindOf(raw) != jsonx.KindObject {
		return Persisted{}, ErrShapeMismatch
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Persisted{}, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if _, ok := fields["name"]; !ok {
		return Persisted{}, ErrShapeMismatch
	}
	if _, ok := fields["milestones"]; ok {
		return Persisted{}, ErrShapeMismatch
	}
	if _, ok := fields["milestone"]; ok {
		return Persisted{}, ErrShapeMismatch
	}
	var name jsonx.String
	_ = json.Unmarshal(fields["name"], &name)
	return Persisted{Shape: ShapeNamedText, Text: string(name)}, nil
}

type looseMilestone struct {
	Title          jsonx.String `json:"title"`
	TitleHe        jsonx.String `json:"titleHe"`
	Percentage     jsonx.Number `json:"percentage"`
	DueDate        jsonx.String `json:"dueDate"`
	IsPostHandover jsonx.Bool   `json:"isPostHandover"`
}

type loosePlan struct {
	Name           jsonx.String `json:"name"`
	IsPostHandover jsonx.Bool   `json:"isPostHandover"`
	Milestones     jsonx.List   `json:"milestones"`
}

type looseFlatMilestone struct {
	Milestone   jsonx.String `json:"milestone"`
	Percentage  jsonx.Number `json:"percentage"`
	Description jsonx.String `json:"description"`
}

// arrayWithLead splits a JSON array and reports whether its first element is
// an object that has one of the keys.
func arrayWithLead(raw []byte, keys ...string) ([]json.RawMessage, error) {
	if jsonx.KindOf(raw) != jsonx.KindArray {
		return nil, ErrShapeMismatch
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(raw), &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if len(elems) == 0 {
		return nil, ErrShapeMismatch
	}
	for _, key := range keys {
		if jsonx.HasKey(elems[0], key) {
			return elems, nil
		}
	}
	return nil, ErrShapeMismatch
}

func parseStructured(raw []byte) (Persisted, error) {
	elems, err := arrayWithLead(raw, "milestones")
	if err != nil {
		return Persisted{}, err
	}

	plans := make([]Plan, 0, len(elems))
	for _, elem := range elems {
		if jsonx.KindOf(elem) != jsonx.KindObject {
			continue
		}
		var lp loosePlan
		if err := json.Unmarshal(elem, &lp); err != nil {
			continue
		}
		plan := Plan{
			Name:           string(lp.Name),
			IsPostHandover: bool(lp.IsPostHandover),
			Milestones:     make([]Milestone, 0, len(lp.Milestones)),
		}
		for _, rawMilestone := range lp.Milestones {
			if jsonx.KindOf(rawMilestone) != jsonx.KindObject {
				continue
			}
			var lm looseMilestone
			if err := json.Unmarshal(rawMilestone, &lm); err != nil {
				continue
			}
			plan.Milestones = append(plan.Milestones, normalizeMilestone(Milestone{
				Title:          string(lm.Title),
				TitleHe:        string(lm.TitleHe),
				Percentage:     float64(lm.Percentage),
				DueDate:        string(lm.DueDate),
				IsPostHandover: bool(lm.IsPostHandover),
			}))
		}
		plans = append(plans, plan)
	}
	return Persisted{Shape: ShapeStructured, Plans: plans}, nil
}

func parseFlat(raw []byte) (Persisted, error) {
	elems, err := arrayWithLead(raw, "milestone", "percentage")
	if err != nil {
		return Persisted{}, err
	}

	plan := Plan{
		Name:       DefaultPlanName,
		Milestones: make([]Milestone, 0, len(elems)),
	}
	for _, elem := range elems {
		if jsonx.KindOf(elem) != jsonx.KindObject {
			continue
		}
		var lf looseFlatMilestone
		if err := json.Unmarshal(elem, &lf); err != nil {
			continue
		}
		plan.Milestones = append(plan.Milestones, Milestone{
			TitleHe:    string(lf.Milestone),
			Percentage: float64(lf.Percentage),
			DueDate:    string(lf.Description),
		})
	}
	return Persisted{Shape: ShapeFlat, Plans: []Plan{plan}}, nil
}

func normalizeMilestone(m Milestone) Milestone {
	if m.Title == "" {
		m.Title = m.TitleHe
	}
	if m.TitleHe == "" {
		m.TitleHe = m.Title
	}
	return m
}
