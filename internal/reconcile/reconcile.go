// Package reconcile merges an editing session's state back into a project's
// persisted JSON document.
//
// For every field group the outgoing value is chosen in this order:
//
//  1. structured state, when it holds at least one valid entry
//  2. the group's freeform text, when it differs from the text at load time
//  3. the value loaded from the document, verbatim
//
// A session can therefore resave a record whose historical shapes it does not
// understand without dropping them.
package reconcile

import (
	"encoding/json"
	"strings"

	"projectadmin/internal/amenities"
	"projectadmin/internal/jsonx"
	"projectadmin/internal/paymentplans"
)

// Document is a project's persisted JSON, one raw value per top-level key.
type Document map[string]json.RawMessage

// Clone returns a shallow copy. Raw values are never mutated in place so
// sharing them is safe.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Group names a reconciled field group. The value is the document key the
// group is written to.
type Group string

// Reconciled field groups.
const (
	GroupAmenities    Group = "amenities"
	GroupPaymentPlans Group = "paymentPlans"
	GroupHighlights   Group = "highlights"
	GroupFAQs         Group = "faqs"
	GroupNeighborhood Group = "neighborhood"
	GroupUnits        Group = "units"
	GroupFloorPlans   Group = "floorPlans"
)

// Groups lists every reconciled group in save order.
var Groups = []Group{
	GroupAmenities,
	GroupPaymentPlans,
	GroupHighlights,
	GroupFAQs,
	GroupNeighborhood,
	GroupUnits,
	GroupFloorPlans,
}

// LegacyPaymentPlanKey is the singular key older records store payment plans
// under. It is read when GroupPaymentPlans is absent and never written.
const LegacyPaymentPlanKey = "paymentPlan"

// Decision records which source a group was saved from.
type Decision string

// Save decisions.
const (
	DecisionStructured Decision = "structured"
	DecisionText       Decision = "text"
	DecisionOriginal   Decision = "original"
)

// Report maps each group to the decision taken for it.
type Report map[Group]Decision

// EditState is what the editing UI mutates. Each group has a structured list
// and a freeform text fallback.
type EditState struct {
	Amenities        []amenities.SelectionID `json:"amenities"`
	AmenitiesText    string                  `json:"amenitiesText"`
	PaymentPlans     []paymentplans.Plan     `json:"paymentPlans"`
	PaymentPlanText  string                  `json:"paymentPlanText"`
	Highlights       []Highlight             `json:"highlights"`
	HighlightsText   string                  `json:"highlightsText"`
	FAQs             []FAQ                   `json:"faqs"`
	FAQText          string                  `json:"faqText"`
	Neighborhood     []Place                 `json:"neighborhood"`
	NeighborhoodText string                  `json:"neighborhoodText"`
	Units            []Unit                  `json:"units"`
	UnitsText        string                  `json:"unitsText"`
	FloorPlans       []FloorPlan             `json:"floorPlans"`
	FloorPlansText   string                  `json:"floorPlansText"`
}

// Reconciler loads documents into edit sessions. The zero value uses the
// default amenity catalog.
type Reconciler struct {
	Codec amenities.Codec
}

// Session holds the snapshot taken at load time.
type Session struct {
	codec    amenities.Codec
	original Document
	loaded   EditState
}

// Load uses the default catalog and no drift reporter.
func Load(doc Document) (EditState, *Session) {
	return Reconciler{}.Load(doc)
}

// Load builds the editable state for doc and a session that remembers the
// document as loaded. Arrays decode into structured state; strings only fill
// the group's text. Nothing is rewritten at load.
func (r Reconciler) Load(doc Document) (EditState, *Session) {
	var state EditState

	raw := doc[string(GroupAmenities)]
	state.Amenities = r.Codec.DecodeJSON(raw)
	state.AmenitiesText = textOf(raw)

	raw = paymentPlanValue(doc)
	state.PaymentPlans = paymentplans.ToEditablePlans(raw)
	state.PaymentPlanText = paymentplans.FreeformText(raw)

	raw = doc[string(GroupHighlights)]
	state.Highlights = decodeHighlights(raw)
	state.HighlightsText = textOf(raw)

	raw = doc[string(GroupFAQs)]
	state.FAQs = decodeFAQs(raw)
	state.FAQText = textOf(raw)

	raw = doc[string(GroupNeighborhood)]
	state.Neighborhood = decodePlaces(raw)
	state.NeighborhoodText = textOf(raw)

	raw = doc[string(GroupUnits)]
	state.Units = decodeUnits(raw)
	state.UnitsText = textOf(raw)

	raw = doc[string(GroupFloorPlans)]
	state.FloorPlans = decodeFloorPlans(raw)
	state.FloorPlansText = textOf(raw)

	session := &Session{
		codec:    r.Codec,
		original: doc.Clone(),
		loaded:   state,
	}
	return state, session
}

func paymentPlanValue(doc Document) json.RawMessage {
	if raw, ok := doc[string(GroupPaymentPlans)]; ok {
		return raw
	}
	return doc[LegacyPaymentPlanKey]
}

// textOf returns the value when it is a JSON string, otherwise "".
func textOf(raw json.RawMessage) string {
	if jsonx.KindOf(raw) != jsonx.KindString {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Save merges state into the loaded document. Keys outside the reconciled
// groups are copied verbatim.
func (s *Session) Save(state EditState) (Document, Report) {
	out := s.original.Clone()
	report := make(Report, len(Groups))

	set := func(g Group, value any, d Decision) {
		if d == DecisionOriginal {
			report[g] = d
			return
		}
		data, err := json.Marshal(value)
		if err != nil {
			report[g] = DecisionOriginal
			return
		}
		out[string(g)] = data
		report[g] = d
	}

	encoded, d := s.pickAmenities(state)
	set(GroupAmenities, encoded, d)

	plans, d := s.pickPaymentPlans(state)
	set(GroupPaymentPlans, plans, d)

	highlights, d := pick(state.Highlights, Highlight.valid, state.HighlightsText, s.loaded.HighlightsText, ParseHighlightsText)
	set(GroupHighlights, highlights, d)

	faqs, d := pick(state.FAQs, FAQ.valid, state.FAQText, s.loaded.FAQText, ParseFAQText)
	set(GroupFAQs, faqs, d)

	places, d := pick(state.Neighborhood, Place.valid, state.NeighborhoodText, s.loaded.NeighborhoodText, ParseNeighborhoodText)
	set(GroupNeighborhood, places, d)

	units, d := pick(state.Units, Unit.valid, state.UnitsText, s.loaded.UnitsText, ParseUnitsText)
	set(GroupUnits, units, d)

	floorPlans, d := pick(state.FloorPlans, FloorPlan.valid, state.FloorPlansText, s.loaded.FloorPlansText, ParseFloorPlansText)
	set(GroupFloorPlans, floorPlans, d)

	return out, report
}

// pickAmenities applies the group order to amenities. Structured state
// counts only when it holds an id Encode can emit; stale catalog ids are still
// passed to Encode so the drift reporter sees them.
func (s *Session) pickAmenities(state EditState) ([]amenities.Output, Decision) {
	var stale []amenities.SelectionID
	structured := false
	for _, id := range state.Amenities {
		switch {
		case strings.TrimSpace(string(id)) == "":
		case s.codec.Known(id):
			structured = true
		default:
			stale = append(stale, id)
		}
	}
	if structured {
		if encoded := s.codec.Encode(state.Amenities); len(encoded) > 0 {
			return encoded, DecisionStructured
		}
	} else if len(stale) > 0 && s.codec.Drift != nil {
		s.codec.Drift.ReportDrift(stale)
	}

	if textChanged(state.AmenitiesText, s.loaded.AmenitiesText) {
		return s.codec.Encode(s.codec.FromNames(splitNames(state.AmenitiesText))), DecisionText
	}
	return nil, DecisionOriginal
}

// pickPaymentPlans applies the group order to payment plans. Structured state
// counts only when a plan keeps at least one milestone. Edited text that holds
// no "title - 20%" lines is stored as the plain-string shape.
func (s *Session) pickPaymentPlans(state EditState) (any, Decision) {
	if persisted := paymentplans.ToPersisted(state.PaymentPlans); hasMilestones(persisted) {
		return persisted, DecisionStructured
	}
	if !textChanged(state.PaymentPlanText, s.loaded.PaymentPlanText) {
		return nil, DecisionOriginal
	}
	text := strings.TrimSpace(state.PaymentPlanText)
	if text == "" {
		return nil, DecisionText
	}
	if plans := paymentplans.ToPersisted(paymentplans.ParseText(text)); hasMilestones(plans) {
		return plans, DecisionText
	}
	return text, DecisionText
}

// pick applies the group order to one list group. Invalid structured entries
// are dropped; text is parsed only when it was edited.
func pick[T any](edited []T, valid func(T) bool, text, loadedText string, parse func(string) []T) ([]T, Decision) {
	kept := make([]T, 0, len(edited))
	for _, item := range edited {
		if valid(item) {
			kept = append(kept, item)
		}
	}
	if len(kept) > 0 {
		return kept, DecisionStructured
	}
	if textChanged(text, loadedText) {
		return parse(text), DecisionText
	}
	return nil, DecisionOriginal
}

func textChanged(text, loaded string) bool {
	return strings.TrimSpace(text) != strings.TrimSpace(loaded)
}

func hasMilestones(plans []paymentplans.Plan) bool {
	for _, plan := range plans {
		if len(plan.Milestones) > 0 {
			return true
		}
	}
	return false
}
