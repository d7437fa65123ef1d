package paymentplans

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ShapeInference(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		shape Shape
	}{
		{name: "absent", raw: ``, shape: ShapeEmpty},
		{name: "null", raw: `null`, shape: ShapeEmpty},
		{name: "string", raw: `"20/80 on handover"`, shape: ShapeText},
		{name: "named object", raw: `{"name":"10/90"}`, shape: ShapeNamedText},
		{name: "object with milestones", raw: `{"name":"x","milestones":[]}`, shape: ShapeUnknown},
		{name: "object without name", raw: `{"title":"x"}`, shape: ShapeUnknown},
		{name: "structured", raw: `[{"name":"A","milestones":[]}]`, shape: ShapeStructured},
		{name: "flat by milestone", raw: `[{"milestone":"On Booking"}]`, shape: ShapeFlat},
		{name: "flat by percentage", raw: `[{"percentage":20}]`, shape: ShapeFlat},
		{name: "structured wins over flat", raw: `[{"milestones":[],"percentage":5}]`, shape: ShapeStructured},
		{name: "empty array", raw: `[]`, shape: ShapeUnknown},
		{name: "array of strings", raw: `["a","b"]`, shape: ShapeUnknown},
		{name: "number", raw: `42`, shape: ShapeUnknown},
		{name: "bool", raw: `true`, shape: ShapeUnknown},
		{name: "broken json", raw: `[{"milestones":`, shape: ShapeUnknown},
		{name: "not json", raw: `plans`, shape: ShapeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.shape, Parse([]byte(tt.raw)).Shape)
		})
	}
}

func TestToEditablePlans_FlatLegacy(t *testing.T) {
	raw := `[{"milestone":"On Booking","percentage":20},{"milestone":"Handover","percentage":80,"description":"Q4 2027"}]`

	plans := ToEditablePlans([]byte(raw))

	require.Len(t, plans, 1)
	want := Plan{
		Name:           DefaultPlanName,
		IsPostHandover: false,
		Milestones: []Milestone{
			{TitleHe: "On Booking", Percentage: 20},
			{TitleHe: "Handover", Percentage: 80, DueDate: "Q4 2027"},
		},
	}
	assert.Empty(t, cmp.Diff(want, plans[0]))
}

func TestToEditablePlans_Structured(t *testing.T) {
	raw := `[
		{"name":"Standard","milestones":[
			{"title":"Signing","percentage":10},
			{"titleHe":"חוזה","percentage":"15%"},
			{"title":"Keys","titleHe":"מפתח","percentage":75,"dueDate":"2027-06","isPostHandover":true},
			"junk"
		]},
		{"name":"Post handover","isPostHandover":true,"milestones":"oops"},
		7
	]`

	plans := ToEditablePlans([]byte(raw))

	want := []Plan{
		{
			Name: "Standard",
			Milestones: []Milestone{
				{Title: "Signing", TitleHe: "Signing", Percentage: 10},
				{Title: "חוזה", TitleHe: "חוזה", Percentage: 15},
				{Title: "Keys", TitleHe: "מפתח", Percentage: 75, DueDate: "2027-06", IsPostHandover: true},
			},
		},
		{Name: "Post handover", IsPostHandover: true, Milestones: []Milestone{}},
	}
	assert.Empty(t, cmp.Diff(want, plans))
}

func TestToEditablePlans_NonStructuredShapes(t *testing.T) {
	for _, raw := range []string{``, `null`, `"text"`, `{"name":"legacy"}`, `[]`, `{}`, `[1,2]`, `{"milestones":[{"title":"x"}]}`} {
		plans := ToEditablePlans([]byte(raw))
		assert.NotNil(t, plans, raw)
		assert.Empty(t, plans, raw)
	}
}

func TestFreeformText(t *testing.T) {
	assert.Equal(t, "20/80", FreeformText([]byte(`"20/80"`)))
	assert.Equal(t, "Builder 10/90", FreeformText([]byte(`{"name":"Builder 10/90"}`)))
	assert.Equal(t, "42", FreeformText([]byte(`{"name":42}`)))
	assert.Equal(t, "", FreeformText(nil))
	assert.Equal(t, "", FreeformText([]byte(`[{"milestone":"x","percentage":1}]`)))
}

func TestToPersisted(t *testing.T) {
	plans := []Plan{
		{Name: "", Milestones: []Milestone{{Title: "x", Percentage: 50}}},
		{Name: "Empty", Milestones: nil},
		{Name: "Main", Milestones: []Milestone{
			{Title: "Signing", Percentage: 20},
			{Title: "Zero", Percentage: 0},
			{Title: "Negative", Percentage: -5},
			{TitleHe: "מסירה", Percentage: 80},
		}},
	}

	got := ToPersisted(plans)

	want := []Plan{{Name: "Main", Milestones: []Milestone{
		{Title: "Signing", TitleHe: "Signing", Percentage: 20},
		{Title: "", TitleHe: "מסירה", Percentage: 80},
	}}}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestToPersisted_NullWhenNothingSurvives(t *testing.T) {
	assert.Nil(t, ToPersisted(nil))
	assert.Nil(t, ToPersisted([]Plan{}))
	assert.Nil(t, ToPersisted([]Plan{
		{Name: "", Milestones: []Milestone{{Title: "a", Percentage: 50}}},
		{Name: "   ", Milestones: []Milestone{{Title: "b", Percentage: 50}}},
	}))

	data, err := json.Marshal(ToPersisted([]Plan{{Name: ""}}))
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestToPersisted_KeepsPlanWhoseMilestonesAreAllFiltered(t *testing.T) {
	got := ToPersisted([]Plan{{Name: "Draft", Milestones: []Milestone{{Title: "x", Percentage: 0}}}})
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Milestones)
	assert.Empty(t, got[0].Milestones)
}

func TestRoundTrip_StructuredSurvivesPersist(t *testing.T) {
	original := []Plan{{Name: "Standard", IsPostHandover: true, Milestones: []Milestone{
		{Title: "Signing", TitleHe: "חתימה", Percentage: 30, DueDate: "2026-01"},
		{Title: "Keys", TitleHe: "מפתח", Percentage: 70, IsPostHandover: true},
	}}}

	data, err := json.Marshal(ToPersisted(original))
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(original, ToEditablePlans(data)))
}

func TestNeverPanics(t *testing.T) {
	inputs := []string{``, `null`, `{}`, `[]`, `[null]`, `[{"milestones":null}]`, `[{"milestone":{}}]`,
		`[{"percentage":"abc"}]`, `{"name":null}`, `"`, `[[]]`, `[{"milestones":[null,1,"a",{"percentage":[]}]}]`}
	for _, raw := range inputs {
		require.NotPanics(t, func() {
			ToEditablePlans([]byte(raw))
			FreeformText([]byte(raw))
			ToPersisted(ToEditablePlans([]byte(raw)))
		}, raw)
	}
}

func TestParseText(t *testing.T) {
	plans := ParseText("On Booking - 20%\n\n30% on frame\nnotes without numbers\nHandover: 50 %")
	require.Len(t, plans, 1)
	assert.Equal(t, DefaultPlanName, plans[0].Name)
	assert.Equal(t, []Milestone{
		{Title: "On Booking", TitleHe: "On Booking", Percentage: 20},
		{Title: "on frame", TitleHe: "on frame", Percentage: 30},
		{Title: "Handover", TitleHe: "Handover", Percentage: 50},
	}, plans[0].Milestones)

	assert.Nil(t, ParseText("call the office"))
	assert.Nil(t, ParseText(""))
}
