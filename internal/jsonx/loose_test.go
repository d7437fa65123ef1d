package jsonx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooseScalars(t *testing.T) {
	type record struct {
		S String `json:"s"`
		N Number `json:"n"`
		B Bool   `json:"b"`
		L List   `json:"l"`
	}

	tests := []struct {
		name string
		raw  string
		want record
	}{
		{name: "well typed", raw: `{"s":"x","n":12.5,"b":true,"l":[1,2]}`, want: record{S: "x", N: 12.5, B: true, L: List{json.RawMessage(`1`), json.RawMessage(`2`)}}},
		{name: "stringly", raw: `{"s":7,"n":"20%","b":"true","l":"a"}`, want: record{S: "7", N: 20, B: true}},
		{name: "thousands", raw: `{"n":"1,250,000"}`, want: record{N: 1250000}},
		{name: "nulls", raw: `{"s":null,"n":null,"b":null,"l":null}`, want: record{}},
		{name: "objects", raw: `{"s":{},"n":{},"b":[],"l":{}}`, want: record{}},
		{name: "bool as text", raw: `{"s":false}`, want: record{S: "false"}},
		{name: "garbage number", raw: `{"n":"abc","b":"maybe"}`, want: record{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got record
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindAbsent, KindOf(nil))
	assert.Equal(t, KindAbsent, KindOf([]byte("  ")))
	assert.Equal(t, KindNull, KindOf([]byte("null")))
	assert.Equal(t, KindString, KindOf([]byte(` "x"`)))
	assert.Equal(t, KindNumber, KindOf([]byte("-3")))
	assert.Equal(t, KindBool, KindOf([]byte("false")))
	assert.Equal(t, KindObject, KindOf([]byte("{}")))
	assert.Equal(t, KindArray, KindOf([]byte("[]")))
	assert.Equal(t, KindInvalid, KindOf([]byte("<xml>")))
}

func TestHasKey(t *testing.T) {
	assert.True(t, HasKey([]byte(`{"milestones":null}`), "milestones"))
	assert.False(t, HasKey([]byte(`{"name":"x"}`), "milestones"))
	assert.False(t, HasKey([]byte(`[1]`), "milestones"))
	assert.False(t, HasKey([]byte(`not json`), "milestones"))
}

func TestParseNumber(t *testing.T) {
	v, ok := ParseNumber(" 15 % ")
	require.True(t, ok)
	assert.Equal(t, 15.0, v)

	_, ok = ParseNumber("%")
	assert.False(t, ok)

	_, ok = ParseNumber("NaN")
	assert.False(t, ok)
	_, ok = ParseNumber("-Inf")
	assert.False(t, ok)
}
