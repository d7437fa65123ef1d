package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectadmin/internal/amenities"
)

func TestRepair_HealsCorruptedAmenities(t *testing.T) {
	doc := mustDocument(t, legacyRecord)

	out, changes := Reconciler{}.Repair(doc, RepairOptions{})

	require.Len(t, changes, 1)
	assert.Equal(t, GroupAmenities, changes[0].Group)
	assert.Equal(t, "amenities", changes[0].Key)
	assert.JSONEq(t, string(doc["amenities"]), string(changes[0].Before))

	groups := decodeValue[[]amenities.Output](t, out["amenities"])
	assert.Equal(t, []amenities.SelectionID{"swimming-pool", "gym", "security-247"}, amenities.Decode(groups))
	for _, g := range groups {
		for _, item := range g.Items {
			assert.NotEmpty(t, item.ID)
		}
	}

	assert.JSONEq(t, string(doc["paymentPlan"]), string(out["paymentPlan"]))
	_, wrote := out["paymentPlans"]
	assert.False(t, wrote)
}

func TestRepair_IsIdempotent(t *testing.T) {
	once, _ := Reconciler{}.Repair(mustDocument(t, legacyRecord), RepairOptions{PaymentPlans: true})

	twice, changes := Reconciler{}.Repair(once, RepairOptions{PaymentPlans: true})

	assert.Empty(t, changes)
	assert.JSONEq(t, string(once["amenities"]), string(twice["amenities"]))
}

func TestRepair_MigratesFlatPaymentPlans(t *testing.T) {
	doc := mustDocument(t, legacyRecord)

	out, changes := Reconciler{}.Repair(doc, RepairOptions{PaymentPlans: true})

	require.Len(t, changes, 2)
	plan := changes[1]
	assert.Equal(t, GroupPaymentPlans, plan.Group)
	assert.Equal(t, LegacyPaymentPlanKey, plan.Key)
	assert.JSONEq(t,
		`[{"name":"Payment Plan","isPostHandover":false,"milestones":[
			{"title":"","titleHe":"On Booking","percentage":20},
			{"title":"","titleHe":"Handover","percentage":80}]}]`,
		string(out["paymentPlans"]))
}

func TestRepair_LeavesUnrepairableValuesAlone(t *testing.T) {
	doc := Document{
		"amenities":    json.RawMessage(`"pool, gym"`),
		"paymentPlans": json.RawMessage(`"20/80"`),
	}

	out, changes := Reconciler{}.Repair(doc, RepairOptions{PaymentPlans: true})

	assert.Empty(t, changes)
	assert.Equal(t, doc, out)
}

func TestSameJSON(t *testing.T) {
	assert.True(t, sameJSON([]byte(`{"a":1, "b":[1,2]}`), []byte(`{"b":[1,2],"a":1}`)))
	assert.False(t, sameJSON([]byte(`{"a":1}`), []byte(`{"a":2}`)))
	assert.False(t, sameJSON(nil, []byte(`null`)))
}

func TestRepair_KeepsValuesThatWouldRepairToNothing(t *testing.T) {
	doc := Document{
		"amenities":   json.RawMessage(`[{"category":"x","categoryEn":"x","items":[{"icon":"x","name":"Old","nameHe":"ישן","_id":"retired-amenity"}]}]`),
		"paymentPlan": json.RawMessage(`[{"milestone":"On Booking","description":"at signing"},{"milestone":"Handover","percentage":"TBD"}]`),
	}

	out, changes := Reconciler{}.Repair(doc, RepairOptions{PaymentPlans: true})

	assert.Empty(t, changes)
	assert.Equal(t, doc, out)
}
