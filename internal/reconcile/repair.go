package reconcile

import (
	"bytes"
	"encoding/json"

	"projectadmin/internal/paymentplans"
)

// RepairOptions selects what Repair rewrites besides amenities.
type RepairOptions struct {
	// PaymentPlans rewrites flat milestone lists as structured plans.
	PaymentPlans bool
}

// Change is one value Repair rewrote. Key is the document key Before was
// read from; After is always written under Group.
type Change struct {
	Group  Group
	Key    string
	Before json.RawMessage
	After  json.RawMessage
}

// Repair heals corrupted and legacy amenity records in place and, when asked,
// migrates flat payment plans. It returns the new document and the values it
// changed; doc itself is not modified. Values that repair to the same JSON,
// amenities that repair to no groups and plans left without milestones are
// not rewritten.
func (r Reconciler) Repair(doc Document, opts RepairOptions) (Document, []Change) {
	out := doc.Clone()
	var changes []Change

	record := func(g Group, key string, before json.RawMessage, value any) {
		after, err := json.Marshal(value)
		if err != nil || sameJSON(before, after) {
			return
		}
		out[string(g)] = after
		changes = append(changes, Change{Group: g, Key: key, Before: before, After: after})
	}

	if before, ok := doc[string(GroupAmenities)]; ok {
		if repaired := r.Codec.RepairJSON(before); len(repaired) > 0 {
			record(GroupAmenities, string(GroupAmenities), before, repaired)
		}
	}

	if opts.PaymentPlans {
		key := string(GroupPaymentPlans)
		if _, ok := doc[key]; !ok {
			key = LegacyPaymentPlanKey
		}
		before := doc[key]
		if parsed := paymentplans.Parse(before); parsed.Shape == paymentplans.ShapeFlat {
			if plans := paymentplans.ToPersisted(parsed.Plans); hasMilestones(plans) {
				record(GroupPaymentPlans, key, before, plans)
			}
		}
	}

	return out, changes
}

// sameJSON compares two JSON values ignoring formatting and key order.
func sameJSON(a, b []byte) bool {
	var va, vb any
	if json.Unmarshal(a, &va) != nil || json.Unmarshal(b, &vb) != nil {
		return false
	}
	na, errA := json.Marshal(va)
	nb, errB := json.Marshal(vb)
	return errA == nil && errB == nil && bytes.Equal(na, nb)
}
