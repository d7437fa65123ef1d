package amenities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"projectadmin/internal/jsonx"
)

// ErrUnrecognizedShape marks persisted amenity data that is not a list of groups.
var ErrUnrecognizedShape = errors.New("unrecognized amenities shape")

// SelectedAmenity is one persisted amenity item. ID holds the selection id
// that produced the item; legacy records lack it.
type SelectedAmenity struct {
	Icon   string      `json:"icon"`
	Name   string      `json:"name"`
	NameHe string      `json:"nameHe"`
	ID     SelectionID `json:"_id,omitempty"`
}

// Output is one persisted category group.
type Output struct {
	Category   string            `json:"category"`
	CategoryEn string            `json:"categoryEn"`
	Items      []SelectedAmenity `json:"items"`
}

// DriftReporter receives catalog ids that Encode had to drop because the
// catalog no longer defines them.
type DriftReporter interface {
	ReportDrift(ids []SelectionID)
}

// Codec converts between selection ids and the persisted group list. The zero
// value uses the default catalog and reports nothing.
type Codec struct {
	Catalog *Catalog
	Drift   DriftReporter
}

func (c Codec) catalog() *Catalog {
	if c.Catalog == nil {
		return Default()
	}
	return c.Catalog
}

// Known reports whether Encode would emit an item for id: a custom id, or a
// catalog id the catalog still defines.
func (c Codec) Known(id SelectionID) bool {
	if IsCustom(id) {
		return true
	}
	_, ok := c.catalog().Lookup(string(id))
	return ok
}

// Decode recovers the selection ids behind a persisted group list. Items with
// an _id are taken verbatim; legacy items are matched by name, by raw id,
// repaired when they hold a comma-joined list of ids, and otherwise turned
// into custom entries. The result has no duplicates and keeps first-seen order.
func (c Codec) Decode(groups []Output) []SelectionID {
	ids := make([]SelectionID, 0)
	seen := make(map[SelectionID]struct{})
	for _, group := range groups {
		for _, item := range group.Items {
			for _, id := range c.resolve(item) {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// DecodeJSON is Decode over raw persisted JSON. Malformed groups and items
// are skipped; input that is not a list yields an empty result.
func (c Codec) DecodeJSON(raw []byte) []SelectionID {
	groups, err := parseOutputs(raw)
	if err != nil {
		return []SelectionID{}
	}
	return c.Decode(groups)
}

// FromNames resolves free-typed amenity names with the same heuristics Decode
// applies to legacy items.
func (c Codec) FromNames(names []string) []SelectionID {
	items := make([]SelectedAmenity, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		items = append(items, SelectedAmenity{Name: name, NameHe: name})
	}
	return c.Decode([]Output{{Items: items}})
}

func (c Codec) resolve(item SelectedAmenity) []SelectionID {
	if item.ID != "" {
		return []SelectionID{item.ID}
	}

	cat := c.catalog()
	if def, ok := cat.LookupByName(item.NameHe, item.Name); ok {
		return []SelectionID{SelectionID(def.ID)}
	}

	for _, raw := range []string{item.Name, item.NameHe} {
		if raw == "" {
			continue
		}
		if def, ok := cat.Lookup(raw); ok {
			return []SelectionID{SelectionID(def.ID)}
		}
	}

	for _, raw := range []string{item.Name, item.NameHe} {
		if ids, ok := splitJoinedIDs(cat, raw); ok {
			return ids
		}
	}

	nameHe, nameEn := item.NameHe, item.Name
	if strings.TrimSpace(nameHe) == "" {
		nameHe = nameEn
	}
	if id, ok := CustomID(nameHe, nameEn); ok {
		return []SelectionID{id}
	}
	return nil
}

// splitJoinedIDs recognises a name field that is really several catalog ids
// joined with commas. Every token must be a catalog id.
func splitJoinedIDs(cat *Catalog, raw string) ([]SelectionID, bool) {
	if !strings.Contains(raw, ",") {
		return nil, false
	}
	tokens := strings.Split(raw, ",")
	ids := make([]SelectionID, 0, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if _, ok := cat.Lookup(token); !ok {
			return nil, false
		}
		ids = append(ids, SelectionID(token))
	}
	return ids, true
}

// Encode groups selection ids into the persisted schema in catalog category
// order. Custom ids land in the custom category with an icon picked by their
// position among the custom ids of this call. Unknown catalog ids are dropped
// and passed to the drift reporter. Duplicate ids are encoded once.
func (c Codec) Encode(ids []SelectionID) []Output {
	cat := c.catalog()
	buckets := make(map[string][]SelectedAmenity)
	seen := make(map[SelectionID]struct{}, len(ids))
	var dropped []SelectionID
	customCount := 0

	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if IsCustom(id) {
			nameHe, nameEn, _ := ParseCustom(id)
			buckets[CustomCategoryID] = append(buckets[CustomCategoryID], SelectedAmenity{
				Icon:   customIcon(customCount),
				Name:   nameEn,
				NameHe: nameHe,
				ID:     id,
			})
			customCount++
			continue
		}

		def, ok := cat.Lookup(string(id))
		if !ok {
			dropped = append(dropped, id)
			continue
		}
		buckets[def.Category] = append(buckets[def.Category], SelectedAmenity{
			Icon:   def.Icon,
			Name:   def.NameEn,
			NameHe: def.NameHe,
			ID:     id,
		})
	}

	if len(dropped) > 0 && c.Drift != nil {
		c.Drift.ReportDrift(dropped)
	}

	out := make([]Output, 0, len(buckets))
	for _, category := range cat.categories {
		items := buckets[category.ID]
		if len(items) == 0 {
			continue
		}
		out = append(out, Output{
			Category:   category.NameHe,
			CategoryEn: category.NameEn,
			Items:      items,
		})
	}
	return out
}

// Repair re-encodes a persisted group list through Decode, healing legacy and
// corrupted items. It returns nil when nothing decodes.
func (c Codec) Repair(groups []Output) []Output {
	ids := c.Decode(groups)
	if len(ids) == 0 {
		return nil
	}
	return c.Encode(ids)
}

// RepairJSON is Repair over raw persisted JSON.
func (c Codec) RepairJSON(raw []byte) []Output {
	ids := c.DecodeJSON(raw)
	if len(ids) == 0 {
		return nil
	}
	return c.Encode(ids)
}

// Decode runs Codec.Decode against the default catalog.
func Decode(groups []Output) []SelectionID { return Codec{}.Decode(groups) }

// DecodeJSON runs Codec.DecodeJSON against the default catalog.
func DecodeJSON(raw []byte) []SelectionID { return Codec{}.DecodeJSON(raw) }

// Encode runs Codec.Encode against the default catalog.
func Encode(ids []SelectionID) []Output { return Codec{}.Encode(ids) }

// Repair runs Codec.Repair against the default catalog.
func Repair(groups []Output) []Output { return Codec{}.Repair(groups) }

type looseItem struct {
	Icon   jsonx.String `json:"icon"`
	Name   jsonx.String `json:"name"`
	NameHe jsonx.String `json:"nameHe"`
	ID     jsonx.String `json:"_id"`
}

type looseGroup struct {
	Category   jsonx.String `json:"category"`
	CategoryEn jsonx.String `json:"categoryEn"`
	Items      jsonx.List   `json:"items"`
}

// parseOutputs reads persisted amenities leniently. Absent and null input is
// an empty list; a non-list is ErrUnrecognizedShape. Groups that are not
// objects and items that are neither objects nor strings are skipped.
func parseOutputs(raw []byte) ([]Output, error) {
	switch jsonx.KindOf(raw) {
	case jsonx.KindAbsent, jsonx.KindNull:
		return nil, nil
	case jsonx.KindArray:
	default:
		return nil, fmt.Errorf("parse amenities: %w", ErrUnrecognizedShape)
	}

	var groups []json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(raw), &groups); err != nil {
		return nil, fmt.Errorf("parse amenities: %w: %v", ErrUnrecognizedShape, err)
	}

	out := make([]Output, 0, len(groups))
	for _, rawGroup := range groups {
		if jsonx.KindOf(rawGroup) != jsonx.KindObject {
			continue
		}
		var g looseGroup
		if err := json.Unmarshal(rawGroup, &g); err != nil {
			continue
		}
		group := Output{Category: string(g.Category), CategoryEn: string(g.CategoryEn)}
		for _, rawItem := range g.Items {
			if item, ok := parseItem(rawItem); ok {
				group.Items = append(group.Items, item)
			}
		}
		out = append(out, group)
	}
	return out, nil
}

func parseItem(raw json.RawMessage) (SelectedAmenity, bool) {
	switch jsonx.KindOf(raw) {
	case jsonx.KindString:
		var name jsonx.String
		_ = json.Unmarshal(raw, &name)
		return SelectedAmenity{Name: string(name)}, name != ""
	case jsonx.KindObject:
		var item looseItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return SelectedAmenity{}, false
		}
		return SelectedAmenity{
			Icon:   string(item.Icon),
			Name:   string(item.Name),
			NameHe: string(item.NameHe),
			ID:     SelectionID(item.ID),
		}, true
	default:
		return SelectedAmenity{}, false
	}
}
