package amenities

import (
	"errors"
	"fmt"
)

// CustomCategoryID is the category every custom amenity is filed under.
const CustomCategoryID = "views"

// Category groups amenities in the picker and in the persisted output.
type Category struct {
	ID     string `json:"id"`
	NameEn string `json:"nameEn"`
	NameHe string `json:"nameHe"`
}

// Definition describes a single catalog amenity.
type Definition struct {
	ID       string `json:"id"`
	NameEn   string `json:"nameEn"`
	NameHe   string `json:"nameHe"`
	Icon     string `json:"icon"`
	Category string `json:"category"`
}

// Catalog is an immutable lookup table of categories and amenities.
type Catalog struct {
	categories []Category
	amenities  []Definition
	byID       map[string]int
	categoryAt map[string]int
}

// NewCatalog validates the supplied data and builds the lookup indexes.
func NewCatalog(categories []Category, amenities []Definition) (*Catalog, error) {
	c := &Catalog{
		categories: append([]Category(nil), categories...),
		amenities:  append([]Definition(nil), amenities...),
		byID:       make(map[string]int, len(amenities)),
		categoryAt: make(map[string]int, len(categories)),
	}

	for idx, cat := range c.categories {
		if cat.ID == "" {
			return nil, errors.New("category id is required")
		}
		if _, dup := c.categoryAt[cat.ID]; dup {
			return nil, fmt.Errorf("duplicate category %q", cat.ID)
		}
		c.categoryAt[cat.ID] = idx
	}
	if _, ok := c.categoryAt[CustomCategoryID]; !ok {
		return nil, fmt.Errorf("custom category %q missing", CustomCategoryID)
	}

	for idx, def := range c.amenities {
		if def.ID == "" {
			return nil, errors.New("amenity id is required")
		}
		if IsCustom(SelectionID(def.ID)) {
			return nil, fmt.Errorf("amenity %q uses the custom prefix", def.ID)
		}
		if _, dup := c.byID[def.ID]; dup {
			return nil, fmt.Errorf("duplicate amenity %q", def.ID)
		}
		if _, ok := c.categoryAt[def.Category]; !ok {
			return nil, fmt.Errorf("amenity %q references unknown category %q", def.ID, def.Category)
		}
		c.byID[def.ID] = idx
	}

	return c, nil
}

// Categories returns the categories in display order.
func (c *Catalog) Categories() []Category {
	return append([]Category(nil), c.categories...)
}

// Amenities returns every amenity definition in catalog order.
func (c *Catalog) Amenities() []Definition {
	return append([]Definition(nil), c.amenities...)
}

// Lookup finds an amenity by id.
func (c *Catalog) Lookup(id string) (Definition, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Definition{}, false
	}
	return c.amenities[idx], true
}

// Category finds a category by id.
func (c *Catalog) Category(id string) (Category, bool) {
	idx, ok := c.categoryAt[id]
	if !ok {
		return Category{}, false
	}
	return c.categories[idx], true
}

// LookupByName matches the Hebrew name against NameHe and the English name
// against NameEn. Empty names never match.
func (c *Catalog) LookupByName(nameHe, nameEn string) (Definition, bool) {
	for _, def := range c.amenities {
		if nameHe != "" && def.NameHe == nameHe {
			return def, true
		}
		if nameEn != "" && def.NameEn == nameEn {
			return def, true
		}
	}
	return Definition{}, false
}

// Group bundles a category with its amenities for the picker.
type Group struct {
	Category
	Amenities []Definition `json:"amenities"`
}

// Grouped returns the catalog arranged by category, skipping empty categories.
func (c *Catalog) Grouped() []Group {
	groups := make([]Group, 0, len(c.categories))
	for _, cat := range c.categories {
		var defs []Definition
		for _, def := range c.amenities {
			if def.Category == cat.ID {
				defs = append(defs, def)
			}
		}
		if len(defs) == 0 {
			continue
		}
		groups = append(groups, Group{Category: cat, Amenities: defs})
	}
	return groups
}

var defaultCatalog = mustCatalog(defaultCategories, defaultAmenities)

// Default returns the master catalog compiled into the binary.
func Default() *Catalog {
	return defaultCatalog
}

func mustCatalog(categories []Category, amenities []Definition) *Catalog {
	c, err := NewCatalog(categories, amenities)
	if err != nil {
		panic(fmt.Sprintf("amenities: invalid built-in catalog: %v", err))
	}
	return c
}

var defaultCategories = []Category{
	{ID: "building", NameEn: "Building", NameHe: "הבניין"},
	{ID: "leisure", NameEn: "Sports & Leisure", NameHe: "ספורט ופנאי"},
	{ID: "security", NameEn: "Security", NameHe: "ביטחון"},
	{ID: "parking", NameEn: "Parking & Transport", NameHe: "חניה ותחבורה"},
	{ID: "family", NameEn: "Family & Community", NameHe: "משפחה וקהילה"},
	{ID: "smart-home", NameEn: "Smart Home", NameHe: "בית חכם"},
	{ID: "views", NameEn: "Views & More", NameHe: "נוף ועוד"},
}

var defaultAmenities = []Definition{
	{ID: "lobby", NameEn: "Designed Lobby", NameHe: "לובי מעוצב", Icon: "door-open", Category: "building"},
	{ID: "elevator", NameEn: "Elevators", NameHe: "מעליות", Icon: "arrow-up-down", Category: "building"},
	{ID: "shabbat-elevator", NameEn: "Shabbat Elevator", NameHe: "מעלית שבת", Icon: "calendar", Category: "building"},
	{ID: "storage-room", NameEn: "Storage Room", NameHe: "מחסן", Icon: "package", Category: "building"},
	{ID: "safe-room", NameEn: "Safe Room (Mamad)", NameHe: "ממ\"ד", Icon: "shield-check", Category: "building"},
	{ID: "concierge", NameEn: "Concierge", NameHe: "קונסיירז'", Icon: "bell", Category: "building"},
	{ID: "green-building", NameEn: "Green Building", NameHe: "בנייה ירוקה", Icon: "leaf", Category: "building"},

	{ID: "swimming-pool", NameEn: "Swimming Pool", NameHe: "בריכת שחייה", Icon: "waves", Category: "leisure"},
	{ID: "gym", NameEn: "Gym", NameHe: "חדר כושר", Icon: "dumbbell", Category: "leisure"},
	{ID: "spa", NameEn: "Spa", NameHe: "ספא", Icon: "sparkles", Category: "leisure"},
	{ID: "clubhouse", NameEn: "Residents' Club", NameHe: "מועדון דיירים", Icon: "users", Category: "leisure"},
	{ID: "rooftop-terrace", NameEn: "Rooftop Terrace", NameHe: "גג משותף", Icon: "sun", Category: "leisure"},
	{ID: "tennis-court", NameEn: "Tennis Court", NameHe: "מגרש טניס", Icon: "circle-dot", Category: "leisure"},

	{ID: "security-247", NameEn: "24/7 Security", NameHe: "אבטחה 24/7", Icon: "shield", Category: "security"},
	{ID: "cctv", NameEn: "CCTV", NameHe: "מצלמות אבטחה", Icon: "cctv", Category: "security"},
	{ID: "intercom", NameEn: "Video Intercom", NameHe: "אינטרקום וידאו", Icon: "phone", Category: "security"},
	{ID: "gated-entry", NameEn: "Gated Entry", NameHe: "כניסה מגודרת", Icon: "lock", Category: "security"},

	{ID: "underground-parking", NameEn: "Underground Parking", NameHe: "חניה תת-קרקעית", Icon: "car", Category: "parking"},
	{ID: "ev-charging", NameEn: "EV Charging", NameHe: "עמדות טעינה לרכב חשמלי", Icon: "plug-zap", Category: "parking"},
	{ID: "bike-storage", NameEn: "Bike Storage", NameHe: "חדר אופניים", Icon: "bike", Category: "parking"},
	{ID: "public-transport", NameEn: "Near Public Transport", NameHe: "קרבה לתחבורה ציבורית", Icon: "bus", Category: "parking"},

	{ID: "playground", NameEn: "Playground", NameHe: "גן משחקים", Icon: "baby", Category: "family"},
	{ID: "kindergarten", NameEn: "Kindergarten", NameHe: "גן ילדים", Icon: "school", Category: "family"},
	{ID: "synagogue", NameEn: "Synagogue", NameHe: "בית כנסת", Icon: "landmark", Category: "family"},
	{ID: "pet-friendly", NameEn: "Pet Friendly", NameHe: "ידידותי לחיות מחמד", Icon: "paw-print", Category: "family"},
	{ID: "garden", NameEn: "Shared Garden", NameHe: "גינה משותפת", Icon: "trees", Category: "family"},

	{ID: "smart-home-system", NameEn: "Smart Home System", NameHe: "מערכת בית חכם", Icon: "cpu", Category: "smart-home"},
	{ID: "central-ac", NameEn: "Central A/C", NameHe: "מיזוג מרכזי", Icon: "wind", Category: "smart-home"},
	{ID: "solar-water", NameEn: "Solar Water Heating", NameHe: "דוד שמש", Icon: "sun-medium", Category: "smart-home"},
	{ID: "fiber-internet", NameEn: "Fiber Internet", NameHe: "סיבים אופטיים", Icon: "wifi", Category: "smart-home"},

	{ID: "sea-view", NameEn: "Sea View", NameHe: "נוף לים", Icon: "sailboat", Category: "views"},
	{ID: "city-view", NameEn: "City View", NameHe: "נוף לעיר", Icon: "building-2", Category: "views"},
	{ID: "park-view", NameEn: "Park View", NameHe: "נוף לפארק", Icon: "tree-pine", Category: "views"},
	{ID: "near-beach", NameEn: "Near the Beach", NameHe: "קרוב לחוף", Icon: "umbrella", Category: "views"},
}
