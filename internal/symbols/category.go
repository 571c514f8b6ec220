package symbols

import "strings"

// Category is one of the fixed symbol taxonomy values.
type Category string

const (
	Hydraulic  Category = "hydraulic"
	Pneumatic  Category = "pneumatic"
	Mechanical Category = "mechanical"
	Electrical Category = "electrical"
	Other      Category = "other"
)

// Categories lists the taxonomy in display order.
var Categories = []Category{Hydraulic, Pneumatic, Mechanical, Electrical, Other}

var categoryAliases = map[string]Category{
	"hydraulic": Hydraulic,
	"plumbing":  Hydraulic,
	"valve":     Hydraulic,
	"pump":      Hydraulic,
	"water":     Hydraulic,

	"pneumatic":      Pneumatic,
	"compressed_air": Pneumatic,

	"mechanical":  Mechanical,
	"hvac":        Mechanical,
	"ventilation": Mechanical,
	"fan":         Mechanical,
	"structural":  Mechanical,

	"controls":   Electrical,
	"control":    Electrical,
	"electrical": Electrical,
	"electric":   Electrical,
	"vfd":        Electrical,
	"motor":      Electrical,

	"other":   Other,
	"unknown": Other,
}

// Checked in order; the first rule with a matching fragment wins.
var categoryHints = []struct {
	fragments []string
	category  Category
}{
	{[]string{"hvac", "vent", "fan"}, Mechanical},
	{[]string{"plumb", "hydra", "pump", "valve"}, Hydraulic},
	{[]string{"elect", "control", "motor"}, Electrical},
}

// MapCategory maps a free-text detector label into the taxonomy. Unknown and
// empty labels map to Other.
func MapCategory(label string) Category {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return Other
	}
	if c, ok := categoryAliases[key]; ok {
		return c
	}
	for _, hint := range categoryHints {
		for _, f := range hint.fragments {
			if strings.Contains(key, f) {
				return hint.category
			}
		}
	}
	return Other
}

// Index returns the position of c in Categories, or -1.
func (c Category) Index() int {
	for i, v := range Categories {
		if v == c {
			return i
		}
	}
	return -1
}
