package domain

import "math"

// Category identifies a weather condition. The closed set is listed below,
// but observations may carry other tokens; see Known.
type Category string

const (
	CategorySun   Category = "sun"   // clear
	CategoryCloud Category = "cloud" // overcast
	CategoryRain  Category = "rain"  // light precipitation
	CategoryStorm Category = "storm" // severe alert
	CategorySnow  Category = "snow"  // frozen precipitation
)

const (
	// UnknownKeyword replaces the keyword of categories outside the catalog.
	UnknownKeyword = "INCONNU"

	// DefaultTemperature is used when neither the payload nor the catalog
	// yields a temperature.
	DefaultTemperature = 25
)

// Descriptor holds the static attributes of a category.
type Descriptor struct {
	Min     int    `json:"min"`
	Max     int    `json:"max"`
	Keyword string `json:"keyword"`
	Label   string `json:"label"`
}

var catalog = map[Category]Descriptor{
	CategorySun:   {Min: 25, Max: 35, Keyword: "MISSION_OK", Label: "Ensoleillé"},
	CategoryCloud: {Min: 15, Max: 25, Keyword: "RETRAIT", Label: "Nuageux"},
	CategoryRain:  {Min: 10, Max: 20, Keyword: "RENFORT", Label: "Pluie légère"},
	CategoryStorm: {Min: 18, Max: 28, Keyword: "ATTENTION", Label: "Orage"},
	CategorySnow:  {Min: -5, Max: 5, Keyword: "REPLIEZ", Label: "Neige"},
}

var categoryOrder = []Category{CategorySun, CategoryCloud, CategoryRain, CategoryStorm, CategorySnow}

// Categories returns the closed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Known reports whether c belongs to the catalog.
func (c Category) Known() bool {
	_, ok := catalog[c]
	return ok
}

// DescriptorOf looks up the descriptor for c.
func DescriptorOf(c Category) (Descriptor, bool) {
	d, ok := catalog[c]
	return d, ok
}

// Keyword returns the obfuscation keyword for c, or UnknownKeyword.
func (c Category) Keyword() string {
	if d, ok := catalog[c]; ok {
		return d.Keyword
	}
	return UnknownKeyword
}

// MidpointTemperature returns the mean of the category's range rounded half
// up, or fallback when c is not in the catalog.
func MidpointTemperature(c Category, fallback int) int {
	d, ok := catalog[c]
	if !ok {
		return fallback
	}
	return int(math.Floor(float64(d.Min+d.Max)/2 + 0.5))
}
