package model

// DefaultGeneralTag is the pooled-item tag that splits an item across every
// user on the roster, regardless of the tags they carry.
const DefaultGeneralTag = "General"

// TagOption is one entry of the tag registry.
type TagOption struct {
	Name     string `yaml:"name"`
	ForUsers bool   `yaml:"for_users"`
	ForItems bool   `yaml:"for_items"`
}

// DefaultTags returns the built-in tag registry.
func DefaultTags() []TagOption {
	return []TagOption{
		{Name: DefaultGeneralTag, ForUsers: false, ForItems: true},
		{Name: "Alcohol", ForUsers: true, ForItems: true},
		{Name: "Meat", ForUsers: true, ForItems: true},
		{Name: "Fructose-Free", ForUsers: true, ForItems: true},
		{Name: "Gluten-Free", ForUsers: true, ForItems: true},
		{Name: "Lactose-Free", ForUsers: true, ForItems: true},
		{Name: "Vegan", ForUsers: true, ForItems: true},
		{Name: "Vegetarian", ForUsers: true, ForItems: true},
	}
}

// LegacyTagNames maps tag names found in data written by older releases to
// their current names.
var LegacyTagNames = map[string]string{
	"Allgemein":     DefaultGeneralTag,
	"Alkohol":       "Alcohol",
	"Fleisch":       "Meat",
	"Fructose-Frei": "Fructose-Free",
	"Glutenfrei":    "Gluten-Free",
	"Laktosefrei":   "Lactose-Free",
	"Vegetarisch":   "Vegetarian",
}
