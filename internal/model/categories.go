package model

// Category is one of the ten fixed classification tags. The set is closed:
// filtering, row layout, and color coding all assume membership.
type Category string

const (
	CategoryMajorEvents     Category = "Major Events"
	CategoryTech            Category = "Tech"
	CategoryMilitaryContact Category = "Military Contact"
	CategoryAbduction       Category = "Abduction"
	CategoryBeings          Category = "Beings"
	CategoryInteraction     Category = "Interaction"
	CategorySighting        Category = "Sighting"
	CategoryMassSighting    Category = "Mass Sighting"
	CategoryHighStrangeness Category = "High Strangeness"
	CategoryCommunity       Category = "Community"
)

// Categories lists all categories in canonical insertion order. Views that
// enumerate categories (donut segments, timeline rows) use this order.
var Categories = []Category{
	CategoryMajorEvents,
	CategoryTech,
	CategoryMilitaryContact,
	CategoryAbduction,
	CategoryBeings,
	CategoryInteraction,
	CategorySighting,
	CategoryMassSighting,
	CategoryHighStrangeness,
	CategoryCommunity,
}

// CategoryColor holds the base and hover hex colors for one category.
type CategoryColor struct {
	Base  string `json:"base"`
	Hover string `json:"hover"`
}

// CategoryColors maps each category to its color pair. Lookups against an
// unknown category return the zero value; ingestion rejects unknown
// categories so views never render uncolored.
var CategoryColors = map[Category]CategoryColor{
	CategoryHighStrangeness: {Base: "#1BE3FF", Hover: "#5FEBFF"},
	CategoryMassSighting:    {Base: "#37C6FF", Hover: "#6AD4FF"},
	CategorySighting:        {Base: "#52AAFF", Hover: "#7DBDFF"},
	CategoryCommunity:       {Base: "#6D8FFF", Hover: "#94ABFF"},
	CategoryInteraction:     {Base: "#8773FF", Hover: "#A799FF"},
	CategoryBeings:          {Base: "#A257FF", Hover: "#B983FF"},
	CategoryAbduction:       {Base: "#BD3BFF", Hover: "#D06FFF"},
	CategoryMilitaryContact: {Base: "#D81FFF", Hover: "#E455FF"},
	CategoryTech:            {Base: "#F303FF", Hover: "#F83FFF"},
	CategoryMajorEvents:     {Base: "#FF00E6", Hover: "#FF4DEA"},
}

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c Category) bool {
	_, ok := CategoryColors[c]
	return ok
}

// CraftTypes is the fixed craft vocabulary. Event.CraftType stores a
// comma-separated subset of these values.
var CraftTypes = []string{
	"Orb", "Lights", "Saucer", "Sphere", "Triangle", "Cylinder",
	"V-Shaped", "Tic Tac", "Diamond", "Cube", "Cube in Sphere",
	"Egg", "Oval", "Bell", "Organic", "Other",
}

// EntityTypes is the fixed entity vocabulary, same storage convention as
// CraftTypes.
var EntityTypes = []string{
	"None Reported", "Grey", "Mantid", "Reptilian", "Tall Grey",
	"Tall White", "Nordic", "Robotic", "Humanoid", "Human",
	"Female Entity", "Other",
}
