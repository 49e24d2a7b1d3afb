package models

type Category string

const (
	CategoryMusic      Category = "Music"
	CategoryWorkshop   Category = "Workshop"
	CategoryConference Category = "Conference"
	CategoryTech       Category = "Tech"
	CategorySports     Category = "Sports"
	CategoryFood       Category = "Food"
	CategoryOther      Category = "Other"
)

var Categories = []Category{
	CategoryMusic,
	CategoryWorkshop,
	CategoryConference,
	CategoryTech,
	CategorySports,
	CategoryFood,
	CategoryOther,
}

// Valid reports whether c is one of the fixed categories. Matching is
// case-sensitive.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
