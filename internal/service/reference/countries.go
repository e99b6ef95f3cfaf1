package reference

import (
	"github.com/caretrip/coordination-api/internal/model"
)

// Country reference data for country-selection form fields, grouped by
// region. Static catalog; treated as opaque by the rest of the system.
var countryGroups = []model.CountryGroup{
	{
		Region: "Middle East & North Africa",
		Countries: []string{
			"United Arab Emirates", "Saudi Arabia", "Qatar", "Kuwait", "Bahrain",
			"Oman", "Jordan", "Lebanon", "Egypt", "Morocco", "Tunisia",
		},
	},
	{
		Region: "Europe",
		Countries: []string{
			"United Kingdom", "Germany", "France", "Spain", "Italy",
			"Netherlands", "Switzerland", "Sweden", "Poland", "Turkey",
		},
	},
	{
		Region: "Asia Pacific",
		Countries: []string{
			"India", "Thailand", "Singapore", "Malaysia", "South Korea",
			"Japan", "Philippines", "Indonesia", "Australia", "New Zealand",
		},
	},
	{
		Region: "Americas",
		Countries: []string{
			"United States", "Canada", "Mexico", "Brazil", "Argentina",
			"Colombia", "Costa Rica", "Panama",
		},
	},
	{
		Region: "Sub-Saharan Africa",
		Countries: []string{
			"South Africa", "Kenya", "Nigeria", "Ghana", "Ethiopia",
		},
	},
}

// ListCountryGroups returns the catalog in its fixed order.
func ListCountryGroups() []model.CountryGroup {
	out := make([]model.CountryGroup, len(countryGroups))
	copy(out, countryGroups)
	return out
}
