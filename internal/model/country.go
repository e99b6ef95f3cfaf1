package model

// CountryGroup is a region label with its member countries, used by
// country-selection form fields. The catalog is static reference data.
type CountryGroup struct {
	Region    string   `json:"region"`
	Countries []string `json:"countries"`
}
