package domain

import "context"

// Country is one entry of the country catalogue.
type Country struct {
	Code        string `json:"country_code"`
	Name        string `json:"country_name"`
	Region      string `json:"region"`
	IncomeLevel string `json:"income_level"`
}

// UnknownIncomeLevel marks catalogue entries built without source metadata.
const UnknownIncomeLevel = "Unknown"

// CountryLister is implemented by adapters whose agency publishes a country
// catalogue.
type CountryLister interface {
	Countries(ctx context.Context) ([]Country, error)
}
