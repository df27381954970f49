package registry

import "github.com/velmala/funding-advisor/internal/funding"

// ProfileParams carries the applicant-supplied fields the registry cannot
// know: lifecycle stage, needs and the requested amounts.
type ProfileParams struct {
	Stage            funding.Stage
	RevenueClass     string
	Employees        int
	FundingNeedTypes []string
	FundingAmountMin *int
	FundingAmountMax *int
	// Country, when set to anything but Finland, overrides the country
	// from the registry record.
	Country string
}

// BuildProfile looks the company up and merges the registry record with the
// caller-supplied parameters into a scoring-ready profile. A missing company
// yields (nil, nil), mirroring Lookup.
func (c *Client) BuildProfile(businessID string, params ProfileParams) (*funding.CompanyProfile, error) {
	company, err := c.Lookup(businessID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, nil
	}

	country := company.Country
	if params.Country != "" && params.Country != funding.DefaultCountry {
		country = params.Country
	}

	return &funding.CompanyProfile{
		Name:             company.Name,
		BusinessID:       businessID,
		Industry:         company.Industry,
		RevenueClass:     params.RevenueClass,
		Employees:        params.Employees,
		Stage:            params.Stage,
		FundingNeedTypes: params.FundingNeedTypes,
		FundingAmountMin: params.FundingAmountMin,
		FundingAmountMax: params.FundingAmountMax,
		Country:          country,
	}, nil
}
