package funding

// Application types supported in catalogs.
const (
	ApplicationContinuous = "continuous"
	ApplicationCallBased  = "call-based"
)

// IndustryAll is the sentinel label for instruments open to any industry.
const IndustryAll = "all"

// Instrument is a single catalog entry: a grant, loan or call offered by a
// funding provider. Immutable for the duration of a scoring request.
type Instrument struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Notes       string `json:"notes,omitempty"`

	TargetStages     []Stage  `json:"target_stages"`
	TargetIndustries []string `json:"target_industries"`
	FundingNeedTypes []string `json:"funding_need_types"`

	MinAmount *int `json:"min_amount,omitempty"`
	MaxAmount *int `json:"max_amount,omitempty"`

	Geography         []string `json:"geography"`
	ApplicationType   string   `json:"application_type"`
	ApplicationWindow string   `json:"application_window,omitempty"`
}

// Catalog is a read-only list of instruments loaded from a single source.
type Catalog struct {
	Source string
	Items  []*Instrument
}

func (c *Catalog) Len() int {
	return len(c.Items)
}

func (c *Catalog) FindByID(id string) *Instrument {
	for _, item := range c.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}
