package model

// Domain names a group of report endpoints the assistant can query
type Domain string

const (
	DomainCampaign  Domain = "campaign"
	DomainMenu      Domain = "menu"
	DomainOrders    Domain = "orders"
	DomainConsumers Domain = "consumers"
	DomainFeedbacks Domain = "feedbacks"
	DomainStore     Domain = "store"
)

// Domains lists every domain in the order tool output is assembled
var Domains = []Domain{
	DomainCampaign,
	DomainMenu,
	DomainOrders,
	DomainConsumers,
	DomainFeedbacks,
	DomainStore,
}

// TimeFilterType is the period a question refers to
type TimeFilterType string

const (
	TimeFilterLastDay     TimeFilterType = "1d"
	TimeFilterLast7Days   TimeFilterType = "7d"
	TimeFilterLast30Days  TimeFilterType = "30d"
	TimeFilterAll         TimeFilterType = "all"
	TimeFilterCustomRange TimeFilterType = "custom"
)

// DomainUsage is the model's decision for one domain
type DomainUsage struct {
	Why string `json:"why" jsonschema:"description=The reason for using or not using the API"`
	Use bool   `json:"use" jsonschema:"description=Whether the API should be used to answer the question"`
}

// TimeFilter narrows time-filterable endpoints to a period
type TimeFilter struct {
	Type      TimeFilterType `json:"type" jsonschema:"description=Time filter type: 1d (last day) / 7d (last 7 days) / 30d (last 30 days) / all (all time) / custom (specific date range),enum=1d,enum=7d,enum=30d,enum=all,enum=custom"`
	StartDate string         `json:"startDate,omitempty" jsonschema:"description=Start date in ISO format (YYYY-MM-DDTHH:mm:ss.sssZ) - only for custom type"`
	EndDate   string         `json:"endDate,omitempty" jsonschema:"description=End date in ISO format (YYYY-MM-DDTHH:mm:ss.sssZ) - only for custom type"`
}

// ToolAnalysisResult is the input contract of the analyze tool
type ToolAnalysisResult struct {
	Campaign   DomainUsage `json:"campaign"`
	Menu       DomainUsage `json:"menu"`
	Orders     DomainUsage `json:"orders"`
	Consumers  DomainUsage `json:"consumers"`
	Feedbacks  DomainUsage `json:"feedbacks"`
	Store      DomainUsage `json:"store"`
	TimeFilter *TimeFilter `json:"timeFilter,omitempty" jsonschema:"description=Time period filter to apply to API requests. Extract from user question if they mention time periods like last 30 days or this week"`
}

// Usage returns the decision recorded for d
func (r ToolAnalysisResult) Usage(d Domain) DomainUsage {
	switch d {
	case DomainCampaign:
		return r.Campaign
	case DomainMenu:
		return r.Menu
	case DomainOrders:
		return r.Orders
	case DomainConsumers:
		return r.Consumers
	case DomainFeedbacks:
		return r.Feedbacks
	case DomainStore:
		return r.Store
	}
	return DomainUsage{}
}

// Selected returns the flagged domains in canonical order
func (r ToolAnalysisResult) Selected() []Domain {
	var out []Domain
	for _, d := range Domains {
		if r.Usage(d).Use {
			out = append(out, d)
		}
	}
	return out
}
