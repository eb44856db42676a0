package models

// Group names one bounded collection. Each group is replaced as a whole and
// independently of the others.
type Group string

const (
	GroupGitHubLinks     Group = "github_links"
	GroupWebsiteLinks    Group = "website_links"
	GroupTraits          Group = "traits"
	GroupAccomplishments Group = "accomplishments"
)

// Groups lists every bounded collection in save order.
var Groups = []Group{GroupGitHubLinks, GroupWebsiteLinks, GroupTraits, GroupAccomplishments}

const (
	MaxLinksPerKind    = 5
	MaxTraits          = 12
	MaxAccomplishments = 20
)

// Max returns the maximum number of items the group may hold.
func (g Group) Max() int {
	switch g {
	case GroupGitHubLinks, GroupWebsiteLinks:
		return MaxLinksPerKind
	case GroupTraits:
		return MaxTraits
	case GroupAccomplishments:
		return MaxAccomplishments
	default:
		return 0
	}
}

// GroupResult reports the outcome of replacing one group.
type GroupResult struct {
	Group Group `json:"group"`
	OK    bool  `json:"ok"`
	// Code is the machine-readable failure code, e.g. CapacityExceeded.
	Code string `json:"error,omitempty"`
	// Message is a human-readable reason.
	Message string `json:"message,omitempty"`
	// Kind is the error taxonomy kind of the failure.
	Kind string `json:"kind,omitempty"`
}
