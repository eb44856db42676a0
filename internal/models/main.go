// Package models defines the portfolio content records shared by the
// server and the admin client.
package models

// LinkKind separates portfolio links into their two independent groups.
type LinkKind string

const (
	// LinkGitHub marks a link to a GitHub profile or repository.
	LinkGitHub LinkKind = "github"
	// LinkWebsite marks a link to any other website.
	LinkWebsite LinkKind = "website"
)

// Valid reports whether k is one of the known link kinds.
func (k LinkKind) Valid() bool {
	return k == LinkGitHub || k == LinkWebsite
}

// Group returns the bounded collection holding links of this kind.
func (k LinkKind) Group() Group {
	if k == LinkWebsite {
		return GroupWebsiteLinks
	}
	return GroupGitHubLinks
}

// Link is a labelled portfolio URL.
type Link struct {
	// Label is the text shown for the link.
	Label string `json:"label"`
	// URL is the link target.
	URL string `json:"url"`
	// Kind selects the group the link belongs to.
	Kind LinkKind `json:"kind"`
	// SortOrder is the 0-based position inside the group.
	SortOrder int `json:"sort_order"`
}

// Trait is a short personal trait shown on the public page.
type Trait struct {
	Text      string `json:"text"`
	SortOrder int    `json:"sort_order"`
}

// Accomplishment is a single accomplishment line.
type Accomplishment struct {
	Text      string `json:"text"`
	SortOrder int    `json:"sort_order"`
}

// Resume is the PDF stored for one locale.
type Resume struct {
	// Locale is the normalized locale code, unique across resumes.
	Locale string `json:"locale"`
	// Filename is the name offered to the browser on download.
	Filename string `json:"filename"`
	// MimeType is the stored content type.
	MimeType string `json:"-"`
	// Bytes holds the document.
	Bytes []byte `json:"-"`
}

// ResumeInfo lists a stored resume without its content.
type ResumeInfo struct {
	Locale   string `json:"locale"`
	Filename string `json:"filename"`
}

// Photo is the single profile photo.
type Photo struct {
	Filename string
	MimeType string
	Bytes    []byte
	Width    int
	Height   int
	// Version changes on every upload and is used to bust browser caches.
	Version int64
}

// Snapshot is the canonical admin state returned by GET /admin/api/state.
type Snapshot struct {
	PhotoExists     bool             `json:"photo_exists"`
	PhotoVersion    int64            `json:"photo_version"`
	Resumes         []ResumeInfo     `json:"resumes"`
	ResumeLocale    string           `json:"resume_locale,omitempty"`
	GitHubLinks     []Link           `json:"github_links"`
	WebsiteLinks    []Link           `json:"website_links"`
	Accomplishments []Accomplishment `json:"accomplishments"`
	Traits          []Trait          `json:"traits"`

	// SupportedLocales are the locales offered for resume uploads.
	SupportedLocales []string `json:"supported_locales,omitempty"`
}

// ResumeLocales returns the locales that currently have a resume.
func (s Snapshot) ResumeLocales() []string {
	out := make([]string, 0, len(s.Resumes))
	for _, r := range s.Resumes {
		out = append(out, r.Locale)
	}
	return out
}
