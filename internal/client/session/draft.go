// Package session holds the admin edit session: a local draft of the
// portfolio content that is edited offline and explicitly saved.
package session

import (
	"strings"

	"github.com/SRAS2024/About-Me/internal/locale"
	"github.com/SRAS2024/About-Me/internal/models"
	"github.com/google/uuid"
)

// RowState tells whether a group has local edits that were not saved.
type RowState int

const (
	Clean RowState = iota
	Dirty
)

func (s RowState) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// RefreshMode selects how a server snapshot is merged into the draft.
type RefreshMode int

const (
	// ReplaceAll overwrites every collection with the server state,
	// discarding unsaved edits.
	ReplaceAll RefreshMode = iota
	// AssetsOnly refreshes the photo and resumes and only those collections
	// without unsaved edits.
	AssetsOnly
)

// Row is one editable collection entry. Links use Label and URL; traits
// and accomplishments use Text.
type Row struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	URL   string `json:"url,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Draft is the locally edited state. Transitions never mutate their input.
type Draft struct {
	Rows          map[models.Group][]Row    `json:"rows"`
	States        map[models.Group]RowState `json:"states"`
	PhotoExists   bool                      `json:"photo_exists"`
	PhotoVersion  int64                     `json:"photo_version"`
	Resumes       []models.ResumeInfo       `json:"resumes"`
	PreviewLocale string                    `json:"preview_locale"`
}

// NewDraft returns an empty draft with every group Clean.
func NewDraft() Draft {
	d := Draft{
		Rows:          make(map[models.Group][]Row, len(models.Groups)),
		States:        make(map[models.Group]RowState, len(models.Groups)),
		Resumes:       []models.ResumeInfo{},
		PreviewLocale: locale.Default,
	}
	for _, g := range models.Groups {
		d.Rows[g] = []Row{}
		d.States[g] = Clean
	}
	return d
}

// Clone returns a deep copy of d.
func (d Draft) Clone() Draft {
	out := d
	out.Rows = make(map[models.Group][]Row, len(d.Rows))
	for g, rows := range d.Rows {
		out.Rows[g] = append([]Row{}, rows...)
	}
	out.States = make(map[models.Group]RowState, len(d.States))
	for g, s := range d.States {
		out.States[g] = s
	}
	out.Resumes = append([]models.ResumeInfo{}, d.Resumes...)
	return out
}

// Dirty reports whether any group has unsaved edits.
func (d Draft) Dirty() bool {
	for _, s := range d.States {
		if s == Dirty {
			return true
		}
	}
	return false
}

// Op is the kind of a local edit.
type Op int

const (
	OpAdd Op = iota
	OpUpdate
	OpRemove
	OpMove
	OpReplace
)

// Edit is a local change to one group. Key addresses the row for update,
// remove and move; To is the target index for move; Rows is the new content
// for replace.
type Edit struct {
	Group models.Group
	Op    Op
	Key   string
	Label string
	URL   string
	Text  string
	To    int
	Rows  []Row
}

// ApplyLocalEdit applies e to a copy of d. It returns false and the
// unchanged draft when the edit is not applicable: an add or replace beyond
// capacity, an unknown group, or an unknown row key.
func ApplyLocalEdit(d Draft, e Edit) (Draft, bool) {
	limit := e.Group.Max()
	if limit == 0 {
		return d, false
	}
	rows := d.Rows[e.Group]
	idx := indexOf(rows, e.Key)

	var next []Row
	switch e.Op {
	case OpAdd:
		if len(rows) >= limit {
			return d, false
		}
		next = append(append([]Row{}, rows...), Row{Key: uuid.NewString(), Label: e.Label, URL: e.URL, Text: e.Text})
	case OpUpdate:
		if idx < 0 {
			return d, false
		}
		updated := Row{Key: rows[idx].Key, Label: e.Label, URL: e.URL, Text: e.Text}
		if updated == rows[idx] {
			return d, false
		}
		next = append([]Row{}, rows...)
		next[idx] = updated
	case OpRemove:
		if idx < 0 {
			return d, false
		}
		next = append(append([]Row{}, rows[:idx]...), rows[idx+1:]...)
	case OpMove:
		if idx < 0 {
			return d, false
		}
		to := clamp(e.To, 0, len(rows)-1)
		if to == idx {
			return d, false
		}
		row := rows[idx]
		next = append(append([]Row{}, rows[:idx]...), rows[idx+1:]...)
		next = append(next[:to], append([]Row{row}, next[to:]...)...)
	case OpReplace:
		if len(e.Rows) > limit {
			return d, false
		}
		next = make([]Row, len(e.Rows))
		for i, r := range e.Rows {
			if r.Key == "" {
				r.Key = uuid.NewString()
			}
			next[i] = r
		}
	default:
		return d, false
	}

	out := d.Clone()
	out.Rows[e.Group] = next
	out.States[e.Group] = Dirty
	return out, true
}

// ApplyServerSnapshot merges snap into a copy of d according to mode.
func ApplyServerSnapshot(d Draft, snap models.Snapshot, mode RefreshMode) Draft {
	var out Draft
	if d.Rows == nil {
		out = NewDraft()
		out.PreviewLocale = d.PreviewLocale
	} else {
		out = d.Clone()
	}

	out.PhotoExists = snap.PhotoExists
	out.PhotoVersion = snap.PhotoVersion
	out.Resumes = append([]models.ResumeInfo{}, snap.Resumes...)

	server := rowsFromSnapshot(snap)
	for _, g := range models.Groups {
		if mode == AssetsOnly && out.States[g] == Dirty {
			continue
		}
		out.Rows[g] = server[g]
		out.States[g] = Clean
	}
	if out.PreviewLocale == "" {
		out.PreviewLocale = locale.Default
	}
	return out
}

func rowsFromSnapshot(snap models.Snapshot) map[models.Group][]Row {
	links := func(in []models.Link) []Row {
		out := make([]Row, len(in))
		for i, l := range in {
			out[i] = Row{Key: uuid.NewString(), Label: l.Label, URL: l.URL}
		}
		return out
	}
	out := map[models.Group][]Row{
		models.GroupGitHubLinks:  links(snap.GitHubLinks),
		models.GroupWebsiteLinks: links(snap.WebsiteLinks),
	}
	traits := make([]Row, len(snap.Traits))
	for i, t := range snap.Traits {
		traits[i] = Row{Key: uuid.NewString(), Text: t.Text}
	}
	out[models.GroupTraits] = traits
	items := make([]Row, len(snap.Accomplishments))
	for i, a := range snap.Accomplishments {
		items[i] = Row{Key: uuid.NewString(), Text: a.Text}
	}
	out[models.GroupAccomplishments] = items
	return out
}

// Preview is what the public page would render for a draft.
type Preview struct {
	GitHubLinks     []models.Link
	WebsiteLinks    []models.Link
	Traits          []string
	Accomplishments []string
	PhotoURL        string
	ResumeLocale    string
	HasResume       bool
}

// normalizeRows trims rows the way the server stores them: links are kept
// while either field is set, texts while non-blank. Row keys are preserved.
func normalizeRows(group models.Group, rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		r.Label = strings.TrimSpace(r.Label)
		r.URL = strings.TrimSpace(r.URL)
		r.Text = strings.TrimSpace(r.Text)
		switch group {
		case models.GroupGitHubLinks, models.GroupWebsiteLinks:
			if r.Label == "" && r.URL == "" {
				continue
			}
		default:
			if r.Text == "" {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// RenderPreview builds the preview of d. Links need both a label and a URL
// to be shown; blank texts are skipped.
func RenderPreview(d Draft) Preview {
	p := Preview{
		GitHubLinks:     previewLinks(d.Rows[models.GroupGitHubLinks], models.LinkGitHub),
		WebsiteLinks:    previewLinks(d.Rows[models.GroupWebsiteLinks], models.LinkWebsite),
		Traits:          previewTexts(d.Rows[models.GroupTraits]),
		Accomplishments: previewTexts(d.Rows[models.GroupAccomplishments]),
	}
	if d.PhotoExists {
		p.PhotoURL = photoURL(d.PhotoVersion)
	}

	available := make([]string, len(d.Resumes))
	for i, r := range d.Resumes {
		available[i] = r.Locale
	}
	p.ResumeLocale, p.HasResume = locale.Resolve(locale.NormalizeOrDefault(d.PreviewLocale), available)
	return p
}

func previewLinks(rows []Row, kind models.LinkKind) []models.Link {
	out := []models.Link{}
	for _, r := range rows {
		label, url := strings.TrimSpace(r.Label), strings.TrimSpace(r.URL)
		if label == "" || url == "" {
			continue
		}
		out = append(out, models.Link{Label: label, URL: url, Kind: kind, SortOrder: len(out)})
	}
	return out
}

func previewTexts(rows []Row) []string {
	out := []string{}
	for _, r := range rows {
		if t := strings.TrimSpace(r.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func indexOf(rows []Row, key string) int {
	if key == "" {
		return -1
	}
	for i, r := range rows {
		if r.Key == key {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
