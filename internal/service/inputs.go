package service

import (
	"encoding/json"
	"strings"
)

// LinkInput is one submitted link row. Client sort orders are ignored.
type LinkInput struct {
	Label string `json:"label" validate:"max=80"`
	URL   string `json:"url" validate:"max=500"`
}

// empty reports whether the row should be dropped. A link with only one of
// its fields set is kept.
func (in LinkInput) empty() bool {
	return in.Label == "" && in.URL == ""
}

// TraitInput is one submitted trait. It decodes from a plain JSON string,
// from {"text": ...} or from the legacy {"label": ...} shape.
type TraitInput struct {
	Text string `json:"text" validate:"max=60"`
}

func (t *TraitInput) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Text = s
		return nil
	}

	var obj struct {
		Text  *string `json:"text"`
		Label *string `json:"label"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	switch {
	case obj.Text != nil:
		t.Text = *obj.Text
	case obj.Label != nil:
		t.Text = *obj.Label
	default:
		t.Text = ""
	}
	return nil
}

// AccomplishmentInput is one submitted accomplishment line.
type AccomplishmentInput struct {
	Text string `json:"text" validate:"max=500"`
}

func trimLinks(in []LinkInput) []LinkInput {
	out := make([]LinkInput, 0, len(in))
	for _, l := range in {
		l.Label = strings.TrimSpace(l.Label)
		l.URL = strings.TrimSpace(l.URL)
		if l.empty() {
			continue
		}
		out = append(out, l)
	}
	return out
}

func trimTexts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
