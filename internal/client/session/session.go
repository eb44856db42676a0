package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SRAS2024/About-Me/internal/apperror"
	"github.com/SRAS2024/About-Me/internal/locale"
	"github.com/SRAS2024/About-Me/internal/models"
	"golang.org/x/sync/errgroup"
)

// Client is the server API used by a Session.
type Client interface {
	State(ctx context.Context, requestedLocale string) (models.Snapshot, error)
	ReplaceLinks(ctx context.Context, github, website []LinkPayload) ([]models.GroupResult, error)
	ReplaceTraits(ctx context.Context, traits []string) error
	ReplaceAccomplishments(ctx context.Context, items []string) error
	UploadPhoto(ctx context.Context, filename string, data []byte) (PhotoUpload, error)
	DeletePhoto(ctx context.Context) error
	UploadResume(ctx context.Context, loc, filename string, data []byte) error
	DeleteResume(ctx context.Context, loc string) error
}

// SaveReport is the outcome of Save. OK is true only if every group saved.
type SaveReport struct {
	OK     bool                 `json:"ok"`
	Groups []models.GroupResult `json:"groups"`
}

// Failed returns the groups that were not saved.
func (r SaveReport) Failed() []models.GroupResult {
	var out []models.GroupResult
	for _, g := range r.Groups {
		if !g.OK {
			out = append(out, g)
		}
	}
	return out
}

// Session is an admin edit session. Collection edits stay local until Save;
// asset operations are sent immediately and followed by a Refresh.
type Session struct {
	mu    sync.Mutex
	draft Draft
	// gen counts local edits per group so a Save does not mark a group Clean
	// when it was edited while the save was in flight.
	gen  map[models.Group]int
	api  Client
	mode RefreshMode
}

// New creates a session with an empty draft.
func New(api Client, mode RefreshMode) *Session {
	return &Session{
		draft: NewDraft(),
		gen:   make(map[models.Group]int),
		api:   api,
		mode:  mode,
	}
}

// Restore replaces the draft, e.g. with one persisted between runs.
func (s *Session) Restore(d Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.Rows == nil {
		s.draft = NewDraft()
		return
	}
	s.draft = d.Clone()
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Preview renders the current draft.
func (s *Session) Preview() Preview {
	return RenderPreview(s.Draft())
}

// Load replaces the draft with the server state, discarding local edits.
func (s *Session) Load(ctx context.Context) error {
	return s.refresh(ctx, ReplaceAll)
}

// Refresh merges the server state using the session's RefreshMode.
func (s *Session) Refresh(ctx context.Context) error {
	return s.refresh(ctx, s.mode)
}

// RefreshClean merges the server state into the groups without unsaved
// edits, whatever the session's RefreshMode.
func (s *Session) RefreshClean(ctx context.Context) error {
	return s.refresh(ctx, AssetsOnly)
}

func (s *Session) refresh(ctx context.Context, mode RefreshMode) error {
	s.mu.Lock()
	loc := s.draft.PreviewLocale
	s.mu.Unlock()

	snap, err := s.api.State(ctx, loc)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = ApplyServerSnapshot(s.draft, snap, mode)
	return nil
}

// Edit applies a local edit and reports whether it changed the draft.
func (s *Session) Edit(e Edit) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := ApplyLocalEdit(s.draft, e)
	if ok {
		s.draft = next
		s.gen[e.Group]++
	}
	return ok
}

// SelectLocale sets the locale used to preview the resume.
func (s *Session) SelectLocale(raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.PreviewLocale = locale.NormalizeOrDefault(raw)
}

// Save sends every collection to the server concurrently. Groups that were
// saved become Clean and hold the trimmed rows the server stored; failed
// groups keep their rows and stay Dirty. The draft is never rolled back.
func (s *Session) Save(ctx context.Context) SaveReport {
	s.mu.Lock()
	d := s.draft.Clone()
	gen := make(map[models.Group]int, len(s.gen))
	for g, n := range s.gen {
		gen[g] = n
	}
	s.mu.Unlock()

	var (
		mu      sync.Mutex
		results = make(map[models.Group]models.GroupResult, len(models.Groups))
	)
	record := func(rs ...models.GroupResult) {
		mu.Lock()
		defer mu.Unlock()
		for _, r := range rs {
			results[r.Group] = r
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		groups, err := s.api.ReplaceLinks(ctx,
			linkPayloads(d.Rows[models.GroupGitHubLinks]),
			linkPayloads(d.Rows[models.GroupWebsiteLinks]))
		if err != nil {
			record(failed(models.GroupGitHubLinks, err), failed(models.GroupWebsiteLinks, err))
			return nil
		}
		record(groups...)
		return nil
	})
	g.Go(func() error {
		record(resultOf(models.GroupTraits, s.api.ReplaceTraits(ctx, texts(d.Rows[models.GroupTraits]))))
		return nil
	})
	g.Go(func() error {
		record(resultOf(models.GroupAccomplishments,
			s.api.ReplaceAccomplishments(ctx, texts(d.Rows[models.GroupAccomplishments]))))
		return nil
	})
	_ = g.Wait()

	report := SaveReport{OK: true}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, group := range models.Groups {
		res, ok := results[group]
		if !ok {
			res = models.GroupResult{Group: group, Code: "MissingResult", Message: "server did not report this group"}
		}
		report.Groups = append(report.Groups, res)
		if !res.OK {
			report.OK = false
			continue
		}
		if s.gen[group] == gen[group] {
			s.draft.States[group] = Clean
			s.draft.Rows[group] = normalizeRows(group, s.draft.Rows[group])
		}
	}
	return report
}

// UploadPhoto sends the photo and refreshes the draft.
func (s *Session) UploadPhoto(ctx context.Context, filename string, data []byte) (PhotoUpload, error) {
	out, err := s.api.UploadPhoto(ctx, filename, data)
	if err != nil {
		return PhotoUpload{}, err
	}
	return out, s.Refresh(ctx)
}

// DeletePhoto removes the photo and refreshes the draft.
func (s *Session) DeletePhoto(ctx context.Context) error {
	if err := s.api.DeletePhoto(ctx); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// UploadResume sends the resume for loc and refreshes the draft.
func (s *Session) UploadResume(ctx context.Context, loc, filename string, data []byte) error {
	if err := s.api.UploadResume(ctx, loc, filename, data); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// DeleteResume removes the resume for loc and refreshes the draft.
func (s *Session) DeleteResume(ctx context.Context, loc string) error {
	if err := s.api.DeleteResume(ctx, loc); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

func resultOf(group models.Group, err error) models.GroupResult {
	if err == nil {
		return models.GroupResult{Group: group, OK: true}
	}
	return failed(group, err)
}

func failed(group models.Group, err error) models.GroupResult {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return models.GroupResult{Group: group, Code: appErr.Code, Message: appErr.Message, Kind: string(appErr.Kind)}
	}
	return models.GroupResult{Group: group, Code: "RequestFailed", Message: err.Error()}
}

func linkPayloads(rows []Row) []LinkPayload {
	out := make([]LinkPayload, len(rows))
	for i, r := range rows {
		out[i] = LinkPayload{Label: r.Label, URL: r.URL}
	}
	return out
}

func texts(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Text
	}
	return out
}
