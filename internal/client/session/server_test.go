package session_test

import (
	"context"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/SRAS2024/About-Me/internal/apperror"
	"github.com/SRAS2024/About-Me/internal/client/session"
	"github.com/SRAS2024/About-Me/internal/imaging"
	"github.com/SRAS2024/About-Me/internal/middleware"
	"github.com/SRAS2024/About-Me/internal/models"
	handler "github.com/SRAS2024/About-Me/internal/server/handler/http"
	"github.com/SRAS2024/About-Me/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore keeps collections and assets in memory behind the repository
// interfaces the services expect.
type memStore struct {
	mu      sync.Mutex
	links   map[models.LinkKind][]models.Link
	traits  []models.Trait
	accompl []models.Accomplishment
	photo   *models.Photo
	resumes map[string]models.Resume
}

func newMemStore() *memStore {
	return &memStore{
		links:   map[models.LinkKind][]models.Link{},
		resumes: map[string]models.Resume{},
	}
}

func (m *memStore) ReplaceLinks(_ context.Context, kind models.LinkKind, links []models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[kind] = links
	return nil
}

func (m *memStore) ReplaceTraits(_ context.Context, traits []models.Trait) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.traits = traits
	return nil
}

func (m *memStore) ReplaceAccomplishments(_ context.Context, items []models.Accomplishment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accompl = items
	return nil
}

func (m *memStore) ListLinks(_ context.Context, kind models.LinkKind) ([]models.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Link{}, m.links[kind]...), nil
}

func (m *memStore) ListTraits(context.Context) ([]models.Trait, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Trait{}, m.traits...), nil
}

func (m *memStore) ListAccomplishments(context.Context) ([]models.Accomplishment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Accomplishment{}, m.accompl...), nil
}

func (m *memStore) PutPhoto(_ context.Context, p models.Photo) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.photo != nil {
		p.Version = m.photo.Version + 1
	} else {
		p.Version = 1
	}
	m.photo = &p
	return p.Version, nil
}

func (m *memStore) DeletePhoto(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.photo = nil
	return nil
}

func (m *memStore) GetPhoto(context.Context) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.photo == nil {
		return nil, apperror.NotFound("no photo")
	}
	p := *m.photo
	return &p, nil
}

func (m *memStore) PhotoVersion(context.Context) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.photo == nil {
		return 0, false, nil
	}
	return m.photo.Version, true, nil
}

func (m *memStore) PutResume(_ context.Context, res models.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumes[res.Locale] = res
	return nil
}

func (m *memStore) DeleteResume(_ context.Context, loc string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.resumes[loc]
	delete(m.resumes, loc)
	return ok, nil
}

func (m *memStore) GetResume(_ context.Context, loc string) (*models.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.resumes[loc]
	if !ok {
		return nil, apperror.NotFound("no resume for locale " + loc)
	}
	return &res, nil
}

func (m *memStore) ListResumes(context.Context) ([]models.ResumeInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ResumeInfo{}
	for _, res := range m.resumes {
		out = append(out, models.ResumeInfo{Locale: res.Locale, Filename: res.Filename})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Locale < out[j].Locale })
	return out, nil
}

type alwaysUp struct{}

func (alwaysUp) Ping(context.Context) error { return nil }

// newServerAPI starts the real router over store and returns a client for it.
func newServerAPI(t *testing.T, store *memStore) *session.API {
	t.Helper()
	log := zap.NewNop()

	collections := service.NewCollectionService(store, store, validator.New(), log)
	assets := service.NewAssetService(store, imaging.NewPipeline(nil, log), log)
	health := service.NewHealthService(alwaysUp{}, log)

	router := handler.NewRouter(
		&handler.HealthHandler{Checker: health},
		&handler.PublicHandler{Assets: assets, Snapshots: collections, Log: log},
		&handler.AdminHandler{Collections: collections, Assets: assets, Log: log},
		middleware.AdminAuth("admin", "pw"),
		middleware.RequireDatabase(health, log),
		log,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return session.NewAPI(srv.URL, "admin", "pw", srv.Client())
}

func TestServer_LinksCapacityIsPerGroup(t *testing.T) {
	store := newMemStore()
	api := newServerAPI(t, store)
	ctx := context.Background()

	github := make([]session.LinkPayload, models.MaxLinksPerKind+1)
	for i := range github {
		github[i] = session.LinkPayload{Label: "repo" + strconv.Itoa(i), URL: "https://github.com/me/" + strconv.Itoa(i)}
	}
	website := []session.LinkPayload{{Label: "blog", URL: "https://blog.example"}}

	groups, err := api.ReplaceLinks(ctx, github, website)
	require.NoError(t, err)

	results := map[models.Group]models.GroupResult{}
	for _, g := range groups {
		results[g.Group] = g
	}
	require.Len(t, results, 2)
	assert.False(t, results[models.GroupGitHubLinks].OK)
	assert.Equal(t, apperror.CodeCapacityExceeded, results[models.GroupGitHubLinks].Code)
	assert.Equal(t, "validation", results[models.GroupGitHubLinks].Kind)
	assert.True(t, results[models.GroupWebsiteLinks].OK)

	require.NoError(t, api.ReplaceTraits(ctx, []string{}))
	require.NoError(t, api.ReplaceAccomplishments(ctx, []string{}))

	snap, err := api.State(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, snap.GitHubLinks)
	require.Len(t, snap.WebsiteLinks, 1)
	assert.Equal(t, "blog", snap.WebsiteLinks[0].Label)
	assert.Empty(t, snap.Traits)
	assert.Empty(t, snap.Accomplishments)
}

func TestServer_SessionRoundTrip(t *testing.T) {
	store := newMemStore()
	store.traits = []models.Trait{{Text: "Curious"}}
	api := newServerAPI(t, store)
	ctx := context.Background()

	s := session.New(api, session.ReplaceAll)
	require.NoError(t, s.Load(ctx))
	assert.Equal(t, "Curious", s.Draft().Rows[models.GroupTraits][0].Text)

	for i := 0; i < models.MaxLinksPerKind; i++ {
		require.True(t, s.Edit(session.Edit{
			Group: models.GroupGitHubLinks, Op: session.OpAdd,
			Label: " repo" + strconv.Itoa(i) + " ", URL: "https://github.com/me/" + strconv.Itoa(i),
		}))
	}
	assert.False(t, s.Edit(session.Edit{Group: models.GroupGitHubLinks, Op: session.OpAdd, Label: "six", URL: "https://x"}))
	require.True(t, s.Edit(session.Edit{Group: models.GroupTraits, Op: session.OpAdd, Text: "  Reliable  "}))
	require.True(t, s.Edit(session.Edit{Group: models.GroupTraits, Op: session.OpAdd, Text: "   "}))

	report := s.Save(ctx)
	require.True(t, report.OK, "failed groups: %+v", report.Failed())
	assert.Len(t, report.Groups, len(models.Groups))

	stored, err := store.ListLinks(ctx, models.LinkGitHub)
	require.NoError(t, err)
	require.Len(t, stored, models.MaxLinksPerKind)
	assert.Equal(t, "repo0", stored[0].Label)

	d := s.Draft()
	assert.False(t, d.Dirty())
	traits := d.Rows[models.GroupTraits]
	require.Len(t, traits, 2, "blank rows dropped by the server are dropped from the draft")
	assert.Equal(t, "Reliable", traits[1].Text)
	assert.Equal(t, "repo0", d.Rows[models.GroupGitHubLinks][0].Label)

	require.NoError(t, s.UploadResume(ctx, "es", "cv.pdf", []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")))
	d = s.Draft()
	require.Len(t, d.Resumes, 1)
	assert.Equal(t, "es", d.Resumes[0].Locale)
	require.Len(t, d.Rows[models.GroupTraits], 2)
	assert.Equal(t, "Curious", d.Rows[models.GroupTraits][0].Text)
	assert.Equal(t, "Reliable", d.Rows[models.GroupTraits][1].Text)
}
