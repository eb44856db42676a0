package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/SRAS2024/About-Me/internal/client/storage"
	"github.com/SRAS2024/About-Me/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// adminStub records the bodies sent to the admin API.
type adminStub struct {
	mu     sync.Mutex
	traits []string
	status int
}

func (s *adminStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch r.URL.Path {
	case "/admin/api/state":
		_ = json.NewEncoder(w).Encode(models.Snapshot{
			Traits:  []models.Trait{{Text: "Curious"}},
			Resumes: []models.ResumeInfo{{Locale: "es", Filename: "cv.pdf"}},
		})
	case "/admin/api/links":
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "groups": []models.GroupResult{
			{Group: models.GroupGitHubLinks, OK: true},
			{Group: models.GroupWebsiteLinks, OK: true},
		}})
	case "/admin/api/traits":
		var req struct {
			Traits []string `json:"traits"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if s.status != 0 {
			w.WriteHeader(s.status)
			_, _ = w.Write([]byte(`{"ok":false,"error":"FieldTooLong","message":"traits item 1: too long","kind":"validation"}`))
			return
		}
		s.traits = req.Traits
		_, _ = w.Write([]byte(`{"ok":true}`))
	default:
		_, _ = w.Write([]byte(`{"ok":true}`))
	}
}

func execute(t *testing.T, srv *httptest.Server, draft, stdin string, args ...string) (string, error) {
	t.Helper()
	a := &app{client: srv.Client()}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--url", srv.URL, "--password", "pw", "--draft", draft}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestEditAndSave(t *testing.T) {
	stub := &adminStub{}
	srv := httptest.NewServer(stub)
	defer srv.Close()
	draft := filepath.Join(t.TempDir(), "draft.json")

	out, err := execute(t, srv, draft, "", "state")
	require.NoError(t, err)
	assert.Contains(t, out, "traits (clean, 1/12)")
	assert.Contains(t, out, "preview resume: es")

	out, err = execute(t, srv, draft, "", "traits", "set", "Calm", "Kind")
	require.NoError(t, err)
	assert.Contains(t, out, "traits: 2 rows (unsaved)")

	d, ok, err := storage.NewFileStore(draft).Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, d.Rows[models.GroupTraits], 2)

	out, err = execute(t, srv, draft, "", "save")
	require.NoError(t, err)
	assert.Contains(t, out, "traits           saved")
	assert.Equal(t, []string{"Calm", "Kind"}, stub.traits)

	d, _, err = storage.NewFileStore(draft).Load()
	require.NoError(t, err)
	assert.False(t, d.Dirty())
}

func TestState_KeepsUnsavedEdits(t *testing.T) {
	stub := &adminStub{}
	srv := httptest.NewServer(stub)
	defer srv.Close()
	draft := filepath.Join(t.TempDir(), "draft.json")

	_, err := execute(t, srv, draft, "", "traits", "set", "Calm", "Kind")
	require.NoError(t, err)

	out, err := execute(t, srv, draft, "", "state")
	require.NoError(t, err)
	assert.Contains(t, out, "traits (dirty, 2/12)")
	assert.Contains(t, out, "unsaved changes kept")
	assert.Contains(t, out, "preview resume: es")

	d, _, err := storage.NewFileStore(draft).Load()
	require.NoError(t, err)
	require.Len(t, d.Rows[models.GroupTraits], 2)
	assert.Equal(t, "Calm", d.Rows[models.GroupTraits][0].Text)
}

func TestSave_ReportsFailedGroup(t *testing.T) {
	stub := &adminStub{status: http.StatusBadRequest}
	srv := httptest.NewServer(stub)
	defer srv.Close()
	draft := filepath.Join(t.TempDir(), "draft.json")

	_, err := execute(t, srv, draft, "", "traits", "set", "Calm")
	require.NoError(t, err)

	out, err := execute(t, srv, draft, "", "save")
	assert.ErrorIs(t, err, errNotSaved)
	assert.Contains(t, out, "FieldTooLong: traits item 1: too long")

	d, _, err := storage.NewFileStore(draft).Load()
	require.NoError(t, err)
	assert.True(t, d.Dirty(), "failed group stays dirty in the stored draft")
}

func TestLinksSet_Capacity(t *testing.T) {
	srv := httptest.NewServer(&adminStub{})
	defer srv.Close()
	draft := filepath.Join(t.TempDir(), "draft.json")

	args := []string{"links", "set", "github"}
	for i := 0; i < models.MaxLinksPerKind+1; i++ {
		args = append(args, "me=https://github.com/me")
	}
	_, err := execute(t, srv, draft, "", args...)
	assert.ErrorContains(t, err, "holds at most 5 rows")

	_, err = execute(t, srv, draft, "", "links", "set", "gitlab", "x=y")
	assert.ErrorContains(t, err, "unknown link kind")
}

func TestShell(t *testing.T) {
	srv := httptest.NewServer(&adminStub{})
	defer srv.Close()
	draft := filepath.Join(t.TempDir(), "draft.json")

	input := strings.Join([]string{
		"refresh",
		"add traits Good listener",
		"links website",
		"blog",
		"https://blog.example",
		"",
		"move traits 2 1",
		"remove traits 2",
		"show",
		"bogus",
		"exit",
	}, "\n") + "\n"

	out, err := execute(t, srv, draft, input, "shell")
	require.NoError(t, err)
	assert.Contains(t, out, "website_links: 1 rows (unsaved)")
	assert.Contains(t, out, "1. Good listener")
	assert.NotContains(t, out, "2. Curious")
	assert.Contains(t, out, "1. blog <https://blog.example>")
	assert.Contains(t, out, "Unknown command")
	assert.Contains(t, out, "Bye")
}

func TestUnknownRefreshMode(t *testing.T) {
	srv := httptest.NewServer(&adminStub{})
	defer srv.Close()

	_, err := execute(t, srv, filepath.Join(t.TempDir(), "d.json"), "", "--refresh", "sometimes", "state")
	assert.ErrorContains(t, err, "unknown refresh mode")
}
