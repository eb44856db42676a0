package http

import (
	"context"
	"mime"
	"net/http"
	"strconv"

	"github.com/SRAS2024/About-Me/internal/models"
	"go.uber.org/zap"
)

// PublicAssets is the read side of the asset store.
type PublicAssets interface {
	GetPhotoBytes(ctx context.Context) (*models.Photo, error)
	ResolveResumeForRequest(ctx context.Context, requested, acceptLanguage string) (*models.Resume, error)
}

// ContentReader returns the canonical content.
type ContentReader interface {
	Snapshot(ctx context.Context, requestedLocale string) (models.Snapshot, error)
}

// PublicHandler serves the unauthenticated routes read by the public page.
type PublicHandler struct {
	Assets    PublicAssets
	Snapshots ContentReader
	Log       *zap.Logger
}

// Photo handles GET /assets/photo. The response must be revalidated so a
// new upload shows up immediately.
func (h *PublicHandler) Photo(w http.ResponseWriter, r *http.Request) {
	p, err := h.Assets.GetPhotoBytes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("ETag", strconv.Quote(strconv.FormatInt(p.Version, 10)))
	serveBytes(w, p.MimeType, p.Filename, p.Bytes)
}

// Resume handles GET /assets/resume?locale=. Without a locale parameter the
// Accept-Language header is consulted.
func (h *PublicHandler) Resume(w http.ResponseWriter, r *http.Request) {
	res, err := h.Assets.ResolveResumeForRequest(r.Context(),
		r.URL.Query().Get("locale"), r.Header.Get("Accept-Language"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Content-Language", res.Locale)
	serveBytes(w, res.MimeType, res.Filename, res.Bytes)
}

type contentResponse struct {
	models.Snapshot
	PhotoURL  string `json:"photo_url,omitempty"`
	ResumeURL string `json:"resume_url,omitempty"`
	Degraded  bool   `json:"degraded,omitempty"`
}

// Content handles GET /api/content. When the database is unavailable the
// page still renders with empty content.
func (h *PublicHandler) Content(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Snapshots.Snapshot(r.Context(), r.URL.Query().Get("locale"))
	if err != nil {
		if h.Log != nil {
			h.Log.Error("content unavailable", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, contentResponse{Snapshot: emptySnapshot(), Degraded: true})
		return
	}
	writeJSON(w, http.StatusOK, newContentResponse(snap))
}

func newContentResponse(snap models.Snapshot) contentResponse {
	resp := contentResponse{Snapshot: snap}
	if snap.PhotoExists {
		resp.PhotoURL = photoURL(snap.PhotoVersion)
	}
	if snap.ResumeLocale != "" {
		resp.ResumeURL = "/assets/resume?locale=" + snap.ResumeLocale
	}
	return resp
}

func emptySnapshot() models.Snapshot {
	return models.Snapshot{
		Resumes:         []models.ResumeInfo{},
		GitHubLinks:     []models.Link{},
		WebsiteLinks:    []models.Link{},
		Accomplishments: []models.Accomplishment{},
		Traits:          []models.Trait{},
	}
}

func serveBytes(w http.ResponseWriter, mimeType, filename string, data []byte) {
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if filename != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": filename}))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
