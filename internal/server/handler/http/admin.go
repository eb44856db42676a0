package http

import (
	"context"
	"net/http"

	"github.com/SRAS2024/About-Me/internal/apperror"
	"github.com/SRAS2024/About-Me/internal/locale"
	"github.com/SRAS2024/About-Me/internal/models"
	"github.com/SRAS2024/About-Me/internal/service"
	"go.uber.org/zap"
)

// CollectionEditor defines the collection operations required by the
// AdminHandler.
type CollectionEditor interface {
	Snapshot(ctx context.Context, requestedLocale string) (models.Snapshot, error)
	ReplaceLinkGroups(ctx context.Context, github, website []service.LinkInput) []models.GroupResult
	ReplaceTraits(ctx context.Context, traits []service.TraitInput) error
	ReplaceAccomplishments(ctx context.Context, items []service.AccomplishmentInput) error
}

// AssetEditor defines the asset operations required by the AdminHandler.
type AssetEditor interface {
	PutPhoto(ctx context.Context, filename string, raw []byte) (service.PhotoInfo, error)
	DeletePhoto(ctx context.Context) error
	PutResume(ctx context.Context, locale, filename string, raw []byte) error
	DeleteResume(ctx context.Context, locale string) error
}

// AdminHandler serves /admin/api. Authentication and the database gate are
// applied by middleware.
type AdminHandler struct {
	Collections    CollectionEditor
	Assets         AssetEditor
	Log            *zap.Logger
	MaxUploadBytes int64

	// SupportedLocales is reported with the state; nil uses locale.Supported.
	SupportedLocales []string
}

func (h *AdminHandler) limit() int64 {
	if h.MaxUploadBytes > 0 {
		return h.MaxUploadBytes
	}
	return DefaultMaxUploadBytes
}

type stateResponse struct {
	OK bool `json:"ok"`
	models.Snapshot
	PhotoURL string `json:"photo_url,omitempty"`
}

// State handles GET /admin/api/state.
func (h *AdminHandler) State(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Collections.Snapshot(r.Context(), r.URL.Query().Get("locale"))
	if err != nil {
		writeError(w, err)
		return
	}
	snap.SupportedLocales = h.SupportedLocales
	if snap.SupportedLocales == nil {
		snap.SupportedLocales = locale.Supported
	}
	resp := stateResponse{OK: true, Snapshot: snap}
	if snap.PhotoExists {
		resp.PhotoURL = photoURL(snap.PhotoVersion)
	}
	writeJSON(w, http.StatusOK, resp)
}

type groupsResponse struct {
	OK     bool                 `json:"ok"`
	Groups []models.GroupResult `json:"groups"`
}

// ReplaceLinks handles PUT /admin/api/links with body
// {"github": [...], "website": [...]}. Each group is saved on its own; the
// response is 400 if any group failed and lists every group's outcome.
func (h *AdminHandler) ReplaceLinks(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GitHub  []service.LinkInput `json:"github"`
		Website []service.LinkInput `json:"website"`
	}
	if err := decodeJSON(w, r, h.limit(), &req); err != nil {
		writeError(w, err)
		return
	}

	results := h.Collections.ReplaceLinkGroups(r.Context(), req.GitHub, req.Website)
	resp := groupsResponse{OK: true, Groups: results}
	status := http.StatusOK
	for _, res := range results {
		if !res.OK {
			resp.OK = false
			status = groupFailureStatus(res)
			break
		}
	}
	writeJSON(w, status, resp)
}

// ReplaceTraits handles PUT /admin/api/traits with body {"traits": [...]}.
func (h *AdminHandler) ReplaceTraits(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Traits []service.TraitInput `json:"traits"`
	}
	if err := decodeJSON(w, r, h.limit(), &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Collections.ReplaceTraits(r.Context(), req.Traits); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

// ReplaceAccomplishments handles PUT /admin/api/accomplishments with body
// {"accomplishments": [{"text": ...}]}.
func (h *AdminHandler) ReplaceAccomplishments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Accomplishments []service.AccomplishmentInput `json:"accomplishments"`
	}
	if err := decodeJSON(w, r, h.limit(), &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Collections.ReplaceAccomplishments(r.Context(), req.Accomplishments); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

// UploadPhoto handles POST /admin/api/photo, multipart field "photo".
func (h *AdminHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	raw, filename, err := readFormFile(w, r, h.limit(), "photo")
	if err != nil {
		writeError(w, err)
		return
	}
	info, err := h.Assets.PutPhoto(r.Context(), filename, raw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"width":     info.Width,
		"height":    info.Height,
		"photo_url": photoURL(info.Version),
	})
}

// DeletePhoto handles DELETE /admin/api/photo.
func (h *AdminHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	if err := h.Assets.DeletePhoto(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

// UploadResume handles POST /admin/api/resume, multipart field "resume"
// and form value "locale".
func (h *AdminHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	raw, filename, err := readFormFile(w, r, h.limit(), "resume")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Assets.PutResume(r.Context(), r.FormValue("locale"), filename, raw); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

// DeleteResume handles DELETE /admin/api/resume?locale=.
func (h *AdminHandler) DeleteResume(w http.ResponseWriter, r *http.Request) {
	if err := h.Assets.DeleteResume(r.Context(), r.URL.Query().Get("locale")); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

func groupFailureStatus(res models.GroupResult) int {
	return (&apperror.Error{Kind: apperror.Kind(res.Kind)}).Status()
}

func writeError(w http.ResponseWriter, err error) {
	apperror.Write(w, err)
}
