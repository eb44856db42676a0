package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/SRAS2024/About-Me/internal/apperror"
	"github.com/SRAS2024/About-Me/internal/models"
)

const (
	apiState           = "/admin/api/state"
	apiLinks           = "/admin/api/links"
	apiTraits          = "/admin/api/traits"
	apiAccomplishments = "/admin/api/accomplishments"
	apiPhoto           = "/admin/api/photo"
	apiResume          = "/admin/api/resume"
)

// LinkPayload is one link row as sent to the server.
type LinkPayload struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// PhotoUpload is the server response to a photo upload.
type PhotoUpload struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	PhotoURL string `json:"photo_url"`
}

// API is an HTTP client for the admin routes, authenticated with basic auth.
type API struct {
	BaseURL  string
	Username string
	Password string
	HTTP     *http.Client
}

// NewAPI creates an API client. A nil client uses http.DefaultClient.
func NewAPI(baseURL, username, password string, client *http.Client) *API {
	if client == nil {
		client = http.DefaultClient
	}
	return &API{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		Password: password,
		HTTP:     client,
	}
}

// State fetches the canonical snapshot. requestedLocale may be empty.
func (a *API) State(ctx context.Context, requestedLocale string) (models.Snapshot, error) {
	path := apiState
	if requestedLocale != "" {
		path += "?locale=" + url.QueryEscape(requestedLocale)
	}
	var snap models.Snapshot
	err := a.do(ctx, http.MethodGet, path, nil, "", &snap)
	return snap, err
}

// ReplaceLinks saves both link groups. The per-group results are returned
// even when the server rejects one of the groups.
func (a *API) ReplaceLinks(ctx context.Context, github, website []LinkPayload) ([]models.GroupResult, error) {
	body, err := json.Marshal(map[string]any{"github": github, "website": website})
	if err != nil {
		return nil, err
	}
	resp, err := a.send(ctx, http.MethodPut, apiLinks, bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var out struct {
		Groups []models.GroupResult `json:"groups"`
	}
	if json.Unmarshal(data, &out) == nil && len(out.Groups) > 0 {
		return out.Groups, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp.StatusCode, data)
	}
	return nil, fmt.Errorf("invalid response: missing groups")
}

// ReplaceTraits saves the trait list.
func (a *API) ReplaceTraits(ctx context.Context, traits []string) error {
	return a.putJSON(ctx, apiTraits, map[string]any{"traits": traits})
}

// ReplaceAccomplishments saves the accomplishment list.
func (a *API) ReplaceAccomplishments(ctx context.Context, items []string) error {
	payload := make([]map[string]string, len(items))
	for i, text := range items {
		payload[i] = map[string]string{"text": text}
	}
	return a.putJSON(ctx, apiAccomplishments, map[string]any{"accomplishments": payload})
}

// UploadPhoto sends data as the new profile photo.
func (a *API) UploadPhoto(ctx context.Context, filename string, data []byte) (PhotoUpload, error) {
	body, contentType, err := multipartFile("photo", filename, data, nil)
	if err != nil {
		return PhotoUpload{}, err
	}
	var out PhotoUpload
	err = a.do(ctx, http.MethodPost, apiPhoto, body, contentType, &out)
	return out, err
}

// DeletePhoto removes the profile photo.
func (a *API) DeletePhoto(ctx context.Context) error {
	return a.do(ctx, http.MethodDelete, apiPhoto, nil, "", nil)
}

// UploadResume sends data as the resume for loc.
func (a *API) UploadResume(ctx context.Context, loc, filename string, data []byte) error {
	body, contentType, err := multipartFile("resume", filename, data, map[string]string{"locale": loc})
	if err != nil {
		return err
	}
	return a.do(ctx, http.MethodPost, apiResume, body, contentType, nil)
}

// DeleteResume removes the resume for loc.
func (a *API) DeleteResume(ctx context.Context, loc string) error {
	return a.do(ctx, http.MethodDelete, apiResume+"?locale="+url.QueryEscape(loc), nil, "", nil)
}

func (a *API) putJSON(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return a.do(ctx, http.MethodPut, path, bytes.NewReader(body), "application/json", nil)
}

func (a *API) send(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(a.Username, a.Password)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := a.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	return resp, nil
}

// do sends the request and decodes a 200 response into out, if non-nil.
// Failures are returned as *apperror.Error when the server sent one.
func (a *API) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	resp, err := a.send(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body apperror.Body
	if err := json.Unmarshal(data, &body); err == nil && body.Code != "" {
		return apperror.New(body.Kind, body.Code, body.Message, nil)
	}
	return fmt.Errorf("server error: %d %s", status, strings.TrimSpace(string(data)))
}

func multipartFile(field, filename string, data []byte, values map[string]string) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func photoURL(version int64) string {
	return fmt.Sprintf("/assets/photo?v=%d", version)
}
