package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/SRAS2024/About-Me/internal/apperror"
)

// DefaultMaxUploadBytes limits request bodies on admin routes.
const DefaultMaxUploadBytes int64 = 16 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return bodyError(err, limit)
	}
	return nil
}

// readFormFile reads the multipart file field from a size-limited body.
func readFormFile(w http.ResponseWriter, r *http.Request, limit int64, field string) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, "", bodyError(err, limit)
	}
	f, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", apperror.Validationf(apperror.CodeInvalidRequest, "missing file field: %s", field)
	}
	if err != nil {
		return nil, "", bodyError(err, limit)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, "", bodyError(err, limit)
	}
	if len(raw) == 0 {
		return nil, "", apperror.Validation(apperror.CodeEmptyField, "empty file")
	}
	return raw, header.Filename, nil
}

func bodyError(err error, limit int64) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.Validationf(apperror.CodeTooLarge, "request body exceeds %d bytes", limit)
	}
	return apperror.Validation(apperror.CodeInvalidRequest, fmt.Sprintf("invalid body: %v", err))
}

func photoURL(version int64) string {
	return fmt.Sprintf("/assets/photo?v=%d", version)
}
