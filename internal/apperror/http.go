package apperror

import (
	"encoding/json"
	"net/http"
)

// Body is the JSON shape of every failed API response.
type Body struct {
	OK      bool   `json:"ok"`
	Code    string `json:"error"`
	Message string `json:"message"`
	Kind    Kind   `json:"kind"`
}

// Write sends err as a JSON failure with the status of its kind.
func Write(w http.ResponseWriter, err error) {
	appErr := As(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status())
	_ = json.NewEncoder(w).Encode(Body{
		OK:      false,
		Code:    appErr.Code,
		Message: appErr.Message,
		Kind:    appErr.Kind,
	})
}
