package api

import (
	"encoding/json"
	"errors"
	"net/http"

	cverrors "github.com/complyviz/complyviz/pkg/errors"
	"github.com/complyviz/complyviz/pkg/store"
)

// errorBody is the JSON error envelope returned by every endpoint.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code cverrors.Code, message string) {
	var body errorBody
	body.Error.Code = string(code)
	body.Error.Message = message
	writeJSON(w, status, body)
}

// writeStoreError maps store sentinel errors onto status codes and error
// codes; anything unrecognized is a 500.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, cverrors.ErrCodeNotFound, err.Error())
	case errors.Is(err, store.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, cverrors.ErrCodeInvalidInput, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, cverrors.ErrCodeStore, cverrors.UserMessage(err))
	}
}

// decodeBody decodes a JSON request body into v, reporting a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, cverrors.ErrCodeInvalidInput, "invalid request body")
		return false
	}
	return true
}
