package controller

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"aqwesitod-shop/apperror"
)

// UserIDHeader carries the caller identity resolved by the upstream auth proxy
const UserIDHeader = "X-User-ID"

const maxBodyBytes = 1 << 20

// envelope is the body of every successful response
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

// errorBody is the body of every failed response
type errorBody struct {
	Success bool              `json:"success"`
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("❌ writeJSON: Error encoding response: %v", err)
	}
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// writeError maps an engine error to its status code. Internal errors are
// logged in full and reported with a generic message.
func writeError(w http.ResponseWriter, method string, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal(err)
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperror.KindNotFound:
		status = http.StatusNotFound
	case apperror.KindValidation:
		status = http.StatusBadRequest
	case apperror.KindConflict:
		status = http.StatusConflict
		if appErr.Retryable {
			w.Header().Set("Retry-After", "1")
		}
	}

	message := appErr.Message
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s: Internal error: %v", method, err)
		message = "Internal server error"
	} else {
		log.Printf("⚠️ %s: %s: %s %v", method, appErr.Kind, appErr.Message, appErr.Fields)
	}

	writeJSON(w, status, errorBody{
		Success: false,
		Type:    appErr.Kind.String(),
		Message: message,
		Details: appErr.Fields,
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, errorBody{
		Success: false,
		Type:    "AUTH_ERROR",
		Message: "user not authenticated",
	})
}

// decodeBody decodes a JSON request body into dst. Malformed bodies become
// validation errors.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Field("body", "Request body is required")
		}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperror.Field(typeErr.Field, "must be a "+typeErr.Type.String())
		}
		return apperror.Field("body", "Invalid JSON body: "+err.Error())
	}
	return nil
}

// userID returns the caller identity or writes 401
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if id == "" {
		log.Printf("❌ %s %s: Missing %s header", r.Method, r.URL.Path, UserIDHeader)
		writeUnauthorized(w)
		return "", false
	}
	return id, true
}

// queryInt reads an optional integer query parameter
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Field(key, key+" must be an integer")
	}
	return v, nil
}
