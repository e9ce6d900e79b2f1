package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"devevent/errs"
)

type M map[string]interface{}

// RespondWithJSON writes data as JSON with the given status.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// RespondWithError writes {"message": msg}.
func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, M{"message": msg})
}

// RespondWithStoreError maps a store error onto a status and body. Anything
// uncategorized becomes a 500 with failure as the message and a short
// description that never includes driver detail.
func RespondWithStoreError(w http.ResponseWriter, err error, failure string) {
	status := errs.Status(err)
	if status == http.StatusInternalServerError {
		RespondWithJSON(w, status, M{"message": failure, "error": ShortError(err)})
		return
	}

	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		RespondWithJSON(w, status, M{"message": "Validation failed", "errors": verr.Fields})
		return
	}
	RespondWithError(w, status, err.Error())
}

// ShortError is the client-safe description of an unexpected failure.
func ShortError(err error) string {
	var (
		cerr  *errs.ConnectionError
		cferr *errs.ConfigurationError
	)
	switch {
	case errors.As(err, &cerr):
		return "database unavailable"
	case errors.As(err, &cferr):
		return "server misconfigured"
	default:
		return "internal error"
	}
}

var errTrailingData = errors.New("request body must contain a single JSON value")

// DecodeJSON reads a JSON body into dst, rejecting unknown fields and
// anything after the first value.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}
