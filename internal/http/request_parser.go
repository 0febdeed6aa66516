// This file holds helpers for reading ids, query parameters and JSON bodies.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 32 << 20
)

var (
	errMissingParam = errors.New("missing parameter")
	errInvalidParam = errors.New("invalid parameter")
)

// parsePositiveInt parses a 1-based id.
func parsePositiveInt(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errMissingParam
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, errInvalidParam
	}
	return n, nil
}

// ParseContextID reads ?context_id=.
func ParseContextID(r *http.Request) (int64, error) {
	return parsePositiveInt(r.URL.Query().Get("context_id"))
}

// ParsePathID reads the {id} path segment.
func ParsePathID(r *http.Request) (int64, error) {
	return parsePositiveInt(r.PathValue("id"))
}

// DecodeJSON reads a single JSON value from the body into v. Unknown fields
// are allowed so clients can send back rows they received.
func DecodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	if limit <= 0 {
		limit = maxBodyBytes
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return fmt.Errorf("request body exceeds %d bytes", tooBig.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return fmt.Errorf("invalid JSON body: trailing data")
	}
	return nil
}
