// Package httputil provides response helpers and middleware for the
// Swift-flavored wire surface served by pkg/mockswift.
package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SetStorageHeaders stamps the standard storage response headers: a
// transaction id and the request timestamp.
func SetStorageHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Trans-Id", "tx"+strings.ReplaceAll(uuid.NewString(), "-", "")[:21])
	w.Header().Set("X-Timestamp", FormatTimestamp(time.Now()))
}

// FormatTimestamp renders a time as the API's fractional epoch seconds
func FormatTimestamp(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixNano())/1e9, 'f', 5, 64)
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a plain-text error body, the storage API's error shape
func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintln(w, message)
}

// WriteUnauthorized writes a 401 in the storage API's error shape
func WriteUnauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, "Unauthorized. This server could not verify your credentials.")
}

// WriteNotFound writes a 404 in the storage API's error shape
func WriteNotFound(w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, "Not Found. The resource could not be found.")
}

// WriteConflict writes a 409 in the storage API's error shape
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, message)
}

// WriteNoContent writes a successful response with no body
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
