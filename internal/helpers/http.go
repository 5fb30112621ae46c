package helpers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/isometry/webhook-relay/internal/models"
)

type httpResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// EncodeBody renders the JSON envelope returned to callers in every runtime mode.
func EncodeBody(response models.Response, err error) string {
	hR := httpResponse{
		Message: response.Body,
	}
	if err != nil {
		hR.Error = err.Error()
	}
	respBody, _ := json.Marshal(hR)
	return string(respBody)
}

// RespondHTTP writes the response envelope with its headers and status code.
func RespondHTTP(response models.Response, err error, rw http.ResponseWriter) {
	statusCode := response.StatusCode
	if statusCode == 0 {
		statusCode = http.StatusOK
	}
	rw.Header().Set("Content-Type", "application/json")
	for k, v := range response.Headers {
		rw.Header().Set(k, v)
	}
	rw.WriteHeader(statusCode)
	_, _ = rw.Write([]byte(EncodeBody(response, err)))
}

// LowerHeaders flattens HTTP headers into a lower-cased map. Repeated values are joined with ", ".
func LowerHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		headers[strings.ToLower(k)] = strings.Join(v, ", ")
	}
	return headers
}

// LowerHeaderMap lower-cases the keys of an already flattened header map.
func LowerHeaderMap(h map[string]string) map[string]string {
	headers := make(map[string]string, len(h))
	for k, v := range h {
		headers[strings.ToLower(k)] = v
	}
	return headers
}
