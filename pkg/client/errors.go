package client

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
	// Data is the parsed response body: a decoded JSON value, raw text, or nil.
	Data any
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsConflict reports a 409, which the backend uses for business-rule
// rejections such as a duplicate email.
func IsConflict(err error) bool {
	return IsStatus(err, http.StatusConflict)
}

const sessionExpiredMessage = "session expired, please sign in again"

var statusMessages = map[int]string{
	http.StatusBadRequest:          "invalid data",
	http.StatusUnauthorized:        "not authorized",
	http.StatusForbidden:           "access denied",
	http.StatusNotFound:            "resource not found",
	http.StatusConflict:            "data already exists",
	http.StatusInternalServerError: "server error",
}

// errorMessage picks the most useful message out of an error body.
func errorMessage(status int, data any) string {
	if status == http.StatusUnauthorized {
		return sessionExpiredMessage
	}

	switch v := data.(type) {
	case map[string]any:
		if msg := validationMessage(v["errors"]); msg != "" {
			return msg
		}
		if title, ok := v["title"].(string); ok && strings.Contains(strings.ToLower(title), "validation") {
			return title
		}
		for _, key := range []string{"message", "error", "detail", "title"} {
			if s, ok := v[key].(string); ok && s != "" {
				return s
			}
		}
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}

	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return fmt.Sprintf("request failed (%d)", status)
}

// validationMessage flattens either an array of {field, message} items or an
// ASP.NET-style {field: [messages]} map.
func validationMessage(raw any) string {
	var parts []string
	switch errs := raw.(type) {
	case []any:
		for _, e := range errs {
			switch item := e.(type) {
			case map[string]any:
				field, _ := item["field"].(string)
				if field == "" {
					field = "field"
				}
				msg, _ := item["message"].(string)
				parts = append(parts, field+": "+msg)
			default:
				parts = append(parts, "field: "+fmt.Sprint(item))
			}
		}
	case map[string]any:
		fields := make([]string, 0, len(errs))
		for f := range errs {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			switch msgs := errs[f].(type) {
			case []any:
				for _, m := range msgs {
					parts = append(parts, f+": "+fmt.Sprint(m))
				}
			default:
				parts = append(parts, f+": "+fmt.Sprint(msgs))
			}
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "validation errors: " + strings.Join(parts, ", ")
}
