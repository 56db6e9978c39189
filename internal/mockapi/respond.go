package mockapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

type errorBody struct {
	Title   string              `json:"title,omitempty"`
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// writeValidation answers in the shape ASP.NET uses for model validation.
func writeValidation(w http.ResponseWriter, err error) {
	body := errorBody{
		Title:  "One or more validation errors occurred.",
		Errors: map[string][]string{},
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		body.Errors["body"] = []string{err.Error()}
		writeJSON(w, http.StatusBadRequest, body)
		return
	}
	for _, e := range verrs {
		body.Errors[e.Field()] = append(body.Errors[e.Field()], "failed "+e.Tag())
	}
	writeJSON(w, http.StatusBadRequest, body)
}
