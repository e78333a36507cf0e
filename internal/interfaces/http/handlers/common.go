// Package handlers implements the HTTP handlers of the analysis API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/turtacn/lipinski-analyzer/pkg/errors"
	"github.com/turtacn/lipinski-analyzer/pkg/types/lipinski"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeAppError maps err to the status of its error code. Messages of server
// errors are replaced with the code's default message.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	msg := errors.DefaultMessageForCode(code)
	var appErr *errors.AppError
	if status < http.StatusInternalServerError && errors.As(err, &appErr) {
		msg = appErr.Message
		if appErr.Detail != "" {
			msg += ": " + appErr.Detail
		}
	}
	writeJSON(w, status, lipinski.ErrorResponse{Code: string(code), Message: msg})
}

// queryInt parses a non-negative integer query parameter, returning def when
// the parameter is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.Newf(errors.ErrCodeValidation, "%s must be a non-negative integer", name)
	}
	return n, nil
}

//Personal.AI order the ending
