package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hexplanner/pkg/errors"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine code and the user-facing message.
type ErrorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// Error writes err as an ErrorBody. Uncoded errors are logged and reported
// as INTERNAL_ERROR.
func Error(w http.ResponseWriter, logger *log.Logger, err error) {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" {
		if logger != nil {
			logger.Error("request failed", "err", err)
		}
		code = errors.ErrCodeInternal
		msg = "internal error"
	}
	JSON(w, errors.HTTPStatus(code), ErrorBody{Error: ErrorDetail{Code: code, Message: msg}})
}
