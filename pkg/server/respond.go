package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/geneatree/geneatree/pkg/errors"
	"github.com/geneatree/geneatree/pkg/tree/validate"
)

// maxBody bounds request bodies; person and relationship payloads are tiny.
const maxBody = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

type errorBody struct {
	Error    string      `json:"error"`
	Code     errors.Code `json:"code,omitempty"`
	Problems []string    `json:"problems,omitempty"`
}

// writeError writes err as a JSON error response. The status follows the
// error code; uncoded errors are internal errors.
func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: errors.UserMessage(err), Code: errors.GetCode(err)}
	var verr *validate.ValidationError
	if stderrors.As(err, &verr) {
		body.Problems = verr.Problems
	}
	writeJSON(w, statusFor(body.Code), body)
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeDecode:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// readJSON decodes the request body into v, rejecting unknown fields.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
