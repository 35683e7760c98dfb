package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	rwerrors "github.com/matzehuels/rigwall/pkg/errors"
	"github.com/matzehuels/rigwall/pkg/submit"
)

// maxBody caps JSON request bodies.
const maxBody = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code       string              `json:"code"`
	Message    string              `json:"message"`
	Fields     []submit.FieldError `json:"fields,omitempty"`
	RetryAfter int                 `json:"retry_after,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the status and code carried by err. Errors
// without a code are logged and reported as a generic internal error.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := rwerrors.HTTPStatus(err)
	body := errorBody{Code: string(rwerrors.GetCode(err)), Message: rwerrors.UserMessage(err)}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		body = errorBody{Code: string(rwerrors.ErrCodeInternal), Message: "internal error"}
	}

	var ve *submit.ValidationError
	if errors.As(err, &ve) {
		body.Fields = ve.Fields
	}
	var rl *rwerrors.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		body.RetryAfter = rl.RetryAfter
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a JSON request body into v, rejecting unknown fields.
// An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return rwerrors.Wrap(rwerrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
