package server

import (
	"encoding/json"
	"net/http"

	"github.com/koustreak/sqlbrowser/internal/errs"
)

// errorResponse is the JSON body of every failed request. Driver carries the
// database's own message, which is what the user should be shown.
type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Driver string `json:"driver,omitempty"`
}

func statusFor(kind errs.ErrKind) int {
	switch kind {
	case errs.ErrKindInvalidParams, errs.ErrKindInvalidInput, errs.ErrKindEditRejected:
		return http.StatusBadRequest
	case errs.ErrKindNotFound:
		return http.StatusNotFound
	case errs.ErrKindNotConnected:
		return http.StatusConflict
	case errs.ErrKindConnectFailed:
		return http.StatusBadGateway
	case errs.ErrKindTransactionBeginFailed, errs.ErrKindStatementFailed, errs.ErrKindCommitFailed:
		return http.StatusUnprocessableEntity
	case errs.ErrKindPermissionDenied:
		return http.StatusForbidden
	case errs.ErrKindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		s.log.ErrorWith("request failed", err, map[string]interface{}{
			"path": r.URL.Path,
		})
	}
	resp := errorResponse{Error: err.Error(), Kind: kind.String()}
	if text := errs.DriverText(err); text != err.Error() {
		resp.Driver = text
	}
	writeJSON(w, status, resp)
}

// decode reads a JSON body into v. Unknown fields are rejected.
func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid request body", err)
	}
	return nil
}
