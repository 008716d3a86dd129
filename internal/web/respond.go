// internal/web/respond.go
//
// JSON response helpers and the error-to-status mapping.
//
// Every error the service layer can return falls into one bucket:
//
//   • validation failures, malformed input        → 400
//   • bad credentials, bad or missing token       → 401
//   • quota exhausted                             → 403
//   • unknown or unowned resource                 → 404
//   • name already taken                          → 409
//   • upload over the size ceiling                → 413
//   • provider, storage, or database failures     → 500
//
// The body shape is {"error": "..."} for failures and the resource JSON
// (or a wrapper) for successes.
package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sriox/platform/internal/account"
	"github.com/sriox/platform/internal/provision"
	"github.com/sriox/platform/internal/resource"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto an HTTP status and emits the error body.
// Internal failures are logged with their cause but surface a generic
// message, so provider details never leak to clients.
func writeError(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	var (
		verr  *provision.ValidationError
		averr *account.ValidationError
		perr  *provision.ProviderError
		serr  *provision.StorageError
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Reason})
	case errors.As(err, &averr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: averr.Reason})
	case errors.Is(err, provision.ErrUploadTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "Upload exceeds the maximum allowed size."})
	case errors.Is(err, account.ErrBadCredentials), errors.Is(err, account.ErrBadToken):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, resource.ErrQuotaExceeded):
		writeJSON(w, http.StatusForbidden, errorBody{Error: "Resource quota reached for this account."})
	case errors.Is(err, resource.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Resource not found."})
	case errors.Is(err, resource.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: "Name already in use."})
	case errors.As(err, &perr):
		log.Errorw("provider failure", "op", perr.Op, "err", perr.Err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Provisioning failed; no changes were kept."})
	case errors.As(err, &serr):
		log.Errorw("storage failure", "op", serr.Op, "err", serr.Err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Provisioning failed; no changes were kept."})
	default:
		log.Errorw("unhandled error", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error."})
	}
}

// badRequest is for malformed request envelopes (bad JSON, bad ID), which
// never reach the service layer.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}
