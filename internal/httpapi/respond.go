package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/emplix/emplix/internal/auth"
	"github.com/emplix/emplix/internal/service"
	"github.com/emplix/emplix/internal/store"
	"github.com/emplix/emplix/internal/tenant"
)

// errorBody is the wire shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string               `json:"code"`
	Message string               `json:"message"`
	Fields  []service.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

// writeError maps known business errors to stable codes; anything
// unrecognized becomes a logged 500 with no detail leaked.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:    "validation_error",
			Message: "one or more fields are invalid",
			Fields:  verr.Fields,
		}})
		return
	}

	switch {
	case errors.Is(err, tenant.ErrMissingTenant):
		writeErrorCode(w, http.StatusBadRequest, "missing_tenant", err.Error())
	case errors.Is(err, store.ErrTenantNotFound):
		writeErrorCode(w, http.StatusNotFound, "tenant_not_found", err.Error())
	case errors.Is(err, tenant.ErrSuspended):
		writeErrorCode(w, http.StatusPaymentRequired, "tenant_suspended", err.Error())
	case errors.Is(err, tenant.ErrInactive):
		writeErrorCode(w, http.StatusForbidden, "tenant_inactive", err.Error())

	case errors.Is(err, service.ErrInvalidCredentials):
		writeErrorCode(w, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, auth.ErrInvalidExternalToken):
		writeErrorCode(w, http.StatusUnauthorized, "invalid_external_token", err.Error())
	case errors.Is(err, service.ErrFederatedDisabled):
		writeErrorCode(w, http.StatusNotImplemented, "federated_disabled", err.Error())

	case errors.Is(err, service.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, service.ErrCrossTenantAccess):
		writeErrorCode(w, http.StatusForbidden, "cross_tenant_access", err.Error())
	case errors.Is(err, service.ErrAlreadyProcessed):
		writeErrorCode(w, http.StatusConflict, "already_processed", err.Error())

	case errors.Is(err, service.ErrAlreadyClockedIn):
		writeErrorCode(w, http.StatusConflict, "already_clocked_in", err.Error())
	case errors.Is(err, service.ErrAlreadyClockedOut):
		writeErrorCode(w, http.StatusConflict, "already_clocked_out", err.Error())
	case errors.Is(err, service.ErrNoClockIn):
		writeErrorCode(w, http.StatusConflict, "no_clock_in", err.Error())

	case errors.Is(err, service.ErrSelfSupervision):
		writeErrorCode(w, http.StatusBadRequest, "self_supervision", err.Error())
	case errors.Is(err, service.ErrSelfRecognition):
		writeErrorCode(w, http.StatusBadRequest, "self_recognition", err.Error())
	case errors.Is(err, service.ErrSenderNotFound):
		writeErrorCode(w, http.StatusNotFound, "sender_not_found", err.Error())
	case errors.Is(err, service.ErrReceiverNotFound):
		writeErrorCode(w, http.StatusNotFound, "receiver_not_found", err.Error())

	case errors.Is(err, store.ErrDuplicateEmail):
		writeErrorCode(w, http.StatusConflict, "duplicate_email", err.Error())
	case errors.Is(err, store.ErrDuplicateDocumentID):
		writeErrorCode(w, http.StatusConflict, "duplicate_document_id", err.Error())

	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Unhandled error")
		writeErrorCode(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		verr := &service.ValidationError{}
		verr.Fields = []service.FieldError{{Field: "body", Rule: "json", Message: "invalid request body"}}
		return verr
	}
	return nil
}
