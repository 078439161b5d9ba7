package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"skin-market-go/internal/market"
	"skin-market-go/internal/pricing"

	"go.uber.org/zap"
)

// envelope is the body of every response.
type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiError is an error already translated to an HTTP status.
type apiError struct {
	status  int
	code    string
	message string
}

func (e *apiError) Error() string { return e.message }

func badRequest(message string) *apiError {
	return &apiError{status: http.StatusBadRequest, code: "VALIDATION", message: message}
}

func unauthorized(message string) *apiError {
	return &apiError{status: http.StatusUnauthorized, code: "UNAUTHORIZED", message: message}
}

func forbidden(message string) *apiError {
	return &apiError{status: http.StatusForbidden, code: "FORBIDDEN", message: message}
}

var kindStatus = map[market.Kind]int{
	market.KindNotFound:          http.StatusNotFound,
	market.KindValidation:        http.StatusBadRequest,
	market.KindInvalidState:      http.StatusConflict,
	market.KindConflict:          http.StatusConflict,
	market.KindBusinessRule:      http.StatusUnprocessableEntity,
	market.KindInsufficientFunds: http.StatusPaymentRequired,
}

// translate maps engine errors onto HTTP errors. Anything unrecognised is an
// infrastructure failure and its details stay in the log.
func translate(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}
	var me *market.Error
	if errors.As(err, &me) {
		return &apiError{status: kindStatus[me.Kind], code: codeFor(me.Kind), message: me.Message}
	}
	if errors.Is(err, pricing.ErrInvalidFilter) {
		return badRequest(err.Error())
	}
	return &apiError{status: http.StatusInternalServerError, code: "INTERNAL", message: "an unexpected error occurred"}
}

func codeFor(k market.Kind) string {
	switch k {
	case market.KindNotFound:
		return "NOT_FOUND"
	case market.KindValidation:
		return "VALIDATION"
	case market.KindInvalidState:
		return "INVALID_STATE"
	case market.KindConflict:
		return "CONFLICT"
	case market.KindBusinessRule:
		return "BUSINESS_RULE"
	case market.KindInsufficientFunds:
		return "INSUFFICIENT_FUNDS"
	}
	return "INTERNAL"
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("Failed to encode response", zap.Error(err))
	}
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func created(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: data})
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := translate(err)
	if ae.status >= http.StatusInternalServerError {
		zap.L().Error("Request failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, ae.status, envelope{Error: &errorBody{Code: ae.code, Message: ae.message}})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("invalid JSON body: " + err.Error())
	}
	return nil
}
