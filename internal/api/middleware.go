package api

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"skin-market-go/internal/market"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	requestIdKey contextKey = "request_id"
	userIdKey    contextKey = "user_id"

	userHeader = "X-User-ID"
)

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get("X-Request-ID")
		if requestId == "" {
			requestId = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestId)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIdKey, requestId)))
	})
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIdKey).(string); ok {
		return id
	}
	return ""
}

// Logging writes one access log line per request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		zap.L().Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", wrapped.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", GetRequestID(r.Context())))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// Recovery turns a panic into a 500 response.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				zap.L().Error("Panic while serving request",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.ByteString("stack", debug.Stack()))
				writeJSON(w, http.StatusInternalServerError, envelope{
					Error: &errorBody{Code: "INTERNAL", Message: "internal server error"},
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Identity takes the acting user from the X-User-ID header. The engine checks
// that the user exists on every operation.
func (s *MarketService) Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userId := strings.TrimSpace(r.Header.Get(userHeader))
		if userId == "" {
			writeError(w, r, unauthorized(userHeader+" header is required"))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIdKey, userId)))
	})
}

// RequireAdmin rejects actors without the Admin role.
func (s *MarketService) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.engine.User(r.Context(), actor(r))
		if err != nil {
			if market.IsKind(err, market.KindNotFound) {
				writeError(w, r, unauthorized("unknown user"))
				return
			}
			writeError(w, r, err)
			return
		}
		if !user.IsAdmin() {
			writeError(w, r, forbidden("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func actor(r *http.Request) string {
	id, _ := r.Context().Value(userIdKey).(string)
	return id
}
