// Package mw carries the gateway middleware chain: request identity, API-key
// auth, access logging, CORS, and panic recovery.
package mw

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prepworks/interviewd/pkg/core"
	"github.com/prepworks/interviewd/pkg/gateway/auth"
	"github.com/prepworks/interviewd/pkg/gateway/config"
)

const requestIDHeader = "X-Request-ID"

type ctxKeyRequestID struct{}
type ctxKeyPrincipal struct{}

// principalSlot is installed by RequestID and filled in by Auth, so the
// outer access log can report who the request resolved to even though auth
// runs deeper in the chain.
type principalSlot struct {
	p   auth.Principal
	set bool
}

func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKeyRequestID{}).(string)
	return id, ok && id != ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyRequestID{}, id)
}

// PrincipalFrom reports the caller Auth resolved for this request.
func PrincipalFrom(ctx context.Context) (auth.Principal, bool) {
	slot, ok := ctx.Value(ctxKeyPrincipal{}).(*principalSlot)
	if !ok || !slot.set {
		return auth.Principal{}, false
	}
	return slot.p, true
}

// WithPrincipal returns a context carrying a resolved principal.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal{}, &principalSlot{p: p, set: true})
}

// RequestID tags every request with a gateway request id so interview, call,
// and scoring log lines can be correlated. An id supplied by the caller is
// kept; either way the id is echoed in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = newRequestID()
		}
		w.Header().Set(requestIDHeader, id)

		ctx := WithRequestID(r.Context(), id)
		ctx = context.WithValue(ctx, ctxKeyPrincipal{}, &principalSlot{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newRequestID() string {
	var b [10]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("ivd_t%x", time.Now().UnixNano())
	}
	return "ivd_" + hex.EncodeToString(b[:])
}

// Auth enforces the configured API-key mode against the keyring. Required
// mode rejects requests without a resolvable key; optional mode lets
// anonymous callers through but still rejects a presented key that does not
// resolve. The resolved principal is attached to the request.
func Auth(mode config.AuthMode, keys *auth.Keyring, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch mode {
		case config.AuthModeDisabled:
			next.ServeHTTP(w, r)
			return
		case config.AuthModeOptional, config.AuthModeRequired:
		default:
			denyJSON(w, r, http.StatusInternalServerError, &core.Error{
				Type:    core.ErrAPI,
				Message: "invalid auth_mode",
			})
			return
		}

		token, presented := auth.BearerToken(r)
		if !presented {
			if mode == config.AuthModeRequired {
				denyJSON(w, r, http.StatusUnauthorized, &core.Error{
					Type:    core.ErrAuthentication,
					Message: "missing bearer token",
					Param:   "Authorization",
				})
				return
			}
			next.ServeHTTP(w, attachPrincipal(r, auth.Anonymous))
			return
		}

		p, ok := keys.Resolve(token)
		if !ok {
			denyJSON(w, r, http.StatusUnauthorized, &core.Error{
				Type:    core.ErrAuthentication,
				Message: "invalid api key",
			})
			return
		}
		next.ServeHTTP(w, attachPrincipal(r, p))
	})
}

// attachPrincipal fills the slot installed by RequestID when present, so the
// principal is visible both downstream and to the outer access log. Without
// a slot (Auth used standalone) it falls back to a fresh context value.
func attachPrincipal(r *http.Request, p auth.Principal) *http.Request {
	if slot, ok := r.Context().Value(ctxKeyPrincipal{}).(*principalSlot); ok {
		slot.p, slot.set = p, true
		return r
	}
	return r.WithContext(WithPrincipal(r.Context(), p))
}

// Recover converts handler panics into the standard error envelope so one
// bad request cannot take the gateway down mid-interview.
func Recover(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				reqID, _ := RequestIDFrom(r.Context())
				if logger != nil {
					logger.Error("handler panic",
						"request_id", reqID,
						"method", r.Method,
						"path", r.URL.Path,
						"panic", v)
				}
				denyJSON(w, r, http.StatusInternalServerError, &core.Error{
					Type:    core.ErrAPI,
					Message: "internal error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type loggedResponse struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *loggedResponse) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *loggedResponse) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

// AccessLog emits one line per request. The key fingerprint appears only for
// authenticated callers; anonymous and auth-exempt traffic logs without it.
func AccessLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := &loggedResponse{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(lw, r)
		if logger == nil {
			return
		}
		reqID, _ := RequestIDFrom(r.Context())
		attrs := []any{
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", lw.status,
			"bytes", lw.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if p, ok := PrincipalFrom(r.Context()); ok && !p.Anonymous {
			attrs = append(attrs, "key", p.KeyID)
		}
		logger.Info("request", attrs...)
	})
}

func denyJSON(w http.ResponseWriter, r *http.Request, status int, errv *core.Error) {
	if id, ok := RequestIDFrom(r.Context()); ok {
		errv.RequestID = id
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Error *core.Error `json:"error"`
	}{errv})
}
