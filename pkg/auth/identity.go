package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"chatd/pkg/config"
	"chatd/pkg/logger"
	"chatd/pkg/utils"
)

type ctxCallerKey struct{}

// RequireSignedCaller verifies HMAC identity headers and injects the
// verified caller id into the request context. Trusted backend callers
// may assert an identity via X-User-ID without a signature; everyone else
// must present X-User-ID plus X-User-Signature signed by one of the
// configured signing secrets.
func RequireSignedCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := r.Header.Get("X-Role-Name")
		userID := strings.TrimSpace(r.Header.Get("X-User-ID"))
		sig := strings.TrimSpace(r.Header.Get("X-User-Signature"))

		if role == "backend" && sig == "" {
			if userID != "" {
				r = r.WithContext(context.WithValue(r.Context(), ctxCallerKey{}, userID))
			}
			next.ServeHTTP(w, r)
			return
		}

		if sig == "" || userID == "" {
			logger.Warn("missing_identity_headers", "path", r.URL.Path, "remote", r.RemoteAddr)
			utils.JSONError(w, http.StatusUnauthorized, "unauthenticated", "missing identity signature headers")
			return
		}

		keys := config.GetSigningKeys()
		if len(keys) == 0 {
			logger.Error("no_signing_keys_configured")
			utils.JSONError(w, http.StatusInternalServerError, "misconfigured", "no signing secrets available")
			return
		}

		ok := false
		for k := range keys {
			mac := hmac.New(sha256.New, []byte(k))
			mac.Write([]byte(userID))
			expected := hex.EncodeToString(mac.Sum(nil))
			if hmac.Equal([]byte(expected), []byte(sig)) {
				ok = true
				break
			}
		}
		if !ok {
			logger.Warn("invalid_identity_signature", "user", userID)
			utils.JSONError(w, http.StatusUnauthorized, "unauthenticated", "invalid identity signature")
			return
		}

		ctx := context.WithValue(r.Context(), ctxCallerKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerIDFromContext returns the verified caller id or empty string.
func CallerIDFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxCallerKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
