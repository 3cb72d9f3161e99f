package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sherinaayu/prototype-ecommerce/internal/auth"
)

// AuthMiddleware resolves the bearer token to an identity and stores it in
// the request context. Requests without a valid session proceed as
// anonymous; handlers that need a signed-in user reject those themselves.
func AuthMiddleware(authenticator auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := authenticator.CurrentUser(bearerToken(r))
			ctx := context.WithValue(r.Context(), "identity", identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func identityFromContext(ctx context.Context) auth.Identity {
	if id, ok := ctx.Value("identity").(auth.Identity); ok {
		return id
	}
	return auth.Anonymous
}

func getRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value("request_id").(string); ok {
		return requestID
	}
	return ""
}
