package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// ClientInfo is the request provenance recorded with a session.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// ClientInfoMiddleware captures user agent and originating address. When
// trustProxy is set the first X-Forwarded-For hop (or X-Real-IP) wins over
// the socket address.
func ClientInfoMiddleware(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := ClientInfo{UserAgent: r.UserAgent(), IPAddress: remoteIP(r, trustProxy)}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientKey, info)))
		})
	}
}

func ClientInfoFromContext(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientKey).(ClientInfo)
	return info
}

func remoteIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
