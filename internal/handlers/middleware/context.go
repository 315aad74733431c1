// internal/handlers/middleware/context.go
package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/google/uuid"

	"github.com/ammerola/backoffice-be/internal/pkg/logger"
)

// RequestID keeps an id set by a proxy or generates one, stores it on the
// context and echoes it in the response
func RequestID(header string) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultRequestIDHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(header)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(header, id)
			next.ServeHTTP(w, r.WithContext(logger.WithValue(r.Context(), logger.ContextKeyRequestID, id)))
		})
	}
}

// ActingUser copies the authenticated user id set by the gateway onto the
// context. Requests without it pass through; handlers that need a user reject
// them.
func ActingUser(header string) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultUserIDHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := strings.TrimSpace(r.Header.Get(header)); userID != "" {
				r = r.WithContext(logger.WithValue(r.Context(), logger.ContextKeyUserID, userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP resolves the caller address once and stores it on the context.
// Forwarding headers are honoured only when the direct peer is one of the
// trusted proxies (IPs or CIDRs); an empty list trusts every peer.
func ClientIP(trustedProxies []string) func(http.Handler) http.Handler {
	var trusted []netip.Prefix
	for _, p := range trustedProxies {
		if prefix, err := netip.ParsePrefix(p); err == nil {
			trusted = append(trusted, prefix)
		} else if addr, err := netip.ParseAddr(p); err == nil {
			trusted = append(trusted, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	trustAll := len(trustedProxies) == 0

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := resolveClientIP(r, func(peer string) bool {
				if trustAll {
					return true
				}
				addr, err := netip.ParseAddr(peer)
				if err != nil {
					return false
				}
				for _, p := range trusted {
					if p.Contains(addr.Unmap()) {
						return true
					}
				}
				return false
			})
			next.ServeHTTP(w, r.WithContext(logger.WithValue(r.Context(), logger.ContextKeyClientIP, ip)))
		})
	}
}

// clientIP prefers the address ClientIP stored and falls back to trusting
// the forwarding headers
func clientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(logger.ContextKeyClientIP).(string); ok && ip != "" {
		return ip
	}
	return resolveClientIP(r, func(string) bool { return true })
}

func resolveClientIP(r *http.Request, trusted func(peer string) bool) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !trusted(peer) {
		return peer
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}
