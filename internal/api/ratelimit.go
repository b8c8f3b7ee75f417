package api

import (
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/shelfnotes/shelfnotes-server/internal/errors"
)

// authRateLimit is a huma operation middleware that limits credential endpoints per client IP.
// RealIP has already resolved proxy headers into RemoteAddr.
func (s *Server) authRateLimit(ctx huma.Context, next func(huma.Context)) {
	key := clientIP(ctx.RemoteAddr())
	if !s.authRateLimiter.Allow(key) {
		s.logger.Warn("rate limit exceeded",
			"ip", key,
			"path", ctx.URL().Path,
		)
		_ = huma.WriteErr(s.api, ctx, http.StatusTooManyRequests, "too many requests",
			domainerrors.RateLimited("too many requests, please try again later"))
		return
	}
	next(ctx)
}

// clientIP strips the port from a remote address.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
