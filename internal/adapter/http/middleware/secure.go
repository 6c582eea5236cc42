package middleware

import (
	"net/http"

	"github.com/unrolled/secure"
)

// SecureHeaders sets the standard hardening headers on every response.
func SecureHeaders(isDevelopment bool) func(http.Handler) http.Handler {
	return secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'",
		IsDevelopment:         isDevelopment,
	}).Handler
}
