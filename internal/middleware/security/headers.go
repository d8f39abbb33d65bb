package security

import (
	"fmt"
	"net/http"
)

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	CSP                 string
	HSTSMaxAge          int
	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	CrossOriginResource string
	CacheControl        string
}

// APIHeadersConfig suits JSON endpoints that never render markup.
func APIHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP:                 "default-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:          31536000,
		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "no-referrer",
		CrossOriginResource: "same-origin",
		CacheControl:        "no-store",
	}
}

// Headers returns middleware that applies cfg to every response.
func Headers(cfg HeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			set := func(key, value string) {
				if value != "" {
					h.Set(key, value)
				}
			}
			set("Content-Security-Policy", cfg.CSP)
			set("X-Frame-Options", cfg.XFrameOptions)
			set("X-Content-Type-Options", cfg.XContentTypeOptions)
			set("Referrer-Policy", cfg.ReferrerPolicy)
			set("Cross-Origin-Resource-Policy", cfg.CrossOriginResource)
			set("Cache-Control", cfg.CacheControl)
			// HSTS only over TLS
			if r.TLS != nil && cfg.HSTSMaxAge > 0 {
				h.Set("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}
