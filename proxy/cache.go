package proxy

import "net/http"

// suppressCache removes cache headers from the HTTP request so that the
// origin sends the full document and the injected styles stay current.
func suppressCache(r *http.Request) {
	// Last modified time based caching
	r.Header.Del("If-Modified-Since")
	r.Header.Del("If-Unmodified-Since")

	// ETag based caching
	r.Header.Del("If-None-Match")
	r.Header.Del("If-Match")
	r.Header.Del("If-Range")
}
