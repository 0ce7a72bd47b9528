package proxy

import (
	"mime"
	"net/http"
	"strings"

	"github.com/AdguardTeam/golibs/log"
	"github.com/AdguardTeam/gomitmproxy"
	"github.com/AdguardTeam/gomitmproxy/proxyutil"

	"github.com/filterkit/elemhide/filterutil"
)

// onRequest handles the outgoing HTTP requests
func (s *Server) onRequest(sess *gomitmproxy.Session) (*http.Request, *http.Response) {
	r := sess.Request()

	if r.Method == http.MethodConnect {
		// Do nothing for CONNECT requests
		return nil, nil
	}

	if isDocumentRequest(r) {
		// Ask for an identity-encoded body so that the response can be
		// modified without recompression, and suppress caching so that
		// the injected styles stay current.
		r.Header.Set("Accept-Encoding", "identity")
		suppressCache(r)
	}

	return r, nil
}

// onResponse handles all the responses
func (s *Server) onResponse(sess *gomitmproxy.Session) *http.Response {
	res := sess.Response()
	req := sess.Request()

	if !isHTMLResponse(res) {
		return nil
	}

	hostname := filterutil.ExtractHostname(req.URL.String())
	if hostname == "" {
		hostname = req.Host
	}

	applicable := s.rulesForHostname(hostname)
	style := buildStyleCode(applicable)
	if style == "" {
		return nil
	}

	log.Debug("elemhide: id=%s: injecting %d rules into %s", sess.ID(), len(applicable), hostname)

	modified, err := injectStyle(res, style)
	if err != nil {
		log.Error("elemhide: id=%s: cannot filter the response: %v", sess.ID(), err)

		return proxyutil.NewErrorResponse(req, err)
	}

	return modified
}

// isDocumentRequest checks if the request expects an HTML document.
func isDocumentRequest(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// isHTMLResponse checks if the response body is an HTML document that can be
// modified in place.  Bodies with a content encoding are left alone.
func isHTMLResponse(res *http.Response) bool {
	if res == nil || res.Header.Get("Content-Encoding") != "" {
		return false
	}

	mediaType, _, _ := mime.ParseMediaType(res.Header.Get("Content-Type"))

	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
