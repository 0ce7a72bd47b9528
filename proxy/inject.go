package proxy

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/filterkit/elemhide/rules"
)

// buildStyleCode builds the HTML style block that hides the elements matched
// by the rules.  Extended CSS selectors are skipped, a plain style block
// cannot express them.
func buildStyleCode(applicable []rules.Rule) string {
	var selectors []string
	var styles []string

	for _, r := range applicable {
		f, ok := r.(*rules.CosmeticRule)
		if !ok {
			continue
		}

		switch f.Type {
		case rules.CosmeticElementHiding:
			if !f.ExtendedCSS {
				selectors = append(selectors, f.Content)
			}
		case rules.CosmeticCSS:
			styles = append(styles, f.Content)
		}
	}

	if len(selectors) == 0 && len(styles) == 0 {
		return ""
	}

	sb := &strings.Builder{}
	sb.WriteString("<style type=\"text/css\">\n")

	if len(selectors) > 0 {
		sb.WriteString(strings.Join(selectors, ", "))
		sb.WriteString(" { display: none!important; }\n")
	}

	for _, style := range styles {
		sb.WriteString(style)
		sb.WriteByte('\n')
	}

	sb.WriteString("</style>")

	return sb.String()
}

// injectHTML inserts the style block into the page markup, right before the
// closing head tag when there is one.
func injectHTML(body, style string) string {
	lower := strings.ToLower(body)

	idx := strings.Index(lower, "</head>")
	if idx == -1 {
		idx = strings.Index(lower, "</body>")
	}

	if idx == -1 {
		return style + body
	}

	return body[:idx] + style + body[idx:]
}

// injectStyle replaces the response body with the one that has the style
// block injected.  Responses in a charset we cannot re-encode are returned
// unmodified.
func injectStyle(res *http.Response, style string) (modified *http.Response, err error) {
	_, params, _ := mime.ParseMediaType(res.Header.Get("Content-Type"))
	charset := strings.ToLower(params["charset"])

	switch charset {
	case "", "utf-8", "us-ascii", "iso-8859-1", "latin-1", "windows-1252":
		// Go ahead.
	default:
		return res, nil
	}

	latin1 := charset == "iso-8859-1" || charset == "latin-1" || charset == "windows-1252"

	origBody := res.Body
	defer origBody.Close()

	body, err := readBody(origBody, latin1)
	if err != nil {
		return nil, err
	}

	b, err := encodeBody(injectHTML(body, style), latin1)
	if err != nil {
		return nil, err
	}

	res.Body = io.NopCloser(bytes.NewReader(b))
	res.ContentLength = int64(len(b))
	res.Header.Set("Content-Length", strconv.Itoa(len(b)))

	return res, nil
}

// readBody reads the whole response body, decoding Latin1 when needed.
func readBody(reader io.Reader, latin1 bool) (body string, err error) {
	if latin1 {
		reader = transform.NewReader(reader, charmap.ISO8859_1.NewDecoder())
	}

	b, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// encodeBody encodes the modified body back into the response charset.
func encodeBody(body string, latin1 bool) (b []byte, err error) {
	if latin1 {
		return charmap.ISO8859_1.NewEncoder().Bytes([]byte(body))
	}

	return []byte(body), nil
}
