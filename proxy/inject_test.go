package proxy

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filterkit/elemhide/rules"
)

func TestBuildStyleCode(t *testing.T) {
	applicable := []rules.Rule{
		newTestRule(t, "##banner"),
		newTestRule(t, "example.org###sidebar_ad"),
		newTestRule(t, "example.org#?#.banner:has-text(ads)"),
		newTestRule(t, "example.org#$#.promo { visibility: hidden; }"),
		newTestRule(t, "example.org#%#window.ads = false;"),
	}

	style := buildStyleCode(applicable)

	assert.Contains(t, style, "banner, #sidebar_ad { display: none!important; }")
	assert.Contains(t, style, ".promo { visibility: hidden; }")

	// Extended CSS selectors and script rules don't fit a style block.
	assert.NotContains(t, style, "has-text")
	assert.NotContains(t, style, "window.ads")

	assert.Equal(t, "", buildStyleCode(nil))
	assert.Equal(t, "", buildStyleCode([]rules.Rule{
		newTestRule(t, "example.org#%#window.ads = false;"),
	}))
}

func TestInjectHTML(t *testing.T) {
	const style = "<style>#banner { display: none!important; }</style>"

	body := "<html><head><title>t</title></head><body></body></html>"
	modified := injectHTML(body, style)
	assert.Equal(t,
		"<html><head><title>t</title>"+style+"</head><body></body></html>",
		modified)

	// No head: inject before the closing body tag.
	body = "<html><body>text</body></html>"
	modified = injectHTML(body, style)
	assert.Equal(t, "<html><body>text"+style+"</body></html>", modified)

	// Neither: prepend.
	body = "text only"
	modified = injectHTML(body, style)
	assert.Equal(t, style+"text only", modified)
}

func TestInjectStyle(t *testing.T) {
	const style = "<style>#banner { display: none!important; }</style>"
	const body = "<html><head></head><body></body></html>"

	res := &http.Response{
		Header: http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:   io.NopCloser(strings.NewReader(body)),
	}

	modified, err := injectStyle(res, style)
	require.NoError(t, err)

	b, err := io.ReadAll(modified.Body)
	require.NoError(t, err)

	assert.Contains(t, string(b), style)
	assert.Equal(t, int64(len(b)), modified.ContentLength)

	// Unknown charsets are passed through unmodified.
	res = &http.Response{
		Header: http.Header{"Content-Type": []string{"text/html; charset=shift_jis"}},
		Body:   io.NopCloser(strings.NewReader(body)),
	}

	modified, err = injectStyle(res, style)
	require.NoError(t, err)

	b, err = io.ReadAll(modified.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(b))
}

func TestIsHTMLResponse(t *testing.T) {
	res := &http.Response{
		Header: http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
	}
	assert.True(t, isHTMLResponse(res))

	res.Header.Set("Content-Encoding", "gzip")
	assert.False(t, isHTMLResponse(res))

	res = &http.Response{
		Header: http.Header{"Content-Type": []string{"application/json"}},
	}
	assert.False(t, isHTMLResponse(res))

	assert.False(t, isHTMLResponse(nil))
}

// newTestRule parses a single cosmetic rule, failing the test on error.
func newTestRule(t *testing.T, line string) rules.Rule {
	t.Helper()

	rule, err := rules.NewCosmeticRule(line, 1)
	require.NoError(t, err)

	return rule
}
