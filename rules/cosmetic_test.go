package rules

import (
	"testing"

	"github.com/AdguardTeam/golibs/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCosmeticRule(t *testing.T) {
	f, err := NewCosmeticRule("##banner", 1)
	assert.Nil(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, 1, f.FilterListID)
	assert.Equal(t, CosmeticElementHiding, f.Type)
	assert.False(t, f.Whitelist)
	assert.False(t, f.ExtendedCSS)
	assert.Empty(t, f.permittedDomains)
	assert.Empty(t, f.restrictedDomains)
	assert.Equal(t, "banner", f.Content)

	f, err = NewCosmeticRule("example.org,~sub.example.org##banner", 1)
	assert.Nil(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, CosmeticElementHiding, f.Type)
	assert.False(t, f.Whitelist)
	assert.False(t, f.ExtendedCSS)
	assert.Equal(t, 1, len(f.permittedDomains))
	assert.Equal(t, 1, len(f.restrictedDomains))
	assert.Equal(t, "example.org", f.permittedDomains[0])
	assert.Equal(t, "sub.example.org", f.restrictedDomains[0])
	assert.Equal(t, "banner", f.Content)

	f, err = NewCosmeticRule("example.org#@#banner", 1)
	assert.Nil(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, CosmeticElementHiding, f.Type)
	assert.True(t, f.Whitelist)
	assert.False(t, f.ExtendedCSS)
	assert.Equal(t, 1, len(f.permittedDomains))
	assert.Equal(t, "example.org", f.permittedDomains[0])
	assert.Empty(t, f.restrictedDomains)
	assert.Equal(t, "banner", f.Content)

	f, err = NewCosmeticRule("example.org#?#.banner:contains(ads)", 1)
	assert.Nil(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, CosmeticElementHiding, f.Type)
	assert.False(t, f.Whitelist)
	assert.True(t, f.ExtendedCSS)
	assert.Equal(t, ".banner:contains(ads)", f.Content)

	f, err = NewCosmeticRule("example.org#$#.banner { visibility: hidden; }", 1)
	assert.Nil(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, CosmeticCSS, f.Type)
	assert.False(t, f.Whitelist)
	assert.Equal(t, ".banner { visibility: hidden; }", f.Content)
	assert.Equal(t, ".banner", f.Selector())

	f, err = NewCosmeticRule("example.org#%#window.ads = false;", 1)
	assert.Nil(t, err)
	assert.NotNil(t, f)
	assert.Equal(t, CosmeticJS, f.Type)
	assert.False(t, f.Whitelist)
	assert.Equal(t, "window.ads = false;", f.Content)
}

func TestCosmeticRuleValidation(t *testing.T) {
	_, err := NewCosmeticRule("||example.org^", 1)
	assert.NotNil(t, err)
	testutil.AssertErrorMsg(t, "syntax error: cannot find rule marker, rule: ||example.org^", err)

	_, err = NewCosmeticRule("example.org## ", 1)
	assert.NotNil(t, err)

	_, err = NewCosmeticRule("#@#.banner", 1)
	assert.NotNil(t, err)
	testutil.AssertErrorMsg(
		t,
		"syntax error: whitelist rule must have at least one permitted domain, rule: #@#.banner",
		err,
	)

	_, err = NewCosmeticRule("invalid domain##banner", 1)
	assert.NotNil(t, err)
}

func TestCosmeticRuleMatch(t *testing.T) {
	f, err := NewCosmeticRule("##banner", 1)
	assert.Nil(t, err)
	assert.NotNil(t, f)
	assert.True(t, f.Match("example.org"))

	f, err = NewCosmeticRule("example.org,~sub.example.org##banner", 1)
	assert.Nil(t, err)
	assert.NotNil(t, f)
	assert.True(t, f.Match("example.org"))
	assert.True(t, f.Match("test.example.org"))
	assert.False(t, f.Match("testexample.org"))
	assert.False(t, f.Match("sub.example.org"))
	assert.False(t, f.Match("sub.sub.example.org"))
}

func TestCosmeticRuleWildcardTLDMatch(t *testing.T) {
	f, err := NewCosmeticRule("example.*##banner", 1)
	assert.Nil(t, err)
	assert.NotNil(t, f)

	assert.True(t, f.Match("example.org"))
	assert.True(t, f.Match("test.example.org"))
	assert.True(t, f.Match("example.co.uk"))
	assert.False(t, f.Match("example.local"))
	assert.False(t, f.Match("example.local.test"))
}

func TestCosmeticRuleMatchingKey(t *testing.T) {
	f, err := NewCosmeticRule("##banner", 1)
	require.NoError(t, err)
	assert.Equal(t, "banner", f.MatchingKey())
	assert.False(t, f.IsException())

	f, err = NewCosmeticRule("example.org#@#banner", 1)
	require.NoError(t, err)
	assert.Equal(t, "banner", f.MatchingKey())
	assert.True(t, f.IsException())
	assert.Equal(t, []string{"example.org"}, f.GetPermittedDomains())
}

func TestRestrictedDomainsSetSemantics(t *testing.T) {
	f, err := NewCosmeticRule("~a.com##banner", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.com"}, f.GetRestrictedDomains())

	// Adding is a set union, duplicates are skipped.
	f.AddRestrictedDomains([]string{"a.com", "b.com"})
	f.AddRestrictedDomains([]string{"b.com"})
	assert.Equal(t, []string{"a.com", "b.com"}, f.GetRestrictedDomains())

	// Removing unknown domains is a no-op.
	f.RemoveRestrictedDomains([]string{"c.com"})
	assert.Equal(t, []string{"a.com", "b.com"}, f.GetRestrictedDomains())

	f.RemoveRestrictedDomains([]string{"b.com"})
	assert.Equal(t, []string{"a.com"}, f.GetRestrictedDomains())

	f.RemoveRestrictedDomains([]string{"a.com"})
	assert.Empty(t, f.GetRestrictedDomains())
}

func TestNewRule(t *testing.T) {
	testCases := []struct {
		name     string
		line     string
		wantRule bool
		wantErr  bool
	}{{
		name: "empty",
		line: "",
	}, {
		name: "comment",
		line: "! here goes a comment",
	}, {
		name: "hash_comment",
		line: "# another comment",
	}, {
		name:     "element_hiding",
		line:     "##banner",
		wantRule: true,
	}, {
		name:    "exception_without_domains",
		line:    "#@#banner",
		wantErr: true,
	}, {
		name:    "network_rule",
		line:    "||example.org^",
		wantErr: true,
	}}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewRule(tc.line, 1)
			if tc.wantErr {
				require.Error(t, err)
				assert.Nil(t, r)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantRule, r != nil)
		})
	}

	r, err := NewRule("||example.org^", 1)
	require.ErrorIs(t, err, ErrUnsupportedRule)
	assert.Nil(t, r)
}
