package rules

import "strings"

// CosmeticRuleType is the enumeration of different cosmetic rule kinds.
type CosmeticRuleType int

// CosmeticRuleType enumeration
const (
	// CosmeticElementHiding is a rule hiding page elements matched by a
	// CSS selector (##, #@#, #?#, #@?#).
	CosmeticElementHiding CosmeticRuleType = iota

	// CosmeticCSS is a rule injecting a CSS style into the page
	// (#$#, #@$#).
	CosmeticCSS

	// CosmeticJS is a rule injecting a script into the page (#%#, #@%#).
	CosmeticJS
)

// cosmeticMarker describes a rule marker together with the properties it
// assigns to the parsed rule.
type cosmeticMarker struct {
	marker    string
	ruleType  CosmeticRuleType
	whitelist bool
	extCSS    bool
}

// cosmeticMarkers is ordered so that at equal offsets the longer (and
// whitelist) markers are preferred over their shorter prefixes.
var cosmeticMarkers = []cosmeticMarker{
	{marker: "#@$#", ruleType: CosmeticCSS, whitelist: true},
	{marker: "#@?#", ruleType: CosmeticElementHiding, whitelist: true, extCSS: true},
	{marker: "#@%#", ruleType: CosmeticJS, whitelist: true},
	{marker: "#$#", ruleType: CosmeticCSS},
	{marker: "#?#", ruleType: CosmeticElementHiding, extCSS: true},
	{marker: "#%#", ruleType: CosmeticJS},
	{marker: "#@#", ruleType: CosmeticElementHiding, whitelist: true},
	{marker: "##", ruleType: CosmeticElementHiding},
}

// cosmeticRulesMarkers is the list of marker strings, used to distinguish
// cosmetic rules from comments.
var cosmeticRulesMarkers = markerStrings()

func markerStrings() (markers []string) {
	for _, m := range cosmeticMarkers {
		markers = append(markers, m.marker)
	}

	return markers
}

// findCosmeticMarker finds the earliest cosmetic marker occurrence in line.
func findCosmeticMarker(line string) (index int, m cosmeticMarker, found bool) {
	index = -1
	for _, candidate := range cosmeticMarkers {
		i := strings.Index(line, candidate.marker)
		if i == -1 {
			continue
		}

		if index == -1 || i < index {
			index = i
			m = candidate
			found = true
		}
	}

	return index, m, found
}

// isCosmetic checks if the line contains a cosmetic rule marker
func isCosmetic(line string) bool {
	_, _, found := findCosmeticMarker(line)

	return found
}

// CosmeticRule is a rule for modifying a page content: hiding elements,
// injecting CSS styles or scripts.
// https://kb.adguard.com/en/general/how-to-create-your-own-ad-filters#cosmetic-rules
type CosmeticRule struct {
	RuleText     string           // RuleText is the original rule text
	FilterListID int              // Filter list identifier
	Type         CosmeticRuleType // Type of the cosmetic rule
	Whitelist    bool             // true if this is an exception rule
	ExtendedCSS  bool             // true if the rule uses extended CSS capabilities

	// Content is everything after the rule marker.  For element hiding
	// rules this is the CSS selector.
	Content string

	permittedDomains  []string // a list of permitted domains
	restrictedDomains []string // a list of restricted domains
}

// type check
var _ Rule = (*CosmeticRule)(nil)

// NewCosmeticRule parses the rule text and returns a cosmetic rule
func NewCosmeticRule(ruleText string, filterListID int) (f *CosmeticRule, err error) {
	index, m, found := findCosmeticMarker(ruleText)
	if !found {
		return nil, &RuleSyntaxError{msg: "cannot find rule marker", ruleText: ruleText}
	}

	f = &CosmeticRule{
		RuleText:     ruleText,
		FilterListID: filterListID,
		Type:         m.ruleType,
		Whitelist:    m.whitelist,
		ExtendedCSS:  m.extCSS,
		Content:      strings.TrimSpace(ruleText[index+len(m.marker):]),
	}

	if f.Content == "" {
		return nil, &RuleSyntaxError{msg: "empty rule content", ruleText: ruleText}
	}

	if index > 0 {
		domains := ruleText[:index]
		f.permittedDomains, f.restrictedDomains, err = loadDomains(domains, ",")
		if err != nil {
			return nil, err
		}
	}

	if f.Whitelist && len(f.permittedDomains) == 0 {
		return nil, &RuleSyntaxError{
			msg:      "whitelist rule must have at least one permitted domain",
			ruleText: ruleText,
		}
	}

	return f, nil
}

// Text returns the original rule text
// Implements the `Rule` interface
func (f *CosmeticRule) Text() string {
	return f.RuleText
}

// GetFilterListID returns ID of the filter list this rule belongs to
func (f *CosmeticRule) GetFilterListID() int {
	return f.FilterListID
}

// String returns original rule text
func (f *CosmeticRule) String() string {
	return f.RuleText
}

// MatchingKey returns the rule content.  Exception rules share the key with
// the rules they disable.
func (f *CosmeticRule) MatchingKey() string {
	return f.Content
}

// IsException returns true for whitelist (#@#) rules
func (f *CosmeticRule) IsException() bool {
	return f.Whitelist
}

// Match returns true if this rule can be used on the specified hostname
func (f *CosmeticRule) Match(hostname string) bool {
	if len(f.permittedDomains) > 0 &&
		!isDomainOrSubdomainOfAny(hostname, f.permittedDomains) {
		return false
	}

	return !isDomainOrSubdomainOfAny(hostname, f.restrictedDomains)
}

// GetPermittedDomains returns the list of domains this rule is allowed on
func (f *CosmeticRule) GetPermittedDomains() []string {
	return f.permittedDomains
}

// GetRestrictedDomains returns the list of domains this rule is disallowed on
func (f *CosmeticRule) GetRestrictedDomains() []string {
	return f.restrictedDomains
}

// AddRestrictedDomains adds the domains to the rule's restricted set.  The
// set semantics are preserved, domains already present are skipped.
func (f *CosmeticRule) AddRestrictedDomains(domains []string) {
	for _, domain := range domains {
		if !containsString(f.restrictedDomains, domain) {
			f.restrictedDomains = append(f.restrictedDomains, domain)
		}
	}
}

// RemoveRestrictedDomains removes the domains from the rule's restricted
// set.  Domains not in the set are ignored.
func (f *CosmeticRule) RemoveRestrictedDomains(domains []string) {
	filtered := f.restrictedDomains[:0]
	for _, domain := range f.restrictedDomains {
		if !containsString(domains, domain) {
			filtered = append(filtered, domain)
		}
	}

	f.restrictedDomains = filtered
}

// Selector returns the CSS selector part of the rule content.  For CSS
// injection rules it strips the style declaration block.
func (f *CosmeticRule) Selector() string {
	if f.Type == CosmeticCSS {
		if i := strings.IndexByte(f.Content, '{'); i > 0 {
			return strings.TrimSpace(f.Content[:i])
		}
	}

	return f.Content
}

// MatchedElements finds the document elements this rule targets.  Exception
// rules and script injection rules never target elements directly.
func (f *CosmeticRule) MatchedElements(doc Document) []Element {
	if f.Whitelist || f.Type == CosmeticJS {
		return nil
	}

	return doc.Select(f.Selector())
}
