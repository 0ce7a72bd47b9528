// Package rules implements the cosmetic filtering rule model: parsing the
// adblock-style rule syntax and deciding whether a rule applies to a given
// hostname.
package rules

import (
	"errors"
	"fmt"
	"strings"
)

// RuleSyntaxError represents an error while parsing a filtering rule
type RuleSyntaxError struct {
	msg      string
	ruleText string
}

func (e *RuleSyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s, rule: %s", e.msg, e.ruleText)
}

// ErrUnsupportedRule signals that this might be a valid rule type,
// but it is not yet supported by this library
var ErrUnsupportedRule = errors.New("this type of rules is unsupported")

// Element is a single page element matched by a rule.
type Element interface {
	// Tag returns the element tag name.
	Tag() string

	// OuterHTML renders the element and its subtree back to HTML.
	OuterHTML() string
}

// Document is a parsed page that rules are matched against.  The concrete
// implementation lives in the dom package.
type Document interface {
	// Select returns the document elements matching the CSS selector, in
	// document order.
	Select(selector string) []Element
}

// Rule is a base interface for all filtering rules
type Rule interface {
	// Text returns the original rule text
	Text() string

	// GetFilterListID returns ID of the filter list this rule belongs to
	GetFilterListID() int

	// MatchingKey returns the token that groups this rule with the
	// exception rules capable of narrowing it.  For cosmetic rules this is
	// the rule content (the selector).
	MatchingKey() string

	// IsException returns true if this rule only narrows other rules'
	// domain sets instead of hiding anything itself.
	IsException() bool

	// Match checks if this rule is allowed to act on the specified
	// hostname, considering the rule's permitted and restricted domains.
	Match(hostname string) bool

	// GetPermittedDomains returns the domains this rule is explicitly
	// allowed on.
	GetPermittedDomains() []string

	// AddRestrictedDomains adds domains to the rule's restricted set.
	// Domains already present are not duplicated.
	AddRestrictedDomains(domains []string)

	// RemoveRestrictedDomains removes domains from the rule's restricted
	// set.  Unknown domains are ignored.
	RemoveRestrictedDomains(domains []string)

	// MatchedElements finds the elements of doc this rule targets.
	MatchedElements(doc Document) []Element
}

// NewRule creates a new filtering rule from the specified line
// It returns nil if the line is empty or if it is a comment
func NewRule(line string, filterListID int) (Rule, error) {
	line = strings.TrimSpace(line)

	if line == "" || isComment(line) {
		return nil, nil
	}

	if isCosmetic(line) {
		return NewCosmeticRule(line, filterListID)
	}

	return nil, ErrUnsupportedRule
}

// isComment checks if the line is a comment
func isComment(line string) bool {
	if len(line) == 0 {
		return false
	}

	if line[0] == '!' {
		return true
	}

	if line[0] == '#' {
		if len(line) == 1 {
			return true
		}

		// Now we should check that this is not a cosmetic rule
		for _, marker := range cosmeticRulesMarkers {
			if strings.HasPrefix(line, marker) {
				return false
			}
		}

		return true
	}

	return false
}
