// Package elemhide implements a cosmetic content-filtering rule engine: it
// keeps track of element-hiding rules and of the exception rules narrowing
// them, and answers which rules apply to a given page hostname.
package elemhide

import (
	"golang.org/x/exp/slices"

	"github.com/filterkit/elemhide/lookup"
	"github.com/filterkit/elemhide/rules"
)

// RuleSet owns the full collection of cosmetic rules and keeps the effect of
// exception rules applied to them.
//
// Exceptions restrict the rules sharing their matching key: an exception
// permitted on a domain adds that domain to the restricted set of every
// regular rule with the same key.  The application is recomputed lazily, a
// mutation only marks the set stale and the next query rebuilds it.
//
// A RuleSet instance performs no internal locking and must be owned by a
// single goroutine.  Note that queries are not pure reads: they may trigger
// a rebuild that mutates the rules' domain sets.
type RuleSet struct {
	// exceptions is an index of exception rules keyed by their matching
	// keys.
	exceptions *lookup.GroupTable

	// regular is the insertion-ordered list of non-exception rules.  The
	// same rule reference may be present more than once.
	regular []rules.Rule

	// stale is true when the rules' restricted-domain sets no longer
	// reflect the current exception index.
	stale bool
}

// NewRuleSet creates a new rule set and adds the initial rules to it in
// order.
func NewRuleSet(initial []rules.Rule) (s *RuleSet) {
	s = &RuleSet{
		exceptions: lookup.NewGroupTable(),
	}

	for _, r := range initial {
		s.AddRule(r)
	}

	return s
}

// AddRule adds the rule to the set.  Rules with an empty matching key are
// silently ignored, upstream rule validation is best-effort.
func (s *RuleSet) AddRule(r rules.Rule) {
	key := r.MatchingKey()
	if key == "" {
		return
	}

	if r.IsException() {
		s.exceptions.Add(key, r)
	} else {
		s.regular = append(s.regular, r)
	}

	s.stale = true
}

// RemoveRule removes the rule (compared by identity) from the set.  Removing
// a rule that was never added is a no-op.
//
// Removing an exception rule immediately reverses the restriction it caused,
// regardless of the stale state: a deferred reversal could be re-applied or
// missed by a later rebuild.
func (s *RuleSet) RemoveRule(r rules.Rule) {
	if i := slices.Index(s.regular, r); i != -1 {
		s.regular = slices.Delete(s.regular, i, i+1)
	}

	key := r.MatchingKey()
	if s.exceptions.Remove(key, r) && r.IsException() {
		for _, reg := range s.regular {
			if reg.MatchingKey() == key {
				reg.RemoveRestrictedDomains(r.GetPermittedDomains())
			}
		}
	}

	s.stale = true
}

// rebuild re-applies the exception index to the regular rules.  It does
// nothing while the set is not stale, which guarantees a single application
// per exception between mutations.
func (s *RuleSet) rebuild() {
	if !s.stale {
		return
	}

	if !s.exceptions.IsEmpty() {
		for _, reg := range s.regular {
			for _, exc := range s.exceptions.Get(reg.MatchingKey()) {
				reg.AddRestrictedDomains(exc.GetPermittedDomains())
			}
		}
	}

	s.stale = false
}

// RulesForDomain returns the regular rules applicable to the hostname, in
// insertion order, or nil if none apply.
func (s *RuleSet) RulesForDomain(hostname string) (result []rules.Rule) {
	s.rebuild()

	for _, r := range s.regular {
		if r.Match(hostname) {
			result = append(result, r)
		}
	}

	return result
}

// MatchedElements finds the elements of doc matched by the rules applicable
// to the hostname.  Per-rule element order is preserved, rules contribute in
// insertion order.  It returns nil if no rule applies or nothing matched.
func (s *RuleSet) MatchedElements(doc rules.Document, hostname string) (elements []rules.Element) {
	for _, r := range s.RulesForDomain(hostname) {
		elements = append(elements, r.MatchedElements(doc)...)
	}

	return elements
}
