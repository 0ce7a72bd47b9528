package filterlist

import (
	"bufio"
	"io"
	"log/slog"

	"github.com/AdguardTeam/golibs/logutil/slogutil"

	"github.com/filterkit/elemhide/rules"
)

// RuleScanner implements an interface for reading filtering rules from a
// rule list.  Lines that hold no rule (comments, blank lines) and lines this
// library cannot parse are skipped.
type RuleScanner struct {
	// scanner is the underlying line reader.
	scanner *bufio.Scanner

	// listID is the identifier of the list being scanned.
	listID int

	// currentRule is the rule the scanner is currently pointing at.
	currentRule rules.Rule
}

// NewRuleScanner creates a new rule scanner that reads the list contents
// from reader.
func NewRuleScanner(reader io.Reader, listID int) (s *RuleScanner) {
	return &RuleScanner{
		scanner: bufio.NewScanner(reader),
		listID:  listID,
	}
}

// Scan advances the scanner to the next rule, which will then be available
// through the [RuleScanner.Rule] method.  It returns false when the scan
// stops by reaching the end of the list.
func (s *RuleScanner) Scan() (ok bool) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		rule, err := rules.NewRule(line, s.listID)
		if err != nil {
			slog.Debug(
				"filterlist: skipping rule",
				"list_id", s.listID,
				"line", line,
				slogutil.KeyError, err,
			)

			continue
		}

		if rule != nil {
			s.currentRule = rule

			return true
		}
	}

	return false
}

// Rule returns the most recent rule generated by a call to Scan.
func (s *RuleScanner) Rule() (r rules.Rule) {
	return s.currentRule
}
