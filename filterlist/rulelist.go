// Package filterlist provides sources of filtering rules that can be
// scanned rule by rule.
package filterlist

import (
	"fmt"
	"os"
	"strings"

	"github.com/AdguardTeam/golibs/errors"

	"github.com/filterkit/elemhide/rules"
)

// RuleList represents a set of filtering rules
type RuleList interface {
	// GetID returns the rule list identifier
	GetID() int

	// NewScanner creates a new scanner that reads the list contents
	NewScanner() *RuleScanner

	// Close closes the underlying source of the rule list
	Close() error
}

// StringRuleList represents a string-based rule list
type StringRuleList struct {
	// ID is the rule list identifier
	ID int

	// RulesText is a string with filtering rules (one per line)
	RulesText string
}

// type check
var _ RuleList = (*StringRuleList)(nil)

// GetID returns the rule list identifier
func (l *StringRuleList) GetID() int {
	return l.ID
}

// NewScanner creates a new rules scanner that reads the list contents
func (l *StringRuleList) NewScanner() *RuleScanner {
	return NewRuleScanner(strings.NewReader(l.RulesText), l.ID)
}

// Close implements the [RuleList] interface for *StringRuleList.
func (l *StringRuleList) Close() error {
	return nil
}

// FileRuleList represents a file-based rule list
type FileRuleList struct {
	// ID is the rule list identifier
	ID int

	file *os.File
}

// type check
var _ RuleList = (*FileRuleList)(nil)

// NewFileRuleList creates a new rule list backed by the file at path.
func NewFileRuleList(id int, path string) (l *FileRuleList, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rule list %d: %w", id, err)
	}

	return &FileRuleList{ID: id, file: f}, nil
}

// GetID returns the rule list identifier
func (l *FileRuleList) GetID() int {
	return l.ID
}

// NewScanner creates a new rules scanner that reads the list contents.  The
// scanners of a FileRuleList share the underlying file, so only one of them
// can be used at a time.
func (l *FileRuleList) NewScanner() *RuleScanner {
	_, _ = l.file.Seek(0, 0)

	return NewRuleScanner(l.file, l.ID)
}

// Close closes the underlying file.
func (l *FileRuleList) Close() error {
	return l.file.Close()
}

// Load scans all the lists and returns the rules they contain, in list
// order.
func Load(lists []RuleList) (rs []rules.Rule) {
	for _, list := range lists {
		scanner := list.NewScanner()
		for scanner.Scan() {
			rs = append(rs, scanner.Rule())
		}
	}

	return rs
}

// Close closes all the rule lists.
func Close(lists []RuleList) (err error) {
	var errs []error
	for _, l := range lists {
		err = l.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Annotate(errors.Join(errs...), "closing rule lists: %w")
}
