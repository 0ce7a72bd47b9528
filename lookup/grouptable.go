// Package lookup implements index structures that the engine uses to group
// filtering rules by their matching keys.
package lookup

import (
	"golang.org/x/exp/maps"

	"github.com/filterkit/elemhide/rules"
)

// GroupTable is a lookup table mapping a matching key to the ordered list of
// rules sharing it.  Insertion order is preserved per key, and rules are
// removed by identity, so the same rule reference added twice occupies two
// slots.
type GroupTable struct {
	// groups is the key lookup table.  Keys with no rules left are deleted
	// from the map entirely.
	groups map[string][]rules.Rule
}

// NewGroupTable creates a new empty instance of the GroupTable.
func NewGroupTable() (t *GroupTable) {
	return &GroupTable{
		groups: map[string][]rules.Rule{},
	}
}

// Add appends the rule to the list stored under key.
func (t *GroupTable) Add(key string, r rules.Rule) {
	t.groups[key] = append(t.groups[key], r)
}

// Remove removes the first occurrence of the rule (compared by identity)
// from the list stored under key.  It returns false if there was nothing to
// remove.  The key is deleted once its list becomes empty.
func (t *GroupTable) Remove(key string, r rules.Rule) (ok bool) {
	group, found := t.groups[key]
	if !found {
		return false
	}

	for i := range group {
		if group[i] != r {
			continue
		}

		group = append(group[:i], group[i+1:]...)
		if len(group) == 0 {
			delete(t.groups, key)
		} else {
			t.groups[key] = group
		}

		return true
	}

	return false
}

// Get returns the rules stored under key, or nil if there are none.  The
// returned slice is a read-only view, callers must not modify it.
func (t *GroupTable) Get(key string) (group []rules.Rule) {
	return t.groups[key]
}

// IsEmpty returns true if no key has rules stored under it.
func (t *GroupTable) IsEmpty() (ok bool) {
	return len(t.groups) == 0
}

// Clear removes all keys from the table.
func (t *GroupTable) Clear() {
	maps.Clear(t.groups)
}
