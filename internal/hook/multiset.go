package hook

import "sort"

// MultiSet selects the basic task names that are registered as multi tasks.
// The zero value selects nothing.
type MultiSet struct {
	all   bool
	names map[string]bool
}

// AllTasks selects every name.
func AllTasks() MultiSet {
	return MultiSet{all: true}
}

// Names selects the given names.
func Names(names ...string) MultiSet {
	s := MultiSet{names: make(map[string]bool, len(names))}
	for _, n := range names {
		s.names[n] = true
	}
	return s
}

// Contains reports whether name is selected.
func (s MultiSet) Contains(name string) bool {
	return s.all || s.names[name]
}

// All reports whether every name is selected.
func (s MultiSet) All() bool {
	return s.all
}

// Empty reports whether no name is selected.
func (s MultiSet) Empty() bool {
	return !s.all && len(s.names) == 0
}

// List returns the selected names in sorted order. It is nil when all names
// are selected.
func (s MultiSet) List() []string {
	if s.all {
		return nil
	}
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
