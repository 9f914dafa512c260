// Package resolve maps public task names to the plugin and task that
// implement them.
//
// An alias table maps a name, possibly colon segmented, to a target of the
// form plugin[:task[:args...]]. Resolution picks the longest prefix of the
// requested name present in the table:
//
//	table:   {"deploy": "deployer:release", "deploy:prod": "deployer:release:prod"}
//	request: deploy:prod:eu  ->  plugin deployer, task release, args [prod eu]
//	request: deploy:staging  ->  plugin deployer, task release, args [staging]
package resolve

import (
	"sort"

	"github.com/dshills/tama/internal/runner"
)

// AliasTable maps aliases to plugin[:task[:args...]] targets.
type AliasTable map[string]string

// TaskSpec is the result of resolving an alias.
type TaskSpec struct {
	Plugin    string
	Task      string
	ExtraArgs []string
}

// LookupName is the name handed to the runner lookup: the task followed by
// the extra arguments. The plugin is not part of it.
func (s TaskSpec) LookupName() string {
	return runner.JoinArgs(append([]string{s.Task}, s.ExtraArgs...))
}

// Resolver resolves task names against an alias table.
type Resolver struct {
	table AliasTable
}

// New creates a resolver over a copy of table.
func New(table AliasTable) *Resolver {
	t := make(AliasTable, len(table))
	for k, v := range table {
		t[k] = v
	}
	return &Resolver{table: t}
}

// Resolve finds the longest prefix of requested in the alias table. Target
// segments after the task, then the unmatched parts of requested, become
// ExtraArgs.
func (r *Resolver) Resolve(requested string) (TaskSpec, bool) {
	if len(r.table) == 0 {
		return TaskSpec{}, false
	}

	parts := runner.SplitArgs(requested)
	for i := len(parts); i > 0; i-- {
		alias := runner.JoinArgs(parts[:i])
		target, ok := r.table[alias]
		if !ok {
			continue
		}

		segs := runner.SplitArgs(target)
		spec := TaskSpec{Plugin: segs[0], Task: alias}
		if len(segs) > 1 {
			spec.Task = segs[1]
			spec.ExtraArgs = append(spec.ExtraArgs, segs[2:]...)
		}
		spec.ExtraArgs = append(spec.ExtraArgs, parts[i:]...)
		return spec, true
	}
	return TaskSpec{}, false
}

// Len returns the number of aliases.
func (r *Resolver) Len() int {
	return len(r.table)
}

// Aliases returns the aliases in sorted order.
func (r *Resolver) Aliases() []string {
	names := make([]string, 0, len(r.table))
	for k := range r.table {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Target returns the target of alias.
func (r *Resolver) Target(alias string) (string, bool) {
	t, ok := r.table[alias]
	return t, ok
}
