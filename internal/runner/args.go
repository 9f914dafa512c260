package runner

import "strings"

// SplitArgs splits a task name on ':'. An escaped "\:" is kept as a literal
// colon inside its part.
func SplitArgs(name string) []string {
	if name == "" {
		return nil
	}

	var (
		parts []string
		b     strings.Builder
	)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '\\' && i+1 < len(name) && name[i+1] == ':' {
			b.WriteByte(':')
			i++
			continue
		}
		if c == ':' {
			parts = append(parts, b.String())
			b.Reset()
			continue
		}
		b.WriteByte(c)
	}
	return append(parts, b.String())
}

// JoinArgs joins parts with ':' without escaping.
func JoinArgs(parts []string) string {
	return strings.Join(parts, ":")
}
