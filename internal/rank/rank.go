// Package rank merges duplicate candidates and orders them by priority.
package rank

import (
	"cmp"
	"slices"
	"strings"

	"cmdfix/internal/command"
)

// Rank groups candidates by trimmed text and returns one merged candidate
// per group, highest priority first. Within a group the priority is the
// maximum, side effects and rule IDs are unioned in first-seen order and
// confirmation is required if any member required it. Groups with equal
// priority keep the position of their first appearance.
func Rank(candidates []command.CorrectedCommand) []command.CorrectedCommand {
	index := make(map[string]int, len(candidates))
	merged := make([]command.CorrectedCommand, 0, len(candidates))

	for _, c := range candidates {
		key := strings.TrimSpace(c.Text)
		i, seen := index[key]
		if !seen {
			first := c.Clone()
			first.Text = key
			first.SideEffects = union(nil, c.SideEffects)
			first.Rules = union(nil, c.Rules)
			index[key] = len(merged)
			merged = append(merged, first)
			continue
		}

		m := &merged[i]
		m.Priority = max(m.Priority, c.Priority)
		m.RequiresConfirmation = m.RequiresConfirmation || c.RequiresConfirmation
		m.SideEffects = union(m.SideEffects, c.SideEffects)
		m.Rules = union(m.Rules, c.Rules)
	}

	slices.SortStableFunc(merged, func(a, b command.CorrectedCommand) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	return merged
}

// union appends the items of add not already in dst.
func union(dst, add []string) []string {
	for _, s := range add {
		if !slices.Contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}
