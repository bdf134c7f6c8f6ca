package rules

import (
	"fmt"
	"sync"

	"cmdfix/internal/command"
)

type entry struct {
	rule    Rule
	enabled bool
}

// Registry holds rules in registration order. Registration order is the
// tie-break for equal priorities, so it is never reshuffled. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	index   map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register appends rule, enabled. A zero priority becomes DefaultPriority.
func (r *Registry) Register(rule Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[rule.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, rule.ID)
	}

	rule = rule.clone()
	if rule.Priority == 0 {
		rule.Priority = DefaultPriority
	}

	r.index[rule.ID] = len(r.entries)
	r.entries = append(r.entries, &entry{rule: rule, enabled: true})
	return nil
}

// MustRegister registers rule and panics on error. Use it for static
// registration of built-in rules.
func (r *Registry) MustRegister(rule Rule) {
	if err := r.Register(rule); err != nil {
		panic(fmt.Sprintf("failed to register rule %s: %v", rule.ID, err))
	}
}

// ListForShell returns copies of the enabled rules that apply to shell, in
// registration order.
func (r *Registry) ListForShell(shell command.Shell) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Rule, 0, len(r.entries))
	for _, e := range r.entries {
		if e.enabled && e.rule.AppliesTo(shell) {
			out = append(out, e.rule.clone())
		}
	}
	return out
}

// Enable turns a rule on.
func (r *Registry) Enable(id string) error {
	return r.setEnabled(id, true)
}

// Disable turns a rule off. Disabled rules stay registered.
func (r *Registry) Disable(id string) error {
	return r.setEnabled(id, false)
}

func (r *Registry) setEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRuleNotFound, id)
	}
	r.entries[i].enabled = enabled
	return nil
}

// Get returns a copy of the rule with the given ID.
func (r *Registry) Get(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return Rule{}, false
	}
	return r.entries[i].rule.clone(), true
}

// IsEnabled reports whether id is registered and enabled.
func (r *Registry) IsEnabled(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	return ok && r.entries[i].enabled
}

// IDs returns every registered ID in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.entries))
	for i, e := range r.entries {
		ids[i] = e.rule.ID
	}
	return ids
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
