package rules

import "errors"

// Registry errors.
var (
	// ErrDuplicateRule is returned when registering an ID twice.
	ErrDuplicateRule = errors.New("rule already registered")

	// ErrInvalidRule is returned for rules missing an ID, matcher or corrector.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrRuleNotFound is returned when toggling an unknown rule.
	ErrRuleNotFound = errors.New("rule not found")
)
