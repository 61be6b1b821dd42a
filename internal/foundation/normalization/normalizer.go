// Package normalization turns loosely formatted user input (config files, CLI
// flags) into typed enum values.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer provides type-safe string-to-enum normalization with error handling.
type Normalizer[T comparable] struct {
	name         string
	validValues  map[string]T
	defaultValue T
	validKeys    []string // Cached for error messages
}

// NewEnumNormalizer creates a normalizer for the enum called name. The keys in
// values are normalized; unknown input maps to defaultValue in Normalize.
func NewEnumNormalizer[T comparable](name string, values map[string]T, defaultValue T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))

	for k, v := range values {
		key := normalize(k)
		normalized[key] = v
		validKeys = append(validKeys, key)
	}

	sort.Strings(validKeys)

	return &Normalizer[T]{
		name:         name,
		validValues:  normalized,
		defaultValue: defaultValue,
		validKeys:    validKeys,
	}
}

// Normalize converts raw to the enum value, returning the default on unknown input.
func (n *Normalizer[T]) Normalize(raw string) T {
	if value, exists := n.validValues[normalize(raw)]; exists {
		return value
	}
	return n.defaultValue
}

// NormalizeWithValidation converts raw to the enum value or reports which
// values would have been accepted.
func (n *Normalizer[T]) NormalizeWithValidation(raw string) (T, error) {
	if value, exists := n.validValues[normalize(raw)]; exists {
		return value, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %v", n.name, raw, n.validKeys)
}

// ValidValues returns all accepted normalized keys in sorted order.
func (n *Normalizer[T]) ValidValues() []string {
	result := make([]string, len(n.validKeys))
	copy(result, n.validKeys)
	return result
}

// normalize lower-cases, trims, and folds '-' and ' ' into '_' so
// "Service-Unavailable" and "service_unavailable" are the same key.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}
