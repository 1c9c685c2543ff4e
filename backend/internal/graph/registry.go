package graph

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ============================================================================
// Entity Registry
// ============================================================================

var whitespaceRun = regexp.MustCompile(`\s+`)

// Registry tracks every (label, key) seen during one build run. It is the
// only gate deciding whether a node write-intent is queued. It is not safe
// for concurrent use; a build run owns exactly one.
type Registry struct {
	// label -> normalized key -> canonical spelling
	seen  map[Label]map[string]string
	fold  cases.Caser
	total int
}

// NewRegistry creates an empty registry scoped to a single run
func NewRegistry() *Registry {
	return &Registry{
		seen: make(map[Label]map[string]string),
		fold: cases.Fold(),
	}
}

// Register records the pair and reports whether it was seen for the first time.
// Empty keys are never registered.
func (r *Registry) Register(label Label, key string) bool {
	display := CleanKey(key)
	if display == "" {
		return false
	}
	normalized := r.normalize(display)

	byLabel, ok := r.seen[label]
	if !ok {
		byLabel = make(map[string]string)
		r.seen[label] = byLabel
	}
	if _, exists := byLabel[normalized]; exists {
		return false
	}
	byLabel[normalized] = display
	r.total++
	return true
}

// Canonical returns the first-seen spelling of a registered key
func (r *Registry) Canonical(label Label, key string) (string, bool) {
	display := CleanKey(key)
	if display == "" {
		return "", false
	}
	canonical, ok := r.seen[label][r.normalize(display)]
	return canonical, ok
}

// Contains reports whether the key has been registered under the label
func (r *Registry) Contains(label Label, key string) bool {
	_, ok := r.Canonical(label, key)
	return ok
}

// Len returns the number of distinct registered nodes
func (r *Registry) Len() int {
	return r.total
}

// CountByLabel returns the number of distinct registered nodes per label
func (r *Registry) CountByLabel() map[Label]int {
	counts := make(map[Label]int, len(r.seen))
	for label, keys := range r.seen {
		counts[label] = len(keys)
	}
	return counts
}

func (r *Registry) normalize(display string) string {
	return r.fold.String(norm.NFC.String(display))
}

// CleanKey trims a key and collapses internal whitespace, keeping its case
func CleanKey(key string) string {
	key = strings.TrimSpace(norm.NFC.String(key))
	return whitespaceRun.ReplaceAllString(key, " ")
}

// NormalizeKey returns the identity form of a key: NFC, case folded, trimmed,
// internal whitespace collapsed
func NormalizeKey(key string) string {
	return cases.Fold().String(CleanKey(key))
}
