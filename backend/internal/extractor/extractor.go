package extractor

import (
	"iter"
	"strings"

	"unigraph/backend/internal/constants"
)

// ============================================================================
// Free-Text Entity Extractor
// ============================================================================

// Option configures an Extractor
type Option func(*Extractor)

// WithCountryCode sets the dialing code folded into national phone form
func WithCountryCode(code string) Option {
	return func(e *Extractor) {
		e.countryCode = strings.TrimPrefix(strings.TrimSpace(code), "+")
	}
}

// WithTitles adds words recognized as academic titles
func WithTitles(titles ...string) Option {
	return func(e *Extractor) {
		for _, t := range titles {
			e.titles[strings.ToLower(strings.TrimSuffix(strings.TrimSpace(t), "."))] = true
		}
	}
}

// Extractor finds people, emails, phone numbers and addresses in free text.
// It holds no per-call state and may be shared.
type Extractor struct {
	countryCode string
	titles      map[string]bool
	rules       []rule
}

// New creates an extractor with the default rule set
func New(opts ...Option) *Extractor {
	e := &Extractor{
		countryCode: constants.DefaultCountryCode,
		titles:      set(defaultTitles...),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rules = []rule{
		emailRule,
		phoneRule(e.countryCode),
		addressRule,
		personRule(e.titles),
	}
	return e
}

// CountryCode returns the configured dialing code
func (e *Extractor) CountryCode() string {
	return e.countryCode
}

// Extract yields candidates rule by rule: emails, phones, addresses, then
// corroborated people. Each range over the sequence runs the rules again.
func (e *Extractor) Extract(text string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		if strings.TrimSpace(text) == "" {
			return
		}
		var found []Candidate
		for _, r := range e.rules {
			for _, c := range r(text, found) {
				found = append(found, c)
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Persons returns the person candidates found in text
func (e *Extractor) Persons(text string) []Candidate {
	var people []Candidate
	for c := range e.Extract(text) {
		if c.Kind == KindPerson {
			people = append(people, c)
		}
	}
	return people
}
