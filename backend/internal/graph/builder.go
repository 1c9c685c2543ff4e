package graph

import (
	"fmt"

	apperrors "unigraph/backend/pkg/errors"
)

// ============================================================================
// Graph Builder
// ============================================================================

// IntentKind distinguishes node writes from relationship writes
type IntentKind string

const (
	IntentNode         IntentKind = "node"
	IntentRelationship IntentKind = "relationship"
)

// WriteIntent is one pending merge operation. Values only ever travel in
// Parameters; the statement text is built from labels and types alone.
type WriteIntent struct {
	Kind       IntentKind
	Statement  string
	Parameters map[string]any

	// Node intents
	Label Label
	Key   string

	// Relationship intents
	FromLabel Label
	RelType   RelType
	ToLabel   Label

	// Noop is set on node intents whose key was already registered; they are not queued
	Noop bool
}

// Statement is the serialized form of an intent
type Statement struct {
	Statement  string         `json:"statement"`
	Parameters map[string]any `json:"parameters"`
}

// Serialize returns the statement/parameter pair
func (w *WriteIntent) Serialize() Statement {
	return Statement{Statement: w.Statement, Parameters: w.Parameters}
}

// Stats counts what the builder was asked to do
type Stats struct {
	NodeRequests  map[Label]int   `json:"node_requests"`
	NodesQueued   map[Label]int   `json:"nodes_queued"`
	Relationships map[RelType]int `json:"relationships"`
}

type nodeRef struct {
	label Label
	key   string
}

// Builder turns write requests into parameterized intents and keeps them in
// insertion order
type Builder struct {
	registry *Registry
	intents  []*WriteIntent
	nodes    map[nodeRef]*WriteIntent
	stats    Stats
}

// NewBuilder creates a builder backed by the run's registry
func NewBuilder(registry *Registry) *Builder {
	return &Builder{
		registry: registry,
		nodes:    make(map[nodeRef]*WriteIntent),
		stats: Stats{
			NodeRequests:  make(map[Label]int),
			NodesQueued:   make(map[Label]int),
			Relationships: make(map[RelType]int),
		},
	}
}

// Registry returns the registry the builder consults
func (b *Builder) Registry() *Registry {
	return b.registry
}

// NodeWrite queues a merge-by-key node write the first time the key is seen.
// Later writes for the same key return a no-op intent after filling any
// property the queued intent does not have yet.
func (b *Builder) NodeWrite(label Label, key string, props map[string]any) (*WriteIntent, error) {
	schema, ok := schemas[label]
	if !ok {
		return nil, apperrors.NewInvalidIntent(fmt.Sprintf("unknown label %q", label))
	}
	clean := CleanKey(key)
	if clean == "" {
		return nil, apperrors.NewInvalidIntent(fmt.Sprintf("empty %s key", label))
	}
	filtered := make(map[string]any, len(props))
	for name, value := range props {
		if !schema.properties[name] {
			return nil, apperrors.NewInvalidIntent(fmt.Sprintf("unknown property %s.%s", label, name))
		}
		if isEmptyValue(value) {
			continue
		}
		filtered[name] = value
	}

	b.stats.NodeRequests[label]++
	isNew := b.registry.Register(label, clean)
	canonical, _ := b.registry.Canonical(label, clean)
	ref := nodeRef{label: label, key: canonical}

	if !isNew {
		if queued, ok := b.nodes[ref]; ok {
			existing := queued.Parameters["props"].(map[string]any)
			for name, value := range filtered {
				if _, has := existing[name]; !has {
					existing[name] = value
				}
			}
		}
		return &WriteIntent{Kind: IntentNode, Label: label, Key: canonical, Noop: true}, nil
	}

	intent := &WriteIntent{
		Kind:      IntentNode,
		Label:     label,
		Key:       canonical,
		Statement: fmt.Sprintf("MERGE (n:%s {%s: $key}) SET n += $props", label, schema.key),
		Parameters: map[string]any{
			"key":   canonical,
			"props": filtered,
		},
	}
	b.intents = append(b.intents, intent)
	b.nodes[ref] = intent
	b.stats.NodesQueued[label]++
	return intent, nil
}

// RelationshipWrite queues a merge-by-pattern relationship between two
// registered nodes. It never creates an endpoint.
func (b *Builder) RelationshipWrite(fromLabel Label, fromKey string, relType RelType, toLabel Label, toKey string) (*WriteIntent, error) {
	if !relType.Valid() {
		return nil, apperrors.NewInvalidIntent(fmt.Sprintf("unknown relationship type %q", relType))
	}
	from, err := b.endpoint(fromLabel, fromKey)
	if err != nil {
		return nil, err
	}
	to, err := b.endpoint(toLabel, toKey)
	if err != nil {
		return nil, err
	}

	intent := &WriteIntent{
		Kind:      IntentRelationship,
		FromLabel: fromLabel,
		RelType:   relType,
		ToLabel:   toLabel,
		Statement: fmt.Sprintf("MATCH (a:%s {%s: $from}) MATCH (b:%s {%s: $to}) MERGE (a)-[:%s]->(b)",
			fromLabel, fromLabel.KeyProperty(), toLabel, toLabel.KeyProperty(), relType),
		Parameters: map[string]any{
			"from": from,
			"to":   to,
		},
	}
	b.intents = append(b.intents, intent)
	b.stats.Relationships[relType]++
	return intent, nil
}

// Link queues a relationship and, when the type has one, its inverse
func (b *Builder) Link(fromLabel Label, fromKey string, relType RelType, toLabel Label, toKey string) error {
	if _, err := b.RelationshipWrite(fromLabel, fromKey, relType, toLabel, toKey); err != nil {
		return err
	}
	if inverse, ok := relType.Inverse(); ok {
		if _, err := b.RelationshipWrite(toLabel, toKey, inverse, fromLabel, fromKey); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) endpoint(label Label, key string) (string, error) {
	if !label.Valid() {
		return "", apperrors.NewInvalidIntent(fmt.Sprintf("unknown label %q", label))
	}
	canonical, ok := b.registry.Canonical(label, key)
	if !ok {
		return "", apperrors.NewInvalidIntent(fmt.Sprintf("relationship endpoint %s %q is not registered", label, key))
	}
	return canonical, nil
}

// Intents returns the queued intents in insertion order
func (b *Builder) Intents() []*WriteIntent {
	return b.intents
}

// Len returns the number of queued intents
func (b *Builder) Len() int {
	return len(b.intents)
}

// Stats returns the builder counters
func (b *Builder) Stats() Stats {
	return b.stats
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	}
	return false
}
