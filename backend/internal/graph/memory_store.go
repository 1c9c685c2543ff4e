package graph

import (
	"context"
	"fmt"
)

type edgeRef struct {
	from    nodeRef
	relType RelType
	to      nodeRef
}

// MemoryStore simulates MERGE semantics of the generated statements in
// memory. Keys are matched exactly, as the store would.
type MemoryStore struct {
	nodes map[nodeRef]map[string]any
	edges map[edgeRef]struct{}
}

// NewMemoryStore creates an empty simulated store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[nodeRef]map[string]any),
		edges: make(map[edgeRef]struct{}),
	}
}

// Apply merges the node or relationship described by the statement
func (m *MemoryStore) Apply(ctx context.Context, statement string, params map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	parsed, ok := ParseStatement(statement)
	if !ok {
		return fmt.Errorf("unsupported statement: %s", statement)
	}

	switch parsed.Kind {
	case IntentNode:
		ref := nodeRef{label: parsed.Label, key: getStringFromMap(params, "key")}
		if ref.key == "" {
			return fmt.Errorf("missing key parameter for %s", parsed.Label)
		}
		props, ok := m.nodes[ref]
		if !ok {
			props = make(map[string]any)
			m.nodes[ref] = props
		}
		if set, ok := params["props"].(map[string]any); ok {
			for k, v := range set {
				props[k] = v
			}
		}
	case IntentRelationship:
		from := nodeRef{label: parsed.FromLabel, key: getStringFromMap(params, "from")}
		to := nodeRef{label: parsed.ToLabel, key: getStringFromMap(params, "to")}
		if _, ok := m.nodes[from]; !ok {
			return fmt.Errorf("no %s node with key %q", from.label, from.key)
		}
		if _, ok := m.nodes[to]; !ok {
			return fmt.Errorf("no %s node with key %q", to.label, to.key)
		}
		m.edges[edgeRef{from: from, relType: parsed.RelType, to: to}] = struct{}{}
	}
	return nil
}

// NodeCounts returns stored nodes per label
func (m *MemoryStore) NodeCounts() map[string]int {
	counts := make(map[string]int)
	for ref := range m.nodes {
		counts[string(ref.label)]++
	}
	return counts
}

// RelationshipCounts returns stored relationships per type
func (m *MemoryStore) RelationshipCounts() map[string]int {
	counts := make(map[string]int)
	for ref := range m.edges {
		counts[string(ref.relType)]++
	}
	return counts
}

// Properties returns the stored properties of a node, if it exists
func (m *MemoryStore) Properties(label Label, key string) (map[string]any, bool) {
	props, ok := m.nodes[nodeRef{label: label, key: key}]
	return props, ok
}

// HasRelationship reports whether the edge exists
func (m *MemoryStore) HasRelationship(fromLabel Label, fromKey string, relType RelType, toLabel Label, toKey string) bool {
	_, ok := m.edges[edgeRef{
		from:    nodeRef{label: fromLabel, key: fromKey},
		relType: relType,
		to:      nodeRef{label: toLabel, key: toKey},
	}]
	return ok
}
