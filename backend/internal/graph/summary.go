package graph

import (
	"fmt"
	"regexp"
	"sort"
)

var (
	nodeStatement = regexp.MustCompile(`^MERGE \(n:(\w+) \{(\w+): \$key\}\)`)
	relStatement  = regexp.MustCompile(`^MATCH \(a:(\w+) \{(\w+): \$from\}\) MATCH \(b:(\w+) \{(\w+): \$to\}\) MERGE \(a\)-\[:(\w+)\]->\(b\)`)
)

// ParsedStatement is the shape recovered from a generated statement
type ParsedStatement struct {
	Kind      IntentKind
	Label     Label
	FromLabel Label
	RelType   RelType
	ToLabel   Label
}

// Pattern renders a relationship statement as (From)-[:TYPE]->(To)
func (p ParsedStatement) Pattern() string {
	return fmt.Sprintf("(%s)-[:%s]->(%s)", p.FromLabel, p.RelType, p.ToLabel)
}

// ParseStatement recognizes the node and relationship templates the builder emits
func ParseStatement(statement string) (ParsedStatement, bool) {
	if m := nodeStatement.FindStringSubmatch(statement); m != nil {
		return ParsedStatement{Kind: IntentNode, Label: Label(m[1])}, true
	}
	if m := relStatement.FindStringSubmatch(statement); m != nil {
		return ParsedStatement{
			Kind:      IntentRelationship,
			FromLabel: Label(m[1]),
			ToLabel:   Label(m[3]),
			RelType:   RelType(m[5]),
		}, true
	}
	return ParsedStatement{}, false
}

// Summary describes a serialized intent list
type Summary struct {
	Total                int            `json:"total"`
	Unrecognized         int            `json:"unrecognized"`
	NodeLabels           map[string]int `json:"node_labels"`
	RelationshipTypes    map[string]int `json:"relationship_types"`
	RelationshipPatterns map[string]int `json:"relationship_patterns"`
}

// Summarize counts node labels, relationship types and patterns in a dry-run artifact
func Summarize(statements []Statement) Summary {
	s := Summary{
		Total:                len(statements),
		NodeLabels:           make(map[string]int),
		RelationshipTypes:    make(map[string]int),
		RelationshipPatterns: make(map[string]int),
	}
	for _, st := range statements {
		parsed, ok := ParseStatement(st.Statement)
		if !ok {
			s.Unrecognized++
			continue
		}
		switch parsed.Kind {
		case IntentNode:
			s.NodeLabels[string(parsed.Label)]++
		case IntentRelationship:
			s.RelationshipTypes[string(parsed.RelType)]++
			s.RelationshipPatterns[parsed.Pattern()]++
		}
	}
	return s
}

// SortedKeys returns map keys in lexical order, for stable printing
func SortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
