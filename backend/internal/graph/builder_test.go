package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "unigraph/backend/pkg/errors"
)

func TestBuilder_NodeWrite(t *testing.T) {
	b := NewBuilder(NewRegistry())

	intent, err := b.NodeWrite(LabelUniversity, "Example University", map[string]any{"website": "https://example.edu"})
	require.NoError(t, err)

	assert.Equal(t, IntentNode, intent.Kind)
	assert.False(t, intent.Noop)
	assert.Equal(t, "MERGE (n:University {name: $key}) SET n += $props", intent.Statement)
	assert.Equal(t, "Example University", intent.Parameters["key"])
	assert.Equal(t, map[string]any{"website": "https://example.edu"}, intent.Parameters["props"])
	assert.Equal(t, 1, b.Len())
}

func TestBuilder_NodeWriteKeyProperties(t *testing.T) {
	b := NewBuilder(NewRegistry())

	email, err := b.NodeWrite(LabelEmail, "a@b.edu", nil)
	require.NoError(t, err)
	assert.Contains(t, email.Statement, "{address: $key}")

	phone, err := b.NodeWrite(LabelPhoneNumber, "0281234567", nil)
	require.NoError(t, err)
	assert.Contains(t, phone.Statement, "{number: $key}")

	addr, err := b.NodeWrite(LabelAddress, "1 Main St", nil)
	require.NoError(t, err)
	assert.Contains(t, addr.Statement, "{value: $key}")
}

func TestBuilder_ValuesNeverInStatementText(t *testing.T) {
	b := NewBuilder(NewRegistry())

	tricky := `O'Brien "}) DETACH DELETE n //`
	intent, err := b.NodeWrite(LabelFaculty, tricky, map[string]any{"title": "Dr."})
	require.NoError(t, err)

	assert.NotContains(t, intent.Statement, "O'Brien")
	assert.NotContains(t, intent.Statement, "Dr.")
	assert.Equal(t, tricky, intent.Parameters["key"])
}

func TestBuilder_RepeatNodeWriteIsNoop(t *testing.T) {
	b := NewBuilder(NewRegistry())

	first, err := b.NodeWrite(LabelCourse, "CS101", map[string]any{"title": "Intro"})
	require.NoError(t, err)

	again, err := b.NodeWrite(LabelCourse, "cs101", map[string]any{"title": "Other", "credits": 4})
	require.NoError(t, err)

	assert.True(t, again.Noop)
	assert.Equal(t, "CS101", again.Key)
	assert.Equal(t, 1, b.Len())

	// First writer keeps its values, missing ones are filled in
	props := first.Parameters["props"].(map[string]any)
	assert.Equal(t, "Intro", props["title"])
	assert.Equal(t, 4, props["credits"])
}

func TestBuilder_NodeWriteRejectsInvalidInput(t *testing.T) {
	b := NewBuilder(NewRegistry())

	tests := []struct {
		name  string
		label Label
		key   string
		props map[string]any
	}{
		{"empty key", LabelFaculty, "  ", nil},
		{"unknown label", Label("Person"), "Jane Doe", nil},
		{"unknown property", LabelFaculty, "Jane Doe", map[string]any{"salary": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.NodeWrite(tt.label, tt.key, tt.props)
			require.Error(t, err)
			assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeIntent))
		})
	}
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Registry().Len())
}

func TestBuilder_EmptyPropertiesAreDropped(t *testing.T) {
	b := NewBuilder(NewRegistry())

	intent, err := b.NodeWrite(LabelCourse, "CS101", map[string]any{"title": "", "description": nil, "credits": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"credits": 3}, intent.Parameters["props"])
}

func TestBuilder_RelationshipWrite(t *testing.T) {
	b := NewBuilder(NewRegistry())
	_, err := b.NodeWrite(LabelFaculty, "Jane Doe", nil)
	require.NoError(t, err)
	_, err = b.NodeWrite(LabelEmail, "jane@uni.edu", nil)
	require.NoError(t, err)

	intent, err := b.RelationshipWrite(LabelFaculty, "JANE DOE", RelHasEmail, LabelEmail, "jane@uni.edu")
	require.NoError(t, err)

	assert.Equal(t, IntentRelationship, intent.Kind)
	assert.Equal(t,
		"MATCH (a:Faculty {name: $from}) MATCH (b:Email {address: $to}) MERGE (a)-[:HAS_EMAIL]->(b)",
		intent.Statement)
	assert.Equal(t, map[string]any{"from": "Jane Doe", "to": "jane@uni.edu"}, intent.Parameters)
}

func TestBuilder_RelationshipRequiresRegisteredEndpoints(t *testing.T) {
	b := NewBuilder(NewRegistry())
	_, err := b.NodeWrite(LabelCourse, "CS101", nil)
	require.NoError(t, err)

	_, err = b.RelationshipWrite(LabelCourse, "CS050", RelIsPrerequisiteFor, LabelCourse, "CS101")
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeIntent))

	_, err = b.RelationshipWrite(LabelCourse, "CS101", RelType("LIKES"), LabelCourse, "CS101")
	require.Error(t, err)

	assert.Equal(t, 1, b.Len())
	assert.False(t, b.Registry().Contains(LabelCourse, "CS050"))
}

func TestBuilder_LinkEmitsInverse(t *testing.T) {
	b := NewBuilder(NewRegistry())
	_, _ = b.NodeWrite(LabelUniversity, "U", nil)
	_, _ = b.NodeWrite(LabelDepartment, "CS", nil)
	_, _ = b.NodeWrite(LabelFaculty, "Jane Doe", nil)
	_, _ = b.NodeWrite(LabelCourse, "CS101", nil)
	_, _ = b.NodeWrite(LabelResearchInterest, "Graph Databases", nil)

	require.NoError(t, b.Link(LabelUniversity, "U", RelHasDepartment, LabelDepartment, "CS"))
	require.NoError(t, b.Link(LabelFaculty, "Jane Doe", RelTeaches, LabelCourse, "CS101"))
	require.NoError(t, b.Link(LabelFaculty, "Jane Doe", RelInterestedIn, LabelResearchInterest, "Graph Databases"))

	stats := b.Stats()
	assert.Equal(t, 1, stats.Relationships[RelHasDepartment])
	assert.Equal(t, 1, stats.Relationships[RelBelongsTo])
	assert.Equal(t, 1, stats.Relationships[RelTeaches])
	assert.Equal(t, 1, stats.Relationships[RelTaughtBy])
	assert.Equal(t, 1, stats.Relationships[RelInterestedIn])
	assert.Equal(t, 5+5, b.Len())

	last := b.Intents()[b.Len()-1]
	assert.Equal(t, RelInterestedIn, last.RelType)
}

func TestBuilder_RelationshipsFollowTheirNodes(t *testing.T) {
	b := NewBuilder(NewRegistry())
	_, _ = b.NodeWrite(LabelDepartment, "Biology", nil)
	_, _ = b.NodeWrite(LabelCourse, "BIO101", nil)
	require.NoError(t, b.Link(LabelDepartment, "Biology", RelOffersCourse, LabelCourse, "BIO101"))

	// a repeated node write fills the queued intent instead of queueing again
	again, err := b.NodeWrite(LabelCourse, "bio101", map[string]any{"credits": 3})
	require.NoError(t, err)
	assert.True(t, again.Noop)
	require.NoError(t, b.Link(LabelCourse, "BIO101", RelBelongsTo, LabelDepartment, "Biology"))

	queued := make(map[string]bool)
	for _, intent := range b.Intents() {
		switch intent.Kind {
		case IntentNode:
			queued[string(intent.Label)+"/"+intent.Key] = true
		case IntentRelationship:
			assert.True(t, queued[string(intent.FromLabel)+"/"+intent.Parameters["from"].(string)], intent.Statement)
			assert.True(t, queued[string(intent.ToLabel)+"/"+intent.Parameters["to"].(string)], intent.Statement)
		}
	}
	assert.Equal(t, map[string]any{"credits": 3}, b.Intents()[1].Parameters["props"])
}
