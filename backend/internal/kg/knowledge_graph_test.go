package kg

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"unigraph/backend/internal/graph"
	"unigraph/backend/internal/source"
)

var testDocs = source.Documents{
	Faculty: json.RawMessage(`{
		"Computer Science": [
			{"name": "Jane Doe", "title": "Professor", "email": "jane@example.edu", "courses": ["CS101"]},
			{"name": "John Roe", "research_interests": "Graphs; Databases"}
		]
	}`),
	Course: json.RawMessage(`[
		{"code": "CS101", "name": "Intro to Programming", "department": "Computer Science", "credits": 4},
		{"code": "CS201", "name": "Data Structures", "prerequisites": ["CS101", "CS050"], "instructors": ["John Roe"]}
	]`),
	Contact: json.RawMessage(`[
		{"name": "Computer Science", "emails": ["cs@example.edu"], "description": "Contact Dr. Jane Doe at jane@example.edu"},
		{"level": "university", "phones": ["028 3725 2002"]}
	]`),
	General: json.RawMessage(`{
		"name": "Example University",
		"website": "https://example.edu",
		"programs": ["Bachelor of Computer Science"],
		"departments": ["Computer Science", "Physics"]
	}`),
}

func newTestGraph() *KnowledgeGraph {
	return New(Options{UniversityName: "Fallback University"}, zap.NewNop())
}

func TestBuild_ResolvesUniversityFromGeneral(t *testing.T) {
	k := newTestGraph()
	k.Build(testDocs)

	assert.Equal(t, "Example University", k.University())
	assert.True(t, k.Builder().Registry().Contains(graph.LabelUniversity, "Example University"))
	assert.False(t, k.Builder().Registry().Contains(graph.LabelUniversity, "Fallback University"))
}

func TestBuild_FixedOrderAndDisabledSources(t *testing.T) {
	k := newTestGraph()
	outcomes := k.Build(source.Documents{Contact: testDocs.Contact, Faculty: testDocs.Faculty})

	require.Len(t, outcomes, 2)
	assert.Equal(t, "faculty", outcomes[0].Processor)
	assert.Equal(t, "contact", outcomes[1].Processor)
	assert.Equal(t, "Fallback University", k.University())
}

func TestBuild_CrossSourceIdentity(t *testing.T) {
	k := newTestGraph()
	k.Build(testDocs)

	counts := k.Builder().Registry().CountByLabel()
	assert.Equal(t, 2, counts[graph.LabelFaculty])
	assert.Equal(t, 2, counts[graph.LabelDepartment])
	assert.Equal(t, 3, counts[graph.LabelCourse])
	assert.Equal(t, 1, counts[graph.LabelUniversity])
}

func TestExecuteAll_Idempotent(t *testing.T) {
	store := graph.NewMemoryStore()

	first := newTestGraph()
	first.Build(testDocs)
	report := first.ExecuteAll(context.Background(), store)
	require.Equal(t, 0, report.Failed, report.Failures)
	assert.Equal(t, report.Queued, report.Executed)

	nodes := store.NodeCounts()
	rels := store.RelationshipCounts()

	second := newTestGraph()
	second.Build(testDocs)
	again := second.ExecuteAll(context.Background(), store)
	require.Equal(t, 0, again.Failed)

	assert.Equal(t, nodes, store.NodeCounts())
	assert.Equal(t, rels, store.RelationshipCounts())
	assert.NotEqual(t, report.RunID, again.RunID)

	assert.True(t, store.HasRelationship(graph.LabelCourse, "CS050", graph.RelIsPrerequisiteFor, graph.LabelCourse, "CS201"))
	assert.True(t, store.HasRelationship(graph.LabelFaculty, "Jane Doe", graph.RelHasEmail, graph.LabelEmail, "jane@example.edu"))
	assert.True(t, store.HasRelationship(graph.LabelUniversity, "Example University", graph.RelHasContactPhone, graph.LabelPhoneNumber, "02837252002"))

	props, ok := store.Properties(graph.LabelUniversity, "Example University")
	require.True(t, ok)
	assert.Equal(t, "https://example.edu", props["website"])
}

type failingStore struct {
	inner *graph.MemoryStore
	fail  string
}

func (s *failingStore) Apply(ctx context.Context, statement string, params map[string]any) error {
	if strings.Contains(statement, s.fail) {
		return errors.New("constraint violation")
	}
	return s.inner.Apply(ctx, statement, params)
}

func TestExecuteAll_RecordsFailuresAndContinues(t *testing.T) {
	k := newTestGraph()
	k.Build(testDocs)
	store := &failingStore{inner: graph.NewMemoryStore(), fail: ":Program "}

	report := k.ExecuteAll(context.Background(), store)

	// the Program node and its OFFERS_PROGRAM link
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, report.Queued-2, report.Executed)
	require.Len(t, report.Failures, 2)
	assert.Contains(t, report.Failures[0].Error, "constraint violation")
	assert.Contains(t, report.Failures[0].Statement, "Program")
	assert.Equal(t, 0, report.Nodes["Program"])
}

func TestExecuteAll_Cancelled(t *testing.T) {
	k := newTestGraph()
	k.Build(testDocs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := k.ExecuteAll(ctx, graph.NewMemoryStore())

	assert.Equal(t, 0, report.Executed)
	assert.Equal(t, 0, report.Failed)
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[len(report.Warnings)-1], "execute")
}

func TestReport_DryRun(t *testing.T) {
	k := newTestGraph()
	k.Build(source.Documents{
		Faculty:  json.RawMessage(`[{}, {"name": "Jane Doe"}]`),
		Repaired: []string{"faculty.json"},
	})

	report := k.Report()

	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Queued)
	assert.Equal(t, 0, report.Executed)
	assert.Equal(t, map[string]int{"Faculty": 1}, report.Nodes)
	assert.Equal(t, 1, report.Skipped["faculty"])
	assert.Equal(t, 1, report.SkippedTotal())
	assert.Contains(t, report.Warnings, "repaired malformed json in faculty.json")

	statements := k.Serialize()
	require.Len(t, statements, 1)
	assert.Equal(t, "MERGE (n:Faculty {name: $key}) SET n += $props", statements[0].Statement)
	assert.Equal(t, "Jane Doe", statements[0].Parameters["key"])
}

func TestSerialize_EveryStatementParses(t *testing.T) {
	k := newTestGraph()
	k.Build(testDocs)

	statements := k.Serialize()
	summary := graph.Summarize(statements)

	assert.Equal(t, len(statements), summary.Total)
	assert.Equal(t, 0, summary.Unrecognized)
	assert.Equal(t, k.Report().Nodes, summary.NodeLabels)
	assert.Equal(t, k.Report().Relationships, summary.RelationshipTypes)
}
