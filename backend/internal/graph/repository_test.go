package graph

import (
	"context"
	"os"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// TestRepository requires a running Neo4j instance
// Set NEO4J_URI, NEO4J_USER, NEO4J_PASSWORD environment variables
func TestRepository_ApplyIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver := createTestDriver(t)
	defer driver.Close(ctx)

	repo := NewRepository(driver, os.Getenv("NEO4J_DATABASE"))
	key := "Integration Test University"

	// Clean up
	defer func() {
		session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
		defer session.Close(ctx)
		_, _ = session.Run(ctx, "MATCH (n:University {name: $name}) DETACH DELETE n", map[string]any{"name": key})
	}()

	builder := NewBuilder(NewRegistry())
	intent, err := builder.NodeWrite(LabelUniversity, key, map[string]any{"website": "https://example.edu"})
	if err != nil {
		t.Fatalf("NodeWrite failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := repo.Apply(ctx, intent.Statement, intent.Parameters); err != nil {
			t.Fatalf("Apply #%d failed: %v", i+1, err)
		}
	}

	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)
	result, err := session.Run(ctx, "MATCH (n:University {name: $name}) RETURN count(n) AS total", map[string]any{"name": key})
	if err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		t.Fatalf("Reading count failed: %v", err)
	}
	if total := getInt64FromRecord(record, "total"); total != 1 {
		t.Errorf("Expected exactly 1 node after applying twice, got %d", total)
	}
}

func TestRepository_RelationshipNeedsEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	driver := createTestDriver(t)
	defer driver.Close(ctx)

	repo := NewRepository(driver, os.Getenv("NEO4J_DATABASE"))
	err := repo.Apply(ctx,
		"MATCH (a:Faculty {name: $from}) MATCH (b:Email {address: $to}) MERGE (a)-[:HAS_EMAIL]->(b)",
		map[string]any{"from": "Nobody Integration", "to": "nobody@integration.test"})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	counts, err := repo.CountRelationships(ctx)
	if err != nil {
		t.Fatalf("CountRelationships failed: %v", err)
	}
	if _, ok := counts["HAS_EMAIL"]; ok {
		session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
		defer session.Close(ctx)
		result, _ := session.Run(ctx, "MATCH (:Faculty {name: $from})-[r:HAS_EMAIL]->() RETURN count(r) AS total",
			map[string]any{"from": "Nobody Integration"})
		if record, err := result.Single(ctx); err == nil && getInt64FromRecord(record, "total") != 0 {
			t.Error("Expected no relationship when endpoints are missing")
		}
	}
}

func createTestDriver(t *testing.T) neo4j.DriverWithContext {
	t.Helper()

	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}

	driver, err := NewDriver(context.Background(), uri, os.Getenv("NEO4J_USER"), os.Getenv("NEO4J_PASSWORD"))
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	return driver
}
