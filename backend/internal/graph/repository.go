package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "unigraph/backend/pkg/errors"
	"unigraph/backend/pkg/logger"
)

// Store applies one parameterized write statement
type Store interface {
	Apply(ctx context.Context, statement string, params map[string]any) error
}

// NewDriver creates a Neo4j driver and verifies the server is reachable
func NewDriver(ctx context.Context, uri, username, password string) (neo4j.DriverWithContext, error) {
	auth := neo4j.NoAuth()
	if username != "" && password != "" {
		auth = neo4j.BasicAuth(username, password, "")
	}

	driver, err := neo4j.NewDriverWithContext(uri, auth)
	if err != nil {
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, apperrors.NewGraphConnectionFailed(uri, err)
	}

	return driver, nil
}

// Repository handles all Neo4j database operations
type Repository struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext, database string) *Repository {
	return &Repository{
		driver:   driver,
		database: database,
		logger:   logger.Get(),
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close(ctx context.Context) error {
	return r.driver.Close(ctx)
}

func (r *Repository) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: r.database})
}

// Apply runs one write statement in its own write transaction
func (r *Repository) Apply(ctx context.Context, statement string, params map[string]any) error {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, statement, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to apply statement: %w", err)
	}
	return nil
}

// EnsureConstraints creates a uniqueness constraint on every node key so
// MERGE is backed by an index
func (r *Repository) EnsureConstraints(ctx context.Context) error {
	session := r.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, label := range Labels() {
		query := fmt.Sprintf("CREATE CONSTRAINT %s_key IF NOT EXISTS FOR (n:%s) REQUIRE n.%s IS UNIQUE",
			label, label, label.KeyProperty())
		if _, err := session.Run(ctx, query, nil); err != nil {
			return fmt.Errorf("failed to create constraint for %s: %w", label, err)
		}
		r.logger.Debug("Constraint ensured", zap.String("label", string(label)))
	}
	return nil
}

// CountNodes returns how many nodes the store holds per label
func (r *Repository) CountNodes(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, `
		MATCH (n)
		UNWIND labels(n) AS name
		RETURN name, count(*) AS total
	`)
}

// CountRelationships returns how many relationships the store holds per type
func (r *Repository) CountRelationships(ctx context.Context) (map[string]int64, error) {
	return r.countBy(ctx, `
		MATCH ()-[rel]->()
		RETURN type(rel) AS name, count(*) AS total
	`)
}

func (r *Repository) countBy(ctx context.Context, query string) (map[string]int64, error) {
	session := r.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	counts := make(map[string]int64)
	for result.Next(ctx) {
		record := result.Record()
		name := getStringFromRecord(record, "name")
		if name == "" {
			continue
		}
		counts[name] = getInt64FromRecord(record, "total")
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read counts: %w", err)
	}
	return counts, nil
}
