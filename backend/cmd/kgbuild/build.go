package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"unigraph/backend/internal/constants"
	"unigraph/backend/internal/graph"
	"unigraph/backend/internal/kg"
	"unigraph/backend/internal/source"
	"unigraph/backend/pkg/config"
	"unigraph/backend/pkg/logger"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kgbuild",
		Short: "Build the university knowledge graph",
		Long: `Build the university knowledge graph from the extracted faculty, course,
contact and general-information files.

By default the write statements are printed as a JSON array of
{statement, parameters} objects. With --execute they are applied to Neo4j.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runBuild,
	}

	flags := cmd.Flags()
	flags.String("faculty", constants.DefaultFacultyFile, "Faculty file (empty disables it)")
	flags.String("course", constants.DefaultCourseFile, "Course file (empty disables it)")
	flags.String("contact", constants.DefaultContactFile, "Contact file (empty disables it)")
	flags.String("general", constants.DefaultGeneralFile, "General information file (empty disables it)")
	flags.Bool("execute", false, "Apply the statements to Neo4j instead of printing them")
	flags.StringP("output", "o", "", "Write the dry-run statements to this file instead of stdout")
	flags.Bool("ensure-constraints", false, "Create key uniqueness constraints before writing")
	flags.String("uri", "bolt://localhost:7687", "Neo4j URI")
	flags.String("username", "neo4j", "Neo4j username")
	flags.String("password", "", "Neo4j password")
	flags.String("database", "neo4j", "Neo4j database")

	cmd.PersistentFlags().String("config", "", "Config file (yaml, json or toml)")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("log-file", "", "Also write logs to this rotated file")

	cmd.AddCommand(newAnalyzeCmd(), newVersionCmd())
	return cmd
}

func runBuild(cmd *cobra.Command, _ []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Env, logger.Options{Debug: cfg.Debug, File: cfg.LogFile}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Get()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	docs, err := source.Load(ctx, source.Paths{
		Faculty: cfg.FacultyPath,
		Course:  cfg.CoursePath,
		Contact: cfg.ContactPath,
		General: cfg.GeneralPath,
	})
	if err != nil {
		return err
	}

	// The store session is opened before any processing so that a bad
	// connection aborts the run early
	var repo *graph.Repository
	if cfg.Execute {
		driver, err := graph.NewDriver(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			return err
		}
		repo = graph.NewRepository(driver, cfg.Neo4jDatabase)
		defer repo.Close(context.Background())

		if cfg.EnsureConstraints {
			if err := repo.EnsureConstraints(ctx); err != nil {
				return err
			}
		}
	}

	k := kg.New(kg.Options{
		UniversityName:    cfg.UniversityName,
		UniversityWebsite: cfg.UniversityWebsite,
		CountryCode:       cfg.CountryCode,
		CoursePrefixes:    cfg.CoursePrefixes,
	}, log)
	k.Build(docs)

	if repo == nil {
		if err := writeStatements(cmd.OutOrStdout(), cfg.Output, k.Serialize()); err != nil {
			return err
		}
		k.Report().Log(log)
		return nil
	}

	report := k.ExecuteAll(ctx, repo)
	report.Log(log)
	logStoreCounts(ctx, log, repo)

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d writes failed", report.Failed, report.Queued)
	}
	return nil
}

// writeStatements writes the dry-run artifact to path, or to w when path is empty
func writeStatements(w io.Writer, path string, statements []graph.Statement) error {
	if path == "" {
		return encodeStatements(w, statements)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := encodeStatements(f, statements); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func encodeStatements(w io.Writer, statements []graph.Statement) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(statements); err != nil {
		return fmt.Errorf("failed to write statements: %w", err)
	}
	return nil
}

func logStoreCounts(ctx context.Context, log *zap.Logger, repo *graph.Repository) {
	nodes, err := repo.CountNodes(ctx)
	if err != nil {
		log.Warn("Failed to count nodes", zap.Error(err))
		return
	}
	rels, err := repo.CountRelationships(ctx)
	if err != nil {
		log.Warn("Failed to count relationships", zap.Error(err))
		return
	}
	log.Info("Store contents", zap.Any("nodes", nodes), zap.Any("relationships", rels))
}
