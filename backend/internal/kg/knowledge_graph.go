package kg

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"unigraph/backend/internal/constants"
	"unigraph/backend/internal/extractor"
	"unigraph/backend/internal/graph"
	"unigraph/backend/internal/processor"
	"unigraph/backend/internal/source"
	apperrors "unigraph/backend/pkg/errors"
)

// Options are the per-run defaults
type Options struct {
	UniversityName    string
	UniversityWebsite string
	CountryCode       string
	// CoursePrefixes maps a course code prefix to a department; it wins over
	// prefixes learned from the course file
	CoursePrefixes map[string]string
}

// KnowledgeGraph runs the processors of one build against a shared registry
// and builder, then serializes or executes the queued intents
type KnowledgeGraph struct {
	runID      string
	opts       Options
	registry   *graph.Registry
	builder    *graph.Builder
	extractor  *extractor.Extractor
	processors []processor.Processor
	university string
	outcomes   []processor.Outcome
	repaired   []string
	logger     *zap.Logger
}

// New creates a knowledge graph for one build run
func New(opts Options, logger *zap.Logger) *KnowledgeGraph {
	if opts.UniversityName == "" {
		opts.UniversityName = constants.DefaultUniversityName
	}
	if opts.CountryCode == "" {
		opts.CountryCode = constants.DefaultCountryCode
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := graph.NewRegistry()
	runID := uuid.NewString()
	return &KnowledgeGraph{
		runID:      runID,
		opts:       opts,
		registry:   registry,
		builder:    graph.NewBuilder(registry),
		extractor:  extractor.New(extractor.WithCountryCode(opts.CountryCode)),
		processors: processor.Default(),
		university: opts.UniversityName,
		logger:     logger.With(zap.String("run_id", runID)),
	}
}

// RunID identifies this build run in logs and reports
func (k *KnowledgeGraph) RunID() string {
	return k.runID
}

// University returns the name the University node is keyed by
func (k *KnowledgeGraph) University() string {
	return k.university
}

// Builder exposes the run's builder
func (k *KnowledgeGraph) Builder() *graph.Builder {
	return k.builder
}

// Build runs every processor in order. The university name comes from the
// general document when it names one, so that every processor links to the
// same University node.
func (k *KnowledgeGraph) Build(docs source.Documents) []processor.Outcome {
	if name := processor.UniversityName(docs.General); name != "" {
		k.university = name
	}
	k.repaired = append(k.repaired, docs.Repaired...)

	env := &processor.Env{
		Builder:    k.builder,
		Extractor:  k.extractor,
		University: k.university,
		Website:    k.opts.UniversityWebsite,
		Prefixes:   k.opts.CoursePrefixes,
		Logger:     k.logger,
	}

	inputs := map[string]json.RawMessage{
		constants.ProcessorFaculty: docs.Faculty,
		constants.ProcessorCourse:  docs.Course,
		constants.ProcessorContact: docs.Contact,
		constants.ProcessorGeneral: docs.General,
	}

	k.logger.Info("Building knowledge graph", zap.String("university", k.university))

	var outcomes []processor.Outcome
	for _, p := range k.processors {
		raw := inputs[p.Name()]
		if raw == nil {
			k.logger.Debug("Source disabled", zap.String("processor", p.Name()))
			continue
		}

		start := time.Now()
		out := p.Process(env, raw)
		k.logger.Info("Processed source",
			zap.String("processor", out.Processor),
			zap.String("variant", out.Variant),
			zap.Int("records", out.Records),
			zap.Int("skipped", out.SkipCount()),
			zap.Int("intents", out.Intents),
			zap.Duration("duration", time.Since(start)))
		outcomes = append(outcomes, out)
	}

	k.outcomes = append(k.outcomes, outcomes...)
	return outcomes
}

// Serialize returns the queued intents as ordered statement/parameter pairs
func (k *KnowledgeGraph) Serialize() []graph.Statement {
	intents := k.builder.Intents()
	out := make([]graph.Statement, 0, len(intents))
	for _, w := range intents {
		out = append(out, w.Serialize())
	}
	return out
}

// ExecuteAll submits the queued intents one at a time. A failed intent is
// recorded and the rest are still attempted. Cancelling ctx stops the run;
// the intents not yet submitted count as neither executed nor failed.
func (k *KnowledgeGraph) ExecuteAll(ctx context.Context, store graph.Store) *Report {
	report := k.newReport(false)
	start := time.Now()

	for i, w := range k.builder.Intents() {
		if err := ctx.Err(); err != nil {
			cancelled := apperrors.NewContextCancelled("execute", err)
			report.Warnings = append(report.Warnings, cancelled.Error())
			k.logger.Warn("Execution cancelled", zap.Int("submitted", i), zap.Error(err))
			break
		}

		if err := store.Apply(ctx, w.Statement, w.Parameters); err != nil {
			failure := apperrors.NewWriteFailed(i, w.Statement, err)
			report.addFailure(failure)
			k.logger.Error("Write failed",
				zap.Int("index", i),
				zap.String("statement", w.Statement),
				zap.Error(err))
			continue
		}
		report.Executed++
		report.count(w)
	}

	k.logger.Info("Executed intents",
		zap.Int("executed", report.Executed),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", time.Since(start)))
	return report
}

// Report returns the dry-run report: what would be written
func (k *KnowledgeGraph) Report() *Report {
	report := k.newReport(true)
	for _, w := range k.builder.Intents() {
		report.count(w)
	}
	return report
}
