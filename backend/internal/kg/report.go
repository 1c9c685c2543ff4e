package kg

import (
	"go.uber.org/zap"

	"unigraph/backend/internal/graph"
	"unigraph/backend/internal/processor"
	apperrors "unigraph/backend/pkg/errors"
)

// Failure is one intent the store rejected
type Failure struct {
	Index     int    `json:"index"`
	Statement string `json:"statement"`
	Error     string `json:"error"`
}

// Report describes one build run. Nodes and Relationships count the intents
// that were executed, or that would be in a dry run.
type Report struct {
	RunID         string              `json:"run_id"`
	University    string              `json:"university"`
	DryRun        bool                `json:"dry_run"`
	Queued        int                 `json:"queued"`
	Executed      int                 `json:"executed"`
	Failed        int                 `json:"failed"`
	NodeRequests  map[string]int      `json:"node_requests"`
	NodesQueued   map[string]int      `json:"nodes_queued"`
	Nodes         map[string]int      `json:"nodes"`
	Relationships map[string]int      `json:"relationships"`
	Skipped       map[string]int      `json:"skipped"`
	Processors    []processor.Outcome `json:"processors"`
	Failures      []Failure           `json:"failures,omitempty"`
	Warnings      []string            `json:"warnings,omitempty"`
}

func (k *KnowledgeGraph) newReport(dryRun bool) *Report {
	stats := k.builder.Stats()
	r := &Report{
		RunID:         k.runID,
		University:    k.university,
		DryRun:        dryRun,
		Queued:        k.builder.Len(),
		NodeRequests:  make(map[string]int),
		NodesQueued:   make(map[string]int),
		Nodes:         make(map[string]int),
		Relationships: make(map[string]int),
		Skipped:       make(map[string]int),
		Processors:    k.outcomes,
	}
	for label, n := range stats.NodeRequests {
		r.NodeRequests[string(label)] = n
	}
	for label, n := range stats.NodesQueued {
		r.NodesQueued[string(label)] = n
	}
	for _, out := range k.outcomes {
		r.Skipped[out.Processor] += out.SkipCount()
		for _, s := range out.Skipped {
			r.Warnings = append(r.Warnings, s.Error())
		}
		r.Warnings = append(r.Warnings, out.Warnings...)
	}
	for _, path := range k.repaired {
		r.Warnings = append(r.Warnings, "repaired malformed json in "+path)
	}
	return r
}

func (r *Report) count(w *graph.WriteIntent) {
	if w.Kind == graph.IntentNode {
		r.Nodes[string(w.Label)]++
		return
	}
	r.Relationships[string(w.RelType)]++
}

func (r *Report) addFailure(err *apperrors.ErrWriteFailed) {
	r.Failed++
	r.Failures = append(r.Failures, Failure{
		Index:     err.Index,
		Statement: err.Statement,
		Error:     err.Error(),
	})
}

// SkippedTotal sums the skipped records of every processor
func (r *Report) SkippedTotal() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}

// Log writes the report summary at info level
func (r *Report) Log(logger *zap.Logger) {
	logger.Info("Build report",
		zap.String("run_id", r.RunID),
		zap.String("university", r.University),
		zap.Bool("dry_run", r.DryRun),
		zap.Int("queued", r.Queued),
		zap.Int("executed", r.Executed),
		zap.Int("failed", r.Failed),
		zap.Int("skipped", r.SkippedTotal()),
		zap.Int("warnings", len(r.Warnings)),
		zap.Any("nodes", r.Nodes),
		zap.Any("relationships", r.Relationships))

	for _, label := range graph.SortedKeys(r.NodeRequests) {
		logger.Debug("Node writes",
			zap.String("label", label),
			zap.Int("requested", r.NodeRequests[label]),
			zap.Int("queued", r.NodesQueued[label]))
	}
}
