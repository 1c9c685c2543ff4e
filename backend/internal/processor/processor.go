package processor

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"unigraph/backend/internal/extractor"
	"unigraph/backend/internal/graph"
	"unigraph/backend/internal/source"
	apperrors "unigraph/backend/pkg/errors"
)

// Env is what every processor of one build run shares
type Env struct {
	Builder    *graph.Builder
	Extractor  *extractor.Extractor
	University string
	Website    string
	// Prefixes maps a course code prefix to a department name
	Prefixes map[string]string
	Logger   *zap.Logger
}

// Outcome summarizes what one processor did with its document
type Outcome struct {
	Processor string                        `json:"processor"`
	Variant   string                        `json:"variant"`
	Records   int                           `json:"records"`
	Intents   int                           `json:"intents"`
	Skipped   []*apperrors.ErrRecordSkipped `json:"-"`
	Warnings  []string                      `json:"warnings,omitempty"`
}

// SkipCount returns how many records were skipped
func (o Outcome) SkipCount() int {
	return len(o.Skipped)
}

// Processor turns one input document into write-intents
type Processor interface {
	Name() string
	Process(env *Env, raw json.RawMessage) Outcome
}

// run carries the bookkeeping of a single Process call
type run struct {
	env    *Env
	out    Outcome
	before int
	// section names the list an index points into when a document has several
	section string
}

func newRun(env *Env, name string) *run {
	return &run{
		env:    env,
		out:    Outcome{Processor: name},
		before: env.Builder.Len(),
	}
}

func (r *run) finish() Outcome {
	r.out.Intents = r.env.Builder.Len() - r.before
	return r.out
}

func (r *run) skip(index int, field, reason string) {
	err := apperrors.NewRecordSkipped(r.out.Processor, index, field, reason)
	r.out.Skipped = append(r.out.Skipped, err)
	r.env.Logger.Warn("Record skipped",
		zap.String("processor", r.out.Processor),
		zap.Int("index", index),
		zap.String("field", field),
		zap.String("reason", reason))
}

func (r *run) skips(skipped []source.Skip) {
	for _, s := range skipped {
		r.skip(s.Index, s.Field, s.Reason)
	}
}

// rejectDocument records a document that matched no known shape
func (r *run) rejectDocument(err error) Outcome {
	r.skip(-1, "document", err.Error())
	return r.finish()
}

func (r *run) warn(index int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	where := r.out.Processor
	if r.section != "" {
		where += "." + r.section
	}
	r.out.Warnings = append(r.out.Warnings, fmt.Sprintf("%s[%d]: %s", where, index, msg))
	r.env.Logger.Warn("Value dropped",
		zap.String("processor", r.out.Processor),
		zap.String("section", r.section),
		zap.Int("index", index),
		zap.String("detail", msg))
}

func (r *run) issues(index int, issues []source.Issue) {
	for _, is := range issues {
		r.warn(index, "invalid %s: %s", is.Field, is.Reason)
	}
}

// node queues a node write; a builder error becomes a warning
func (r *run) node(index int, label graph.Label, key string, props map[string]any) bool {
	if _, err := r.env.Builder.NodeWrite(label, key, props); err != nil {
		r.warn(index, "%v", err)
		return false
	}
	return true
}

// link queues a relationship and its inverse; a builder error becomes a warning
func (r *run) link(index int, fromLabel graph.Label, fromKey string, relType graph.RelType, toLabel graph.Label, toKey string) bool {
	if err := r.env.Builder.Link(fromLabel, fromKey, relType, toLabel, toKey); err != nil {
		r.warn(index, "%v", err)
		return false
	}
	return true
}

// university registers the University node by key only. Its properties
// come from the general document.
func (r *run) university(index int) bool {
	return r.node(index, graph.LabelUniversity, r.env.University, nil)
}

// department registers a Department and pairs it with the University
func (r *run) department(index int, name string, props map[string]any) bool {
	if !r.node(index, graph.LabelDepartment, name, props) || !r.university(index) {
		return false
	}
	return r.link(index, graph.LabelUniversity, r.env.University, graph.RelHasDepartment, graph.LabelDepartment, name)
}

// emails normalizes raw email values. A value that is not an address on
// its own is searched for embedded addresses ("Email: a@b.edu").
func (r *run) emails(index int, values []string) []string {
	var out []string
	for _, raw := range values {
		if email := extractor.NormalizeEmail(raw); extractor.ValidEmail(email) {
			out = appendUnique(out, email)
			continue
		}
		found := false
		for c := range r.env.Extractor.Extract(raw) {
			if c.Kind == extractor.KindEmail {
				out = appendUnique(out, c.Value)
				found = true
			}
		}
		if !found {
			r.warn(index, "invalid email %q", raw)
		}
	}
	return out
}

// phones normalizes raw phone values the same way emails does
func (r *run) phones(index int, values []string) []string {
	var out []string
	for _, raw := range values {
		if phone, ok := extractor.NormalizePhone(raw, r.env.Extractor.CountryCode()); ok {
			out = appendUnique(out, phone)
			continue
		}
		found := false
		for c := range r.env.Extractor.Extract(raw) {
			if c.Kind == extractor.KindPhone {
				out = appendUnique(out, c.Value)
				found = true
			}
		}
		if !found {
			r.warn(index, "invalid phone %q", raw)
		}
	}
	return out
}

// addresses normalizes raw address values, unwrapping "Address: ..." labels
func (r *run) addresses(values []string) []string {
	var out []string
	for _, raw := range values {
		value := ""
		for c := range r.env.Extractor.Extract(raw) {
			if c.Kind == extractor.KindAddress {
				value = c.Value
				break
			}
		}
		if value == "" {
			value = extractor.NormalizeAddress(raw)
		}
		if value != "" {
			out = appendUnique(out, value)
		}
	}
	return out
}

// contacts registers emails, phones and addresses and links them to the owner
func (r *run) contacts(index int, ownerLabel graph.Label, owner string, emails, phones, addresses []string, emailRel, phoneRel graph.RelType) {
	for _, email := range emails {
		if r.node(index, graph.LabelEmail, email, nil) {
			r.link(index, ownerLabel, owner, emailRel, graph.LabelEmail, email)
		}
	}
	for _, phone := range phones {
		if r.node(index, graph.LabelPhoneNumber, phone, nil) {
			r.link(index, ownerLabel, owner, phoneRel, graph.LabelPhoneNumber, phone)
		}
	}
	for _, address := range addresses {
		if r.node(index, graph.LabelAddress, address, nil) {
			r.link(index, ownerLabel, owner, graph.RelHasLocation, graph.LabelAddress, address)
		}
	}
}

func appendUnique(values []string, v string) []string {
	for _, have := range values {
		if have == v {
			return values
		}
	}
	return append(values, v)
}

// Default returns the processors in the order a build runs them
func Default() []Processor {
	return []Processor{Faculty{}, Course{}, Contact{}, General{}}
}
