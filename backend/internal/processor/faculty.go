package processor

import (
	"encoding/json"

	"unigraph/backend/internal/constants"
	"unigraph/backend/internal/extractor"
	"unigraph/backend/internal/graph"
	"unigraph/backend/internal/source"
)

// Faculty processes the faculty file
type Faculty struct{}

// Name implements Processor
func (Faculty) Name() string { return constants.ProcessorFaculty }

// Process implements Processor
func (p Faculty) Process(env *Env, raw json.RawMessage) Outcome {
	r := newRun(env, p.Name())

	doc, err := source.ParseFaculty(raw)
	if err != nil {
		return r.rejectDocument(err)
	}
	r.out.Variant = doc.Variant
	r.out.Records = len(doc.Records) + len(doc.Skipped)
	r.skips(doc.Skipped)

	for _, rec := range doc.Records {
		r.issues(rec.Index, rec.Issues)
		if !r.node(rec.Index, graph.LabelFaculty, rec.Name, map[string]any{"title": rec.Title}) {
			r.skip(rec.Index, "name", "not a usable faculty name")
			continue
		}

		if rec.Department != "" && r.department(rec.Index, rec.Department, nil) {
			r.link(rec.Index, graph.LabelDepartment, rec.Department, graph.RelHasMember, graph.LabelFaculty, rec.Name)
		}

		for _, course := range rec.Courses {
			code := extractor.NormalizeCourseCode(course)
			if r.node(rec.Index, graph.LabelCourse, code, nil) {
				r.link(rec.Index, graph.LabelFaculty, rec.Name, graph.RelTeaches, graph.LabelCourse, code)
			}
		}

		for _, interest := range rec.ResearchInterests {
			if r.node(rec.Index, graph.LabelResearchInterest, interest, nil) {
				r.link(rec.Index, graph.LabelFaculty, rec.Name, graph.RelInterestedIn, graph.LabelResearchInterest, interest)
			}
		}

		r.contacts(rec.Index, graph.LabelFaculty, rec.Name,
			r.emails(rec.Index, rec.Emails),
			r.phones(rec.Index, rec.Phones),
			nil,
			graph.RelHasEmail, graph.RelHasPhone)
	}

	return r.finish()
}
