package processor

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"unigraph/backend/internal/constants"
	"unigraph/backend/internal/extractor"
	"unigraph/backend/internal/graph"
	"unigraph/backend/internal/source"
)

// maxContactName is the longest contact name taken as a name; anything
// longer is prose that landed in the name field
const maxContactName = 100

// Contact processes the contact file
type Contact struct{}

// Name implements Processor
func (Contact) Name() string { return constants.ProcessorContact }

// Process implements Processor
func (p Contact) Process(env *Env, raw json.RawMessage) Outcome {
	r := newRun(env, p.Name())

	doc, err := source.ParseContact(raw)
	if err != nil {
		return r.rejectDocument(err)
	}
	r.out.Variant = doc.Variant
	r.out.Records = len(doc.Records) + len(doc.Skipped)
	r.skips(doc.Skipped)

	for _, rec := range doc.Records {
		r.issues(rec.Index, rec.Issues)

		name, description := rec.Name, rec.Description
		if utf8.RuneCountInString(name) > maxContactName {
			if description == "" {
				description = name
			}
			name = ""
		}

		label, target := graph.LabelDepartment, name
		if universityLevel(env, rec.Level, name) {
			label, target = graph.LabelUniversity, env.University
			if !r.university(rec.Index) {
				continue
			}
		} else {
			var props map[string]any
			if rec.Website != "" {
				props = map[string]any{"website": rec.Website}
			}
			if !r.department(rec.Index, name, props) {
				r.skip(rec.Index, "name", "not a usable department name")
				continue
			}
		}

		r.contacts(rec.Index, label, target,
			r.emails(rec.Index, rec.Emails),
			r.phones(rec.Index, rec.Phones),
			r.addresses(rec.Addresses),
			graph.RelHasContactEmail, graph.RelHasContactPhone)

		if description != "" {
			r.description(rec.Index, label, target, description)
		}
	}

	return r.finish()
}

// description mines free text for people and addresses belonging to the target
func (r *run) description(index int, label graph.Label, target, text string) {
	for c := range r.env.Extractor.Extract(extractor.PlainText(text)) {
		switch c.Kind {
		case extractor.KindAddress:
			r.contacts(index, label, target, nil, nil, []string{c.Value}, "", "")
		case extractor.KindPerson:
			if !r.node(index, graph.LabelFaculty, c.Value, map[string]any{"title": c.Title}) {
				continue
			}
			if label == graph.LabelDepartment {
				r.link(index, graph.LabelDepartment, target, graph.RelHasMember, graph.LabelFaculty, c.Value)
			}
			r.contacts(index, graph.LabelFaculty, c.Value, c.Emails, c.Phones, nil, graph.RelHasEmail, graph.RelHasPhone)
		}
	}
}

func universityLevel(env *Env, level, name string) bool {
	if strings.EqualFold(strings.TrimSpace(level), "university") {
		return true
	}
	key := graph.NormalizeKey(name)
	return key == "" || key == "general" || key == graph.NormalizeKey(env.University)
}
