package processor

import (
	"encoding/json"
	"strings"

	"unigraph/backend/internal/constants"
	"unigraph/backend/internal/graph"
	"unigraph/backend/internal/source"
)

// Program levels
const (
	LevelUndergraduate = "undergraduate"
	LevelGraduate      = "graduate"
	LevelDoctorate     = "doctorate"
)

// levelKeywords is checked in order, so "postgraduate" and "sau đại học"
// are matched before the shorter keywords they contain
var levelKeywords = []struct {
	keyword string
	level   string
}{
	{"doctorate", LevelDoctorate},
	{"doctoral", LevelDoctorate},
	{"ph.d", LevelDoctorate},
	{"phd", LevelDoctorate},
	{"tiến sĩ", LevelDoctorate},
	{"undergraduate", LevelUndergraduate},
	{"bachelor", LevelUndergraduate},
	{"postgraduate", LevelGraduate},
	{"graduate", LevelGraduate},
	{"master", LevelGraduate},
	{"thạc sĩ", LevelGraduate},
	{"sau đại học", LevelGraduate},
	{"cử nhân", LevelUndergraduate},
	{"kỹ sư", LevelUndergraduate},
	{"đại học", LevelUndergraduate},
}

// InferProgramLevel guesses a program level from its name or description.
// It returns "" when no keyword matches.
func InferProgramLevel(text string) string {
	folded := graph.NormalizeKey(text)
	for _, k := range levelKeywords {
		if strings.Contains(folded, k.keyword) {
			return k.level
		}
	}
	return ""
}

// UniversityName returns the name a general document gives the university,
// or "" when it has none
func UniversityName(raw json.RawMessage) string {
	doc, err := source.ParseGeneral(raw)
	if err != nil {
		return ""
	}
	return graph.CleanKey(doc.Name)
}

// General processes the general-information file
type General struct{}

// Name implements Processor
func (General) Name() string { return constants.ProcessorGeneral }

// Process implements Processor
func (p General) Process(env *Env, raw json.RawMessage) Outcome {
	r := newRun(env, p.Name())

	doc, err := source.ParseGeneral(raw)
	if err != nil {
		return r.rejectDocument(err)
	}
	r.out.Variant = doc.Variant
	r.skips(doc.Skipped)
	r.issues(0, doc.Issues)
	if doc.Variant == source.VariantEmpty {
		return r.finish()
	}
	r.out.Records = 1 + len(doc.Programs) + len(doc.Departments) + len(doc.Skipped)

	website := doc.Website
	if website == "" {
		website = env.Website
	}
	props := map[string]any{"description": doc.Description, "website": website}
	if !r.node(0, graph.LabelUniversity, env.University, props) {
		return r.finish()
	}

	r.contacts(0, graph.LabelUniversity, env.University,
		r.emails(0, doc.Emails),
		r.phones(0, doc.Phones),
		r.addresses(doc.Addresses),
		graph.RelHasContactEmail, graph.RelHasContactPhone)

	r.section = "programs"
	for _, program := range doc.Programs {
		level := program.Level
		if level == "" {
			level = InferProgramLevel(program.Name + " " + program.Description)
		}
		props := map[string]any{"description": program.Description, "level": level}
		if r.node(program.Index, graph.LabelProgram, program.Name, props) {
			r.link(program.Index, graph.LabelUniversity, env.University, graph.RelOffersProgram, graph.LabelProgram, program.Name)
		}
	}

	r.section = "departments"
	for _, dept := range doc.Departments {
		r.department(dept.Index, dept.Name, map[string]any{"description": dept.Description, "website": dept.Website})
	}

	return r.finish()
}
