package processor

import (
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"unigraph/backend/internal/constants"
	"unigraph/backend/internal/extractor"
	"unigraph/backend/internal/graph"
	"unigraph/backend/internal/source"
)

// Course processes the course file
type Course struct{}

// Name implements Processor
func (Course) Name() string { return constants.ProcessorCourse }

// Process implements Processor. A first pass learns which department each
// course code prefix belongs to, so courses listed without a department
// can still be placed.
func (p Course) Process(env *Env, raw json.RawMessage) Outcome {
	r := newRun(env, p.Name())

	doc, err := source.ParseCourse(raw)
	if err != nil {
		return r.rejectDocument(err)
	}
	r.out.Variant = doc.Variant
	r.out.Records = len(doc.Records) + len(doc.Skipped)
	r.skips(doc.Skipped)

	prefixes := learnPrefixes(doc.Records, env.Prefixes)
	env.Logger.Debug("Course prefixes", zap.Int("count", len(prefixes)))

	for _, rec := range doc.Records {
		r.issues(rec.Index, rec.Issues)

		key := rec.Name
		props := map[string]any{"description": rec.Description}
		if rec.Code != "" {
			key = extractor.NormalizeCourseCode(rec.Code)
			props["title"] = rec.Name
		}
		if rec.Credits != "" {
			props["credits"] = credits(rec.Credits)
		}
		if !r.node(rec.Index, graph.LabelCourse, key, props) {
			r.skip(rec.Index, "code", "not a usable course key")
			continue
		}

		department := rec.Department
		if department == "" {
			department = prefixes[extractor.CoursePrefix(key)]
		}
		if department != "" {
			var deptProps map[string]any
			if rec.Website != "" {
				deptProps = map[string]any{"website": rec.Website}
			}
			if r.department(rec.Index, department, deptProps) {
				r.link(rec.Index, graph.LabelDepartment, department, graph.RelOffersCourse, graph.LabelCourse, key)
			}
		}

		for _, instructor := range rec.Instructors {
			if r.node(rec.Index, graph.LabelFaculty, instructor, nil) {
				r.link(rec.Index, graph.LabelFaculty, instructor, graph.RelTeaches, graph.LabelCourse, key)
			}
		}

		for _, prereq := range rec.Prerequisites {
			code := extractor.NormalizeCourseCode(prereq)
			if graph.NormalizeKey(code) == graph.NormalizeKey(key) {
				r.warn(rec.Index, "course %s lists itself as a prerequisite", key)
				continue
			}
			// placeholder; the prerequisite may never be defined
			if r.node(rec.Index, graph.LabelCourse, code, nil) {
				r.link(rec.Index, graph.LabelCourse, code, graph.RelIsPrerequisiteFor, graph.LabelCourse, key)
			}
		}
	}

	return r.finish()
}

// learnPrefixes maps code prefixes to the first department seen with them.
// Configured prefixes win over learned ones.
func learnPrefixes(records []source.CourseRecord, configured map[string]string) map[string]string {
	prefixes := make(map[string]string)
	for _, rec := range records {
		if rec.Code == "" || rec.Department == "" {
			continue
		}
		prefix := extractor.CoursePrefix(rec.Code)
		if _, ok := prefixes[prefix]; prefix != "" && !ok {
			prefixes[prefix] = rec.Department
		}
	}
	for prefix, department := range configured {
		prefixes[strings.ToUpper(prefix)] = department
	}
	return prefixes
}

// credits stores whole numbers as integers and anything else as given
func credits(value string) any {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		return n
	}
	return value
}
