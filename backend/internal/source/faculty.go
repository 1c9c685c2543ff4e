package source

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FacultyRecord is one faculty member as found in the faculty file
type FacultyRecord struct {
	Index             int
	Name              string
	Title             string
	Department        string
	ResearchInterests []string
	Emails            []string
	Phones            []string
	Courses           []string
	Issues            []Issue
}

// FacultyDocument is the parsed faculty file
type FacultyDocument struct {
	Variant string
	Records []FacultyRecord
	Skipped []Skip
}

// Faculty file variants
const (
	VariantRecords      = "records"
	VariantByDepartment = "by_department"
	VariantStream       = "stream"
	VariantStructured   = "structured"
	VariantEmpty        = "empty"
)

// ParseFaculty parses the faculty file. It returns an error only when the
// document matches none of the known shapes.
func ParseFaculty(raw json.RawMessage) (*FacultyDocument, error) {
	doc := &FacultyDocument{}

	switch shape(raw) {
	case 0:
		doc.Variant = VariantEmpty
	case '[':
		doc.Variant = VariantRecords
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, fmt.Errorf("faculty array: %w", err)
		}
		for _, elem := range elems {
			doc.add(elem, "")
		}
	case '{':
		f, err := decodeFields(raw)
		if err != nil {
			return nil, err
		}
		items, isStream, err := streamItems(f)
		if err != nil {
			return nil, err
		}
		if isStream {
			doc.Variant = VariantStream
			doc.fold(items)
			return doc, nil
		}

		doc.Variant = VariantByDepartment
		members, err := orderedMembers(raw)
		if err != nil {
			return nil, err
		}
		grouped := false
		for _, m := range members {
			var elems []json.RawMessage
			if shape(m.Value) != '[' || json.Unmarshal(m.Value, &elems) != nil {
				doc.Skipped = append(doc.Skipped, Skip{Index: -1, Field: m.Key, Reason: "expected array of faculty records"})
				continue
			}
			grouped = true
			for _, elem := range elems {
				doc.add(elem, strings.TrimSpace(m.Key))
			}
		}
		if !grouped && len(members) > 0 {
			return nil, fmt.Errorf("faculty object has no department arrays")
		}
	default:
		return nil, fmt.Errorf("faculty document is a %s", kindOf(raw))
	}
	return doc, nil
}

func (d *FacultyDocument) nextIndex() int {
	return len(d.Records) + len(d.Skipped)
}

func (d *FacultyDocument) add(raw json.RawMessage, department string) {
	index := d.nextIndex()
	f, err := decodeFields(raw)
	if err != nil {
		d.Skipped = append(d.Skipped, Skip{Index: index, Field: "record", Reason: err.Error()})
		return
	}

	name, issue := f.text("name", "full_name")
	if issue != nil {
		d.Skipped = append(d.Skipped, Skip{Index: index, Field: issue.Field, Reason: issue.Reason})
		return
	}
	if name == "" {
		d.Skipped = append(d.Skipped, Skip{Index: index, Field: "name", Reason: "missing"})
		return
	}

	rec := FacultyRecord{Index: index, Name: name, Department: department}
	optText := func(dst *string, names ...string) {
		v, issue := f.text(names...)
		if issue != nil {
			rec.Issues = append(rec.Issues, *issue)
			return
		}
		if v != "" {
			*dst = v
		}
	}
	optList := func(dst *[]string, names ...string) {
		v, issue := f.list(names...)
		if issue != nil {
			rec.Issues = append(rec.Issues, *issue)
			return
		}
		*dst = append(*dst, v...)
	}

	optText(&rec.Title, "title", "position")
	optText(&rec.Department, "department", "department_name")
	optList(&rec.ResearchInterests, "research_interests", "research")
	optList(&rec.Emails, "email")
	optList(&rec.Emails, "emails")
	optList(&rec.Phones, "phone")
	optList(&rec.Phones, "phones")
	optList(&rec.Courses, "courses", "teaches")

	d.Records = append(d.Records, rec)
}

// fold turns an extraction stream into records. A person item starts a
// record; department items set the context for later records and fill it
// in on earlier ones that had none.
func (d *FacultyDocument) fold(items []Item) {
	var current *FacultyRecord
	department := ""

	for i, it := range items {
		text := strings.TrimSpace(string(it.Text))
		if text == "" {
			continue
		}

		switch {
		case it.Is("faculty_name", "person_name"):
			d.Records = append(d.Records, FacultyRecord{Index: i, Name: text, Department: department})
			current = &d.Records[len(d.Records)-1]
		case mentionsDepartment(it):
			department = text
			for k := range d.Records {
				if d.Records[k].Department == "" {
					d.Records[k].Department = department
				}
			}
		case current == nil:
		case it.Is("title") || titleText.MatchString(text):
			current.Title = text
		case it.Is("research_interest", "research"):
			current.ResearchInterests = append(current.ResearchInterests, text)
		case it.Is("email") || strings.Contains(text, "@"):
			current.Emails = append(current.Emails, text)
		case it.Is("phone") || containsFold(text, "tel", "phone", "điện thoại"):
			current.Phones = append(current.Phones, text)
		case it.Is("course", "course_code"):
			current.Courses = append(current.Courses, text)
		}
	}
}
