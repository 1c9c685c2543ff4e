package source

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var instructorLabel = regexp.MustCompile(`(?i)^\s*(?:giảng viên|instructors?|lecturers?)\s*:\s*`)

// CourseRecord is one course as found in the course file
type CourseRecord struct {
	Index         int
	Code          string
	Name          string
	Description   string
	Credits       string
	Department    string
	Website       string // department website of the enclosing group
	Instructors   []string
	Prerequisites []string
	Issues        []Issue
}

// Key returns the course identity: its code, or its name when it has none
func (c CourseRecord) Key() string {
	if c.Code != "" {
		return c.Code
	}
	return c.Name
}

// CourseDocument is the parsed course file
type CourseDocument struct {
	Variant string
	Records []CourseRecord
	Skipped []Skip
}

// group is a department listing inside the course file
type group struct {
	department string
	website    string
}

// ParseCourse parses the course file. Array elements may be course records
// or department groups carrying their own course list.
func ParseCourse(raw json.RawMessage) (*CourseDocument, error) {
	doc := &CourseDocument{}

	switch shape(raw) {
	case 0:
		doc.Variant = VariantEmpty
	case '[':
		doc.Variant = VariantRecords
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil, fmt.Errorf("course array: %w", err)
		}
		for _, elem := range elems {
			doc.addElement(elem)
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
		switch {
		case isStream:
			doc.Variant = VariantStream
			doc.fold(items)
		case f.has("courses"):
			doc.Variant = VariantRecords
			doc.addElement(raw)
		default:
			return nil, fmt.Errorf("course object has neither items nor courses")
		}
	default:
		return nil, fmt.Errorf("course document is a %s", kindOf(raw))
	}
	return doc, nil
}

func (d *CourseDocument) nextIndex() int {
	return len(d.Records) + len(d.Skipped)
}

func (d *CourseDocument) addElement(raw json.RawMessage) {
	f, err := decodeFields(raw)
	if err != nil {
		d.Skipped = append(d.Skipped, Skip{Index: d.nextIndex(), Field: "record", Reason: err.Error()})
		return
	}
	if !f.has("courses") {
		d.add(f, group{})
		return
	}

	var g group
	var issue *Issue
	if g.department, issue = f.text("department_name", "department", "name"); issue != nil {
		d.Skipped = append(d.Skipped, Skip{Index: d.nextIndex(), Field: issue.Field, Reason: issue.Reason})
		return
	}
	g.website, _ = f.text("course_website", "website")

	_, coursesRaw, _ := f.lookup("courses")
	var courses []json.RawMessage
	if shape(coursesRaw) != '[' || json.Unmarshal(coursesRaw, &courses) != nil {
		d.Skipped = append(d.Skipped, Skip{Index: d.nextIndex(), Field: "courses", Reason: "expected array of course records"})
		return
	}
	for _, c := range courses {
		cf, err := decodeFields(c)
		if err != nil {
			d.Skipped = append(d.Skipped, Skip{Index: d.nextIndex(), Field: "record", Reason: err.Error()})
			continue
		}
		d.add(cf, g)
	}
}

func (d *CourseDocument) add(f fields, g group) {
	index := d.nextIndex()

	code, issue := f.text("code", "course_code")
	if issue != nil {
		d.Skipped = append(d.Skipped, Skip{Index: index, Field: issue.Field, Reason: issue.Reason})
		return
	}
	name, issue := f.text("name", "course_name", "title")
	if issue != nil {
		d.Skipped = append(d.Skipped, Skip{Index: index, Field: issue.Field, Reason: issue.Reason})
		return
	}
	if code == "" && name == "" {
		d.Skipped = append(d.Skipped, Skip{Index: index, Field: "code", Reason: "missing code and name"})
		return
	}

	rec := CourseRecord{Index: index, Code: code, Name: name, Department: g.department, Website: g.website}
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

	optText(&rec.Description, "description")
	optText(&rec.Credits, "credits")
	optText(&rec.Department, "department", "department_name")
	optList(&rec.Instructors, "instructors", "instructor")
	optList(&rec.Prerequisites, "prerequisites", "prerequisite")

	d.Records = append(d.Records, rec)
}

// fold turns an extraction stream into course records. A course code or
// name item starts a record; later items fill it in.
func (d *CourseDocument) fold(items []Item) {
	var current *CourseRecord
	department := ""

	for i, it := range items {
		text := strings.TrimSpace(string(it.Text))
		if text == "" {
			continue
		}

		switch {
		case it.Is("course_code", "course_name"):
			rec := CourseRecord{Index: i, Name: text, Department: department}
			if code := courseCodeText.FindString(text); code != "" {
				rec.Code = code
				rec.Name = strings.Trim(courseCodeText.ReplaceAllString(text, ""), " -:\u2013")
			}
			d.Records = append(d.Records, rec)
			current = &d.Records[len(d.Records)-1]
		case mentionsDepartment(it):
			department = text
			for k := range d.Records {
				if d.Records[k].Department == "" {
					d.Records[k].Department = department
				}
			}
		case current == nil:
		case it.Is("course_description", "description"):
			current.Description = text
		case it.Is("credits") || containsFold(text, "credit", "tín chỉ"):
			if n := digitsText.FindString(text); n != "" {
				current.Credits = n
			}
		case it.Is("instructor") || containsFold(text, "giảng viên", "lecturer", "instructor"):
			for _, name := range strings.Split(instructorLabel.ReplaceAllString(text, ""), ",") {
				if name = strings.TrimSpace(name); name != "" {
					current.Instructors = append(current.Instructors, name)
				}
			}
		case it.Is("prerequisite") || containsFold(text, "học phần tiên quyết", "prerequisite"):
			current.Prerequisites = append(current.Prerequisites, courseCodeText.FindAllString(text, -1)...)
		}
	}
}
