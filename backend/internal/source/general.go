package source

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProgramEntry is an academic program listed by the university
type ProgramEntry struct {
	Index       int
	Name        string
	Description string
	Level       string
}

// DepartmentEntry is a department listed by the university
type DepartmentEntry struct {
	Index       int
	Name        string
	Description string
	Website     string
}

// GeneralDocument is the parsed general-information file
type GeneralDocument struct {
	Variant     string
	Name        string
	Description string
	Website     string
	Emails      []string
	Phones      []string
	Addresses   []string
	Programs    []ProgramEntry
	Departments []DepartmentEntry
	Skipped     []Skip
	Issues      []Issue
}

// ParseGeneral parses the general-information file: either a structured
// object or an extraction stream
func ParseGeneral(raw json.RawMessage) (*GeneralDocument, error) {
	doc := &GeneralDocument{}

	switch shape(raw) {
	case 0:
		doc.Variant = VariantEmpty
		return doc, nil
	case '{':
	default:
		return nil, fmt.Errorf("general document is a %s", kindOf(raw))
	}

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

	doc.Variant = VariantStructured
	optText := func(dst *string, names ...string) {
		v, issue := f.text(names...)
		if issue != nil {
			doc.Issues = append(doc.Issues, *issue)
			return
		}
		*dst = v
	}
	optList := func(dst *[]string, names ...string) {
		v, issue := f.list(names...)
		if issue != nil {
			doc.Issues = append(doc.Issues, *issue)
			return
		}
		*dst = append(*dst, v...)
	}

	optText(&doc.Name, "name", "university_name")
	optText(&doc.Description, "description")
	optText(&doc.Website, "website")
	optList(&doc.Emails, "emails", "email")
	optList(&doc.Phones, "phones", "phone")
	if v, issue := f.entries("addresses", "address"); issue != nil {
		doc.Issues = append(doc.Issues, *issue)
	} else {
		doc.Addresses = v
	}

	if _, programs, ok := f.lookup("programs"); ok {
		doc.parsePrograms(programs)
	}
	if _, departments, ok := f.lookup("departments"); ok {
		doc.parseDepartments(departments)
	}
	return doc, nil
}

// entryList walks an array whose elements are names or objects
func (d *GeneralDocument) entryList(field string, raw json.RawMessage, each func(index int, name string, f fields)) {
	if shape(raw) == 0 {
		return
	}
	if shape(raw) != '[' {
		var names Strings
		if err := json.Unmarshal(raw, &names); err != nil {
			d.Skipped = append(d.Skipped, Skip{Index: -1, Field: field, Reason: err.Error()})
			return
		}
		for i, name := range names {
			each(i, name, nil)
		}
		return
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		d.Skipped = append(d.Skipped, Skip{Index: -1, Field: field, Reason: err.Error()})
		return
	}
	for i, elem := range elems {
		if shape(elem) == '{' {
			f, err := decodeFields(elem)
			if err != nil {
				d.Skipped = append(d.Skipped, Skip{Index: i, Field: field, Reason: err.Error()})
				continue
			}
			name, issue := f.text("name")
			if issue != nil {
				d.Skipped = append(d.Skipped, Skip{Index: i, Field: field + ".name", Reason: issue.Reason})
				continue
			}
			each(i, name, f)
			continue
		}
		var t Text
		if err := json.Unmarshal(elem, &t); err != nil {
			d.Skipped = append(d.Skipped, Skip{Index: i, Field: field, Reason: err.Error()})
			continue
		}
		each(i, string(t), nil)
	}
}

func (d *GeneralDocument) parsePrograms(raw json.RawMessage) {
	d.entryList("programs", raw, func(i int, name string, f fields) {
		if name == "" {
			d.Skipped = append(d.Skipped, Skip{Index: i, Field: "programs.name", Reason: "missing"})
			return
		}
		p := ProgramEntry{Index: i, Name: name}
		if f != nil {
			p.Description, _ = f.text("description")
			p.Level, _ = f.text("level")
		}
		d.Programs = append(d.Programs, p)
	})
}

func (d *GeneralDocument) parseDepartments(raw json.RawMessage) {
	d.entryList("departments", raw, func(i int, name string, f fields) {
		if name == "" {
			d.Skipped = append(d.Skipped, Skip{Index: i, Field: "departments.name", Reason: "missing"})
			return
		}
		dep := DepartmentEntry{Index: i, Name: name}
		if f != nil {
			dep.Description, _ = f.text("description")
			dep.Website, _ = f.text("website", "url")
		}
		d.Departments = append(d.Departments, dep)
	})
}

// fold reads university facts from an extraction stream. One item may feed
// several facts, e.g. a department line that also carries a phone number.
func (d *GeneralDocument) fold(items []Item) {
	for i, it := range items {
		text := strings.TrimSpace(string(it.Text))
		if text == "" {
			continue
		}

		switch {
		case it.Is("university_name", "university"):
			d.Name = text
		case it.Is("university_description", "description"):
			d.Description = text
		}

		if it.Is("email") || strings.Contains(text, "@") {
			d.Emails = appendNew(d.Emails, text)
		}
		if it.Is("phone") || containsFold(text, "tel", "phone", "điện thoại") {
			d.Phones = appendNew(d.Phones, text)
		}
		if it.Is("address", "location") && len(strings.Fields(text)) > 3 && !strings.HasPrefix(text, "http") {
			d.Addresses = appendNew(d.Addresses, text)
		}
		if mentionsDepartment(it) {
			dep := DepartmentEntry{Index: i, Name: text}
			if len(it.LinkURLs) > 0 {
				dep.Website = it.LinkURLs[0]
			}
			d.Departments = append(d.Departments, dep)
		}
		if it.Is("program") || strings.Contains(text, "Chương trình") {
			d.Programs = append(d.Programs, ProgramEntry{Index: i, Name: text})
		}
	}
}

func appendNew(values []string, v string) []string {
	for _, have := range values {
		if have == v {
			return values
		}
	}
	return append(values, v)
}
