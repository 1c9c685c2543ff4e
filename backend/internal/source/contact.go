package source

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ContactRecord is one block of contact details, for a department or for
// the university itself
type ContactRecord struct {
	Index       int
	Name        string
	Level       string
	Description string
	Website     string
	Emails      []string
	Phones      []string
	Addresses   []string
	Issues      []Issue
}

// ContactDocument is the parsed contact file
type ContactDocument struct {
	Variant string
	Records []ContactRecord
	Skipped []Skip
}

// Contact file variants
const (
	VariantDepartments = "departments"
)

// ParseContact parses the contact file
func ParseContact(raw json.RawMessage) (*ContactDocument, error) {
	doc := &ContactDocument{}

	switch shape(raw) {
	case 0:
		doc.Variant = VariantEmpty
	case '[':
		doc.Variant = VariantRecords
		if err := doc.addArray(raw); err != nil {
			return nil, err
		}
	case '{':
		f, err := decodeFields(raw)
		if err != nil {
			return nil, err
		}
		if _, departments, ok := f.lookup("departments"); ok {
			doc.Variant = VariantDepartments
			if err := doc.addArray(departments); err != nil {
				return nil, fmt.Errorf("departments: %w", err)
			}
			return doc, nil
		}

		doc.Variant = VariantByDepartment
		members, err := orderedMembers(raw)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			if shape(m.Value) != '{' {
				doc.Skipped = append(doc.Skipped, Skip{Index: doc.nextIndex(), Field: m.Key, Reason: "expected contact object"})
				continue
			}
			doc.add(m.Value, strings.TrimSpace(m.Key))
		}
	default:
		return nil, fmt.Errorf("contact document is a %s", kindOf(raw))
	}
	return doc, nil
}

func (d *ContactDocument) nextIndex() int {
	return len(d.Records) + len(d.Skipped)
}

func (d *ContactDocument) addArray(raw json.RawMessage) error {
	if shape(raw) != '[' {
		return fmt.Errorf("expected array, got %s", kindOf(raw))
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return err
	}
	for _, elem := range elems {
		d.add(elem, "")
	}
	return nil
}

func (d *ContactDocument) add(raw json.RawMessage, name string) {
	index := d.nextIndex()
	f, err := decodeFields(raw)
	if err != nil {
		d.Skipped = append(d.Skipped, Skip{Index: index, Field: "record", Reason: err.Error()})
		return
	}

	rec := ContactRecord{Index: index, Name: name}
	if v, issue := f.text("name", "department", "department_name"); issue != nil {
		d.Skipped = append(d.Skipped, Skip{Index: index, Field: issue.Field, Reason: issue.Reason})
		return
	} else if v != "" {
		rec.Name = v
	}

	optText := func(dst *string, names ...string) {
		v, issue := f.text(names...)
		if issue != nil {
			rec.Issues = append(rec.Issues, *issue)
			return
		}
		*dst = v
	}
	optList := func(dst *[]string, names ...string) {
		v, issue := f.list(names...)
		if issue != nil {
			rec.Issues = append(rec.Issues, *issue)
			return
		}
		*dst = append(*dst, v...)
	}
	optEntries := func(dst *[]string, names ...string) {
		v, issue := f.entries(names...)
		if issue != nil {
			rec.Issues = append(rec.Issues, *issue)
			return
		}
		*dst = append(*dst, v...)
	}

	optText(&rec.Level, "level")
	optText(&rec.Description, "description", "text")
	optText(&rec.Website, "website")
	optList(&rec.Emails, "emails")
	optList(&rec.Emails, "email")
	optList(&rec.Phones, "phones")
	optList(&rec.Phones, "phone")
	optEntries(&rec.Addresses, "addresses")
	optEntries(&rec.Addresses, "address")

	d.Records = append(d.Records, rec)
}
