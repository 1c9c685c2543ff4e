package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var listSeparator = regexp.MustCompile(`[,;|\n]+`)

// Text is a scalar field that accepts a JSON string or number. Null and
// absent values decode to "".
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(strings.TrimSpace(s))
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*t = Text(n.String())
	default:
		return fmt.Errorf("expected string or number, got %s", kindOf(data))
	}
	return nil
}

// String returns the value
func (t Text) String() string {
	return string(t)
}

// Strings is a list field that accepts a JSON array of scalars, a single
// delimited string ("a, b; c") or null
type Strings []string

// UnmarshalJSON implements json.Unmarshaler
func (s *Strings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	switch data[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(data, &elems); err != nil {
			return err
		}
		out := make(Strings, 0, len(elems))
		for i, elem := range elems {
			var t Text
			if err := t.UnmarshalJSON(elem); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
			if t != "" {
				out = append(out, string(t))
			}
		}
		*s = out
	default:
		var t Text
		if err := t.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("expected list or delimited string: %w", err)
		}
		*s = splitList(string(t))
	}
	return nil
}

func splitList(value string) Strings {
	var out Strings
	for _, part := range listSeparator.Split(value, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Item is one element of an extraction stream document
type Item struct {
	Text          Text    `json:"text"`
	SemanticTypes Strings `json:"semantic_types"`
	LinkURLs      Strings `json:"link_urls"`
}

// Is reports whether the item carries any of the semantic types
func (it Item) Is(types ...string) bool {
	for _, have := range it.SemanticTypes {
		for _, want := range types {
			if strings.EqualFold(have, want) {
				return true
			}
		}
	}
	return false
}

// Skip records a record that could not be used
type Skip struct {
	Index  int    `json:"index"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Issue is a problem with an optional field; the value was dropped
type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// fields is a decoded JSON object read one field at a time so a problem can
// be reported against the field that caused it
type fields map[string]json.RawMessage

func decodeFields(raw json.RawMessage) (fields, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("expected object, got %s", kindOf(raw))
	}
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return f, nil
}

// lookup returns the first present key among names
func (f fields) lookup(names ...string) (string, json.RawMessage, bool) {
	for _, name := range names {
		if v, ok := f[name]; ok {
			return name, v, true
		}
	}
	return names[0], nil, false
}

func (f fields) has(names ...string) bool {
	_, _, ok := f.lookup(names...)
	return ok
}

// text decodes a scalar field. A wrong type is returned as an Issue.
func (f fields) text(names ...string) (string, *Issue) {
	name, raw, ok := f.lookup(names...)
	if !ok {
		return "", nil
	}
	var t Text
	if err := json.Unmarshal(raw, &t); err != nil {
		return "", &Issue{Field: name, Reason: err.Error()}
	}
	return string(t), nil
}

// list decodes a list field. A wrong type is returned as an Issue.
func (f fields) list(names ...string) ([]string, *Issue) {
	name, raw, ok := f.lookup(names...)
	if !ok {
		return nil, nil
	}
	var s Strings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, &Issue{Field: name, Reason: err.Error()}
	}
	return s, nil
}

// entries decodes a field holding one value or an array of values. Unlike
// list, a single string is kept whole.
func (f fields) entries(names ...string) ([]string, *Issue) {
	name, raw, ok := f.lookup(names...)
	if !ok {
		return nil, nil
	}
	if shape(raw) == '[' {
		return f.list(name)
	}
	v, issue := f.text(name)
	if issue != nil || v == "" {
		return nil, issue
	}
	return []string{v}, nil
}

// member is one key/value pair of an object, in document order
type member struct {
	Key   string
	Value json.RawMessage
}

// orderedMembers decodes an object keeping key order, which map decoding loses
func orderedMembers(raw json.RawMessage) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object")
	}

	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key")
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("failed to decode %q: %w", key, err)
		}
		members = append(members, member{Key: key, Value: value})
	}
	return members, nil
}

// streamItems returns the items of an extraction stream document, if raw is one
func streamItems(f fields) ([]Item, bool, error) {
	_, raw, ok := f.lookup("items", "deduplicated_items")
	if !ok {
		return nil, false, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, true, fmt.Errorf("items: %w", err)
	}
	out := make([]Item, 0, len(items))
	for _, rawItem := range items {
		var it Item
		// malformed items are ignored; a stream is advisory text
		if err := json.Unmarshal(rawItem, &it); err != nil {
			continue
		}
		out = append(out, it)
	}
	return out, true, nil
}

func kindOf(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "nothing"
	}
	switch data[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	}
	if _, err := strconv.ParseFloat(string(data), 64); err == nil {
		return "number"
	}
	return "invalid value"
}

// shape returns the first significant byte of a document, or 0 if it is empty or null
func shape(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}
	return raw[0]
}

var (
	departmentText = regexp.MustCompile(`\bKhoa\b|Bộ môn`)
	courseCodeText = regexp.MustCompile(`[A-Z]{2,}\d{3,}`)
	digitsText     = regexp.MustCompile(`\d+`)
	titleText      = regexp.MustCompile(`\b(?:GS|PGS|TS|ThS|CN)\b`)
)

// mentionsDepartment reports whether a stream item introduces a department
func mentionsDepartment(it Item) bool {
	return it.Is("department") || departmentText.MatchString(string(it.Text))
}

func containsFold(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
