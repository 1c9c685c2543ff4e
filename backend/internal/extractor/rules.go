package extractor

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"unigraph/backend/internal/constants"
)

// rule finds candidates of one kind. found holds everything earlier rules
// produced for the same text.
type rule func(text string, found []Candidate) []Candidate

var (
	emailPattern   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}`)
	phonePattern   = regexp.MustCompile(`(?:\(\+\d{1,3}\)[\s.\-]?|\+\d{1,3}[\s.\-]?)?(?:\(\d{1,4}\)[\s.\-]?)?\d{2,}(?:[\s.\-]\d{2,})*`)
	addressPattern = regexp.MustCompile(`(?i)(?:address|địa chỉ)\s*:\s*([^\n;|]+)`)
	addressStop    = regexp.MustCompile(`(?i)\b(?:tel|phone|email|e-mail|fax|website|hotline)\b|điện thoại`)
	wordPattern    = regexp.MustCompile(`\p{L}[\p{L}'\x{2019}\-]*\.?`)

	// what may sit between a name and its email or phone
	connectorGap = regexp.MustCompile(`(?i)^[\s,;:()\[\]<>|/\-\x{2013}\x{2014}]*(?:(?:at|email|e-mail|mail|tel|phone|mobile|điện thoại|đt|contact|or|and)\s*[.:]?[\s,;:()\[\]<>|/\-\x{2013}\x{2014}]*)*$`)
	// a contact that precedes a name must be joined more tightly
	leadingGap = regexp.MustCompile(`^[\s:()\[\]<>|/\-\x{2013}\x{2014}]*$`)
)

var defaultTitles = []string{
	"professor", "prof", "dr", "doctor", "lecturer", "associate", "assistant",
	"adjunct", "emeritus", "senior", "instructor", "researcher", "msc", "phd",
	"pgs", "gs", "ts", "ths", "cn",
}

var honorifics = set("mr", "mrs", "ms", "miss", "mx", "sir", "madam", "thầy", "cô")

var leadingStopWords = set(
	"contact", "contacts", "please", "call", "email", "mail", "meet", "ask",
	"the", "a", "an", "our", "for", "with", "and", "or", "phone", "tel",
	"mobile", "by", "from", "to", "at", "dear", "hello", "hi", "welcome", "thanks",
)

var organizationWords = set(
	"building", "hall", "university", "department", "dept", "lab", "labs",
	"laboratory", "center", "centre", "school", "institute", "college", "room",
	"office", "faculty", "campus", "library", "street", "road", "avenue", "floor",
	"company", "group", "program", "programme", "association", "committee",
	"council", "board", "club", "information", "technology", "science",
	"sciences", "engineering", "services", "trường", "khoa", "phòng", "viện",
	// offices and places
	"affairs", "resources", "admissions", "admission", "hotline", "helpdesk",
	"desk", "division", "unit", "section", "relations", "support", "training",
	"city", "ward", "district", "province", "quarter", "tp", "q", "phường",
	"quận", "tỉnh", "thành", "phố", "đường",
)

func emailRule(text string, _ []Candidate) []Candidate {
	var out []Candidate
	for _, loc := range emailPattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		value := NormalizeEmail(raw)
		if !ValidEmail(value) {
			continue
		}
		out = append(out, Candidate{Kind: KindEmail, Value: value, Raw: raw, Start: loc[0], End: loc[1]})
	}
	return out
}

func phoneRule(countryCode string) rule {
	return func(text string, found []Candidate) []Candidate {
		var out []Candidate
		for _, loc := range phonePattern.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			if start > 0 {
				prev, _ := utf8.DecodeLastRuneInString(text[:start])
				if unicode.IsLetter(prev) || unicode.IsDigit(prev) || prev == '@' || prev == '.' {
					continue
				}
			}
			if overlaps(found, start, end) {
				continue
			}
			raw := text[start:end]
			value, ok := NormalizePhone(raw, countryCode)
			if !ok {
				continue
			}
			out = append(out, Candidate{Kind: KindPhone, Value: value, Raw: raw, Start: start, End: end})
		}
		return out
	}
}

func addressRule(text string, _ []Candidate) []Candidate {
	var out []Candidate
	for _, m := range addressPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		if stop := addressStop.FindStringIndex(text[start:end]); stop != nil {
			end = start + stop[0]
		}
		raw := text[start:end]
		value := NormalizeAddress(raw)
		if value == "" {
			continue
		}
		out = append(out, Candidate{Kind: KindAddress, Value: value, Raw: strings.TrimSpace(raw), Start: start, End: end})
	}
	return out
}

type token struct {
	text       string
	start, end int
}

func (t token) bare() string {
	return strings.ToLower(strings.TrimSuffix(t.text, "."))
}

// personRule finds runs of capitalized words and keeps those corroborated
// by a title or an adjacent email or phone
func personRule(titles map[string]bool) rule {
	isTitle := func(t token) bool { return titles[t.bare()] }

	return func(text string, found []Candidate) []Candidate {
		masked := mask(text, found)
		tokens := tokenize(masked)
		contacts := contactsOf(found)
		claimed := make(map[int]bool)

		var out []Candidate
		index := make(map[string]int)

		for i := 0; i < len(tokens); {
			if !capitalized(tokens[i], isTitle) {
				i++
				continue
			}
			j := i + 1
			for j < len(tokens) &&
				capitalized(tokens[j], isTitle) &&
				adjacent(text[tokens[j-1].end:tokens[j].start]) &&
				!endsSentence(tokens[j-1], isTitle) {
				j++
			}

			var prev *token
			if i > 0 && adjacent(text[tokens[i-1].end:tokens[i].start]) {
				prev = &tokens[i-1]
			}
			run := tokens[i:j]
			i = j

			c, ok := personFromRun(masked, run, prev, isTitle)
			if !ok {
				continue
			}
			if c.Title == "" && inAddressList(masked, c.Start) {
				continue
			}
			attachContacts(&c, text, contacts, claimed)
			if !c.Corroborated() {
				continue
			}

			key := strings.ToLower(c.Value)
			if at, seen := index[key]; seen {
				mergePerson(&out[at], c)
				continue
			}
			index[key] = len(out)
			out = append(out, c)
		}
		return out
	}
}

func personFromRun(text string, run []token, prev *token, isTitle func(token) bool) (Candidate, bool) {
	var titleWords []string

	last := -1
	for k, t := range run {
		if isTitle(t) || honorifics[t.bare()] {
			last = k
		}
	}
	name := run
	if last >= 0 {
		first := last
		for first > 0 && (isTitle(run[first-1]) || honorifics[run[first-1].bare()]) {
			first--
		}
		for _, t := range run[first : last+1] {
			if isTitle(t) {
				titleWords = []string{text[run[first].start:run[last].end]}
				break
			}
		}
		name = run[last+1:]
	} else {
		for len(name) > 0 && leadingStopWords[name[0].bare()] {
			name = name[1:]
		}
	}
	if len(titleWords) == 0 && prev != nil && isTitle(*prev) {
		titleWords = append(titleWords, prev.text)
	}

	if len(name) < constants.MinNameWords || len(name) > constants.MaxNameWords {
		return Candidate{}, false
	}
	words := make([]string, len(name))
	for k, t := range name {
		if organizationWords[t.bare()] {
			return Candidate{}, false
		}
		words[k] = t.text
	}

	end := name[len(name)-1].end
	lastWord := words[len(words)-1]
	if strings.HasSuffix(lastWord, ".") && utf8.RuneCountInString(lastWord) > 2 {
		words[len(words)-1] = strings.TrimSuffix(lastWord, ".")
		end--
	}

	c := Candidate{
		Kind:  KindPerson,
		Value: strings.Join(words, " "),
		Start: name[0].start,
		End:   end,
		Title: strings.Join(titleWords, " "),
	}
	c.Raw = c.Value
	if c.Title != "" {
		c.addSignal(SignalTitle)
	}
	return c, true
}

// inAddressList reports whether start follows a comma closing a clause
// that holds a number, as in "227 Nguyen Van Cu, District 5, Thu Duc".
func inAddressList(text string, start int) bool {
	before := strings.TrimRight(text[:start], " \t")
	if !strings.HasSuffix(before, ",") {
		return false
	}
	clause := strings.TrimSuffix(before, ",")
	if i := strings.LastIndexAny(clause, "\n;:"); i >= 0 {
		clause = clause[i+1:]
	}
	return strings.IndexFunc(clause, unicode.IsDigit) >= 0
}

// attachContacts links emails and phones adjacent to the name. Contacts
// following the name may chain ("Jane Doe (jane@uni.edu, 028 1234 5678)");
// a contact preceding it is taken only if no earlier name claimed it.
func attachContacts(c *Candidate, text string, contacts []Candidate, claimed map[int]bool) {
	cursor := c.End
	for k, contact := range contacts {
		if contact.Start < cursor {
			continue
		}
		gap := text[cursor:contact.Start]
		if len(gap) > constants.MaxSignalGap || !connectorGap.MatchString(gap) {
			break
		}
		attach(c, contact)
		claimed[k] = true
		cursor = contact.End
	}

	for k := len(contacts) - 1; k >= 0; k-- {
		contact := contacts[k]
		if contact.End > c.Start {
			continue
		}
		gap := text[contact.End:c.Start]
		if claimed[k] || len(gap) > constants.MaxSignalGap || !leadingGap.MatchString(gap) {
			break
		}
		attach(c, contact)
		claimed[k] = true
		break
	}
}

func attach(c *Candidate, contact Candidate) {
	switch contact.Kind {
	case KindEmail:
		c.Emails = appendUnique(c.Emails, contact.Value)
		c.addSignal(SignalEmail)
	case KindPhone:
		c.Phones = appendUnique(c.Phones, contact.Value)
		c.addSignal(SignalPhone)
	}
}

func mergePerson(into *Candidate, other Candidate) {
	for _, e := range other.Emails {
		into.Emails = appendUnique(into.Emails, e)
	}
	for _, p := range other.Phones {
		into.Phones = appendUnique(into.Phones, p)
	}
	for _, s := range other.Signals {
		into.addSignal(s)
	}
	if into.Title == "" {
		into.Title = other.Title
	}
}

// capitalized reports whether a token can be part of a name run. Acronyms
// break runs unless they are titles (PGS, TS).
func capitalized(t token, isTitle func(token) bool) bool {
	first, _ := utf8.DecodeRuneInString(t.text)
	if !unicode.IsUpper(first) {
		return false
	}
	if isTitle(t) {
		return true
	}
	word := strings.TrimSuffix(t.text, ".")
	return utf8.RuneCountInString(word) < 3 || strings.ToUpper(word) != word
}

// endsSentence reports whether a token closes a sentence. Titles and
// initials ("D.") keep the run going.
func endsSentence(t token, isTitle func(token) bool) bool {
	if !strings.HasSuffix(t.text, ".") || isTitle(t) || honorifics[t.bare()] {
		return false
	}
	return utf8.RuneCountInString(t.text) > 2
}

// adjacent reports whether two words are separated by spaces on one line
func adjacent(gap string) bool {
	return strings.TrimSpace(gap) == "" && !strings.Contains(gap, "\n")
}

func tokenize(text string) []token {
	locs := wordPattern.FindAllStringIndex(text, -1)
	tokens := make([]token, len(locs))
	for k, loc := range locs {
		tokens[k] = token{text: text[loc[0]:loc[1]], start: loc[0], end: loc[1]}
	}
	return tokens
}

// mask blanks the spans of earlier candidates so their text never reads as a name
func mask(text string, found []Candidate) string {
	if len(found) == 0 {
		return text
	}
	b := []byte(text)
	for _, c := range found {
		for k := c.Start; k < c.End && k < len(b); k++ {
			b[k] = ' '
		}
	}
	return string(b)
}

func contactsOf(found []Candidate) []Candidate {
	var contacts []Candidate
	for _, c := range found {
		if c.Kind == KindEmail || c.Kind == KindPhone {
			contacts = append(contacts, c)
		}
	}
	sort.SliceStable(contacts, func(a, b int) bool { return contacts[a].Start < contacts[b].Start })
	return contacts
}

func overlaps(found []Candidate, start, end int) bool {
	for _, c := range found {
		if start < c.End && c.Start < end {
			return true
		}
	}
	return false
}

func appendUnique(values []string, v string) []string {
	for _, have := range values {
		if have == v {
			return values
		}
	}
	return append(values, v)
}

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
