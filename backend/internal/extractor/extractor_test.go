package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_TitledPersonWithEmail(t *testing.T) {
	e := New()

	people := e.Persons("Contact Dr. Jane Doe at jane@uni.edu")
	require.Len(t, people, 1)

	p := people[0]
	assert.Equal(t, "Jane Doe", p.Value)
	assert.Equal(t, "Dr.", p.Title)
	assert.Equal(t, []string{"jane@uni.edu"}, p.Emails)
	assert.True(t, p.HasSignal(SignalTitle))
	assert.True(t, p.HasSignal(SignalEmail))
	assert.Equal(t, "Jane Doe", "Contact Dr. Jane Doe at jane@uni.edu"[p.Start:p.End])
}

func TestExtract_OrganizationIsNotAPerson(t *testing.T) {
	e := New()

	assert.Empty(t, e.Persons("The Smith Building houses three labs"))
	assert.Empty(t, e.Persons("Visit the Computer Science Department office, email cs@uni.edu"))
}

func TestExtract_PlacesAndOfficesAreNotPeople(t *testing.T) {
	e := New()

	for _, text := range []string{
		"Campus A: 227 Nguyen Van Cu, District 5, Ho Chi Minh City, email: info@uit.edu.vn",
		"Campus A: 227 Nguyen Van Cu, District 5, Ho Chi Minh, email: info@uit.edu.vn",
		"Student Affairs: (028) 3725 2002",
		"Admissions Hotline: 0283 725 2002",
		"Human Resources, email: hr@uit.edu.vn",
	} {
		assert.Empty(t, e.Persons(text), text)
	}

	// a titled name after an address list is still a person
	people := e.Persons("Room 5, Dr. Jane Doe, email: jane@uni.edu")
	require.Len(t, people, 1)
	assert.Equal(t, "Jane Doe", people[0].Value)
}

func TestExtract_UncorroboratedNameIsDropped(t *testing.T) {
	e := New()
	assert.Empty(t, e.Persons("Jane Doe wrote the course notes."))
}

func TestExtract_ChainedContacts(t *testing.T) {
	e := New()

	people := e.Persons("Head of lab: Alan Turing (alan@uni.edu, +84 28 3725 2002)")
	require.Len(t, people, 1)
	assert.Equal(t, "Alan Turing", people[0].Value)
	assert.Equal(t, []string{"alan@uni.edu"}, people[0].Emails)
	assert.Equal(t, []string{"02837252002"}, people[0].Phones)
}

func TestExtract_ListOfPeopleKeepsContactsApart(t *testing.T) {
	e := New()

	people := e.Persons("Jane Doe jane@uni.edu\nJohn Roe john@uni.edu")
	require.Len(t, people, 2)
	assert.Equal(t, "Jane Doe", people[0].Value)
	assert.Equal(t, []string{"jane@uni.edu"}, people[0].Emails)
	assert.Equal(t, "John Roe", people[1].Value)
	assert.Equal(t, []string{"john@uni.edu"}, people[1].Emails)
}

func TestExtract_VietnameseTitles(t *testing.T) {
	e := New()

	people := e.Persons("Trưởng khoa: PGS.TS. Nguyễn Văn An")
	require.Len(t, people, 1)
	assert.Equal(t, "Nguyễn Văn An", people[0].Value)
	assert.Equal(t, "PGS.TS.", people[0].Title)
}

func TestExtract_LowercaseTitleBeforeName(t *testing.T) {
	e := New()

	people := e.Persons("taught by professor Ada Lovelace this term")
	require.Len(t, people, 1)
	assert.Equal(t, "Ada Lovelace", people[0].Value)
	assert.Equal(t, "professor", people[0].Title)
}

func TestExtract_CustomTitles(t *testing.T) {
	text := "Chair Grace Hopper leads the team"
	assert.Empty(t, New().Persons(text))

	people := New(WithTitles("Chair")).Persons(text)
	require.Len(t, people, 1)
	assert.Equal(t, "Grace Hopper", people[0].Value)
}

func collect(e *Extractor, text string) map[Kind][]Candidate {
	byKind := make(map[Kind][]Candidate)
	for c := range e.Extract(text) {
		byKind[c.Kind] = append(byKind[c.Kind], c)
	}
	return byKind
}

func TestExtract_EmailsPhonesAddresses(t *testing.T) {
	e := New()
	text := "Email: Office@UNI.edu; Tel: (028) 3725 2002. Address: Quarter 6, Linh Trung Ward, Thu Duc City\nHotline 0912.345.678"

	got := collect(e, text)

	require.Len(t, got[KindEmail], 1)
	assert.Equal(t, "office@uni.edu", got[KindEmail][0].Value)

	var phones []string
	for _, p := range got[KindPhone] {
		phones = append(phones, p.Value)
	}
	assert.Equal(t, []string{"02837252002", "0912345678"}, phones)

	require.Len(t, got[KindAddress], 1)
	assert.Equal(t, "Quarter 6, Linh Trung Ward, Thu Duc City", got[KindAddress][0].Value)
}

func TestExtract_IgnoresNumbersThatAreNotPhones(t *testing.T) {
	e := New()
	got := collect(e, "CS101 runs 2023-2024 for 120 students")
	assert.Empty(t, got[KindPhone])
}

func TestExtract_BracketedCountryCode(t *testing.T) {
	e := New()

	got := collect(e, "Tel: (+84) 28 3725 2002")
	require.Len(t, got[KindPhone], 1)
	assert.Equal(t, "02837252002", got[KindPhone][0].Value)
	assert.Equal(t, "(+84) 28 3725 2002", got[KindPhone][0].Raw)
}

func TestExtract_IsRestartableAndStoppable(t *testing.T) {
	e := New()
	seq := e.Extract("Contact Dr. Jane Doe at jane@uni.edu or 028 3725 2002")

	var first, second []Candidate
	for c := range seq {
		first = append(first, c)
	}
	for c := range seq {
		second = append(second, c)
	}
	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, KindEmail, first[0].Kind)
	assert.Equal(t, KindPhone, first[1].Kind)
	assert.Equal(t, KindPerson, first[2].Kind)

	count := 0
	for range seq {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestExtract_EmptyText(t *testing.T) {
	e := New()
	for range e.Extract("   ") {
		t.Fatal("expected no candidates")
	}
}
