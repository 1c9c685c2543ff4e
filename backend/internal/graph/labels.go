package graph

// ============================================================================
// Node Labels and Relationship Types
// ============================================================================

// Label is a node label in the university graph
type Label string

const (
	LabelUniversity       Label = "University"
	LabelDepartment       Label = "Department"
	LabelFaculty          Label = "Faculty"
	LabelCourse           Label = "Course"
	LabelProgram          Label = "Program"
	LabelResearchInterest Label = "ResearchInterest"
	LabelEmail            Label = "Email"
	LabelPhoneNumber      Label = "PhoneNumber"
	LabelAddress          Label = "Address"
)

// RelType is a directed relationship type
type RelType string

const (
	RelHasDepartment     RelType = "HAS_DEPARTMENT"
	RelBelongsTo         RelType = "BELONGS_TO"
	RelOffersProgram     RelType = "OFFERS_PROGRAM"
	RelHasContactEmail   RelType = "HAS_CONTACT_EMAIL"
	RelHasContactPhone   RelType = "HAS_CONTACT_PHONE"
	RelHasLocation       RelType = "HAS_LOCATION"
	RelHasMember         RelType = "HAS_MEMBER"
	RelOffersCourse      RelType = "OFFERS_COURSE"
	RelTeaches           RelType = "TEACHES"
	RelTaughtBy          RelType = "TAUGHT_BY"
	RelInterestedIn      RelType = "INTERESTED_IN"
	RelHasEmail          RelType = "HAS_EMAIL"
	RelHasPhone          RelType = "HAS_PHONE"
	RelIsPrerequisiteFor RelType = "IS_PREREQUISITE_FOR"
)

// nodeSchema describes how a label is keyed and which properties it carries
type nodeSchema struct {
	key        string
	properties map[string]bool
}

var schemas = map[Label]nodeSchema{
	LabelUniversity:       {key: "name", properties: set("description", "website")},
	LabelDepartment:       {key: "name", properties: set("description", "website")},
	LabelFaculty:          {key: "name", properties: set("title")},
	LabelCourse:           {key: "name", properties: set("title", "description", "credits")},
	LabelProgram:          {key: "name", properties: set("description", "level")},
	LabelResearchInterest: {key: "name", properties: set()},
	LabelEmail:            {key: "address", properties: set()},
	LabelPhoneNumber:      {key: "number", properties: set()},
	LabelAddress:          {key: "value", properties: set()},
}

// inverses maps a forward relationship to the type emitted back along the same pair
var inverses = map[RelType]RelType{
	RelHasDepartment: RelBelongsTo,
	RelHasMember:     RelBelongsTo,
	RelOffersCourse:  RelBelongsTo,
	RelTeaches:       RelTaughtBy,
	RelTaughtBy:      RelTeaches,
}

var relTypes = set(
	string(RelHasDepartment), string(RelBelongsTo), string(RelOffersProgram),
	string(RelHasContactEmail), string(RelHasContactPhone), string(RelHasLocation),
	string(RelHasMember), string(RelOffersCourse), string(RelTeaches), string(RelTaughtBy),
	string(RelInterestedIn), string(RelHasEmail), string(RelHasPhone), string(RelIsPrerequisiteFor),
)

// Labels returns every node label in a stable order
func Labels() []Label {
	return []Label{
		LabelUniversity, LabelDepartment, LabelFaculty, LabelCourse, LabelProgram,
		LabelResearchInterest, LabelEmail, LabelPhoneNumber, LabelAddress,
	}
}

// KeyProperty returns the property that identifies nodes of the label
func (l Label) KeyProperty() string {
	return schemas[l].key
}

// Valid reports whether the label is part of the graph model
func (l Label) Valid() bool {
	_, ok := schemas[l]
	return ok
}

// Valid reports whether the relationship type is part of the graph model
func (t RelType) Valid() bool {
	return relTypes[string(t)]
}

// Inverse returns the type emitted in the opposite direction, if the pair is bidirectional
func (t RelType) Inverse() (RelType, bool) {
	inv, ok := inverses[t]
	return inv, ok
}

func set(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
