package extractor

// Kind is the entity type of a candidate
type Kind string

const (
	KindPerson  Kind = "person"
	KindEmail   Kind = "email"
	KindPhone   Kind = "phone"
	KindAddress Kind = "address"
)

// Signal is a piece of evidence corroborating a person candidate
type Signal string

const (
	SignalTitle Signal = "title"
	SignalEmail Signal = "email"
	SignalPhone Signal = "phone"
)

// Candidate is one entity found in free text. Start and End are byte
// offsets into the text the extractor was given.
type Candidate struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
	Raw   string `json:"raw"`
	Start int    `json:"start"`
	End   int    `json:"end"`

	// Person candidates only
	Title   string   `json:"title,omitempty"`
	Emails  []string `json:"emails,omitempty"`
	Phones  []string `json:"phones,omitempty"`
	Signals []Signal `json:"signals,omitempty"`
}

// Corroborated reports whether a person candidate carries at least one signal
func (c Candidate) Corroborated() bool {
	return len(c.Signals) > 0
}

// HasSignal reports whether the candidate carries the given signal
func (c Candidate) HasSignal(s Signal) bool {
	for _, have := range c.Signals {
		if have == s {
			return true
		}
	}
	return false
}

func (c *Candidate) addSignal(s Signal) {
	if !c.HasSignal(s) {
		c.Signals = append(c.Signals, s)
	}
}
