package constants

// University defaults, used when the general document does not name one
const (
	// DefaultUniversityName is the university every department hangs off
	DefaultUniversityName = "University of Information Technology"
	// DefaultUniversityWebsite is stored on the University node when no website is extracted
	DefaultUniversityWebsite = "https://www.uit.edu.vn"
	// DefaultCountryCode is the dialing code folded into national phone form
	DefaultCountryCode = "84"
)

// Input file defaults
const (
	DefaultFacultyFile = "extracted_faculty.json"
	DefaultCourseFile  = "extracted_course_info.json"
	DefaultContactFile = "extracted_contact_info.json"
	DefaultGeneralFile = "extracted_general.json"
)

// Processor names, in the fixed order a build runs them
const (
	ProcessorFaculty = "faculty"
	ProcessorCourse  = "course"
	ProcessorContact = "contact"
	ProcessorGeneral = "general"
)

// Extraction limits
const (
	// MinNameWords is the shortest capitalized run accepted as a person name
	MinNameWords = 2
	// MaxNameWords is the longest capitalized run accepted as a person name
	MaxNameWords = 5
	// MaxSignalGap is how many characters may separate a name from its title or contact signal
	MaxSignalGap = 16
	// MinPhoneDigits and MaxPhoneDigits bound a normalized phone number
	MinPhoneDigits = 8
	MaxPhoneDigits = 15
)
