package roster

import stringpool "github.com/ajitpratap0/cohortdata/pkg/strings"

const (
	// FieldCount is the fixed number of pipe-separated fields per line
	FieldCount = 5
	// Delimiter separates fields within a line
	Delimiter = "|"

	// CohortGhost marks a ghost in the cohort field
	CohortGhost = "G"
	// CohortInstructor marks an instructor in the cohort field
	CohortInstructor = "I"
	// AllCohorts selects every regular record in StudentsByCohort
	AllCohorts = "All"
)

// House names with a roster of their own, in roster order.
const (
	HouseDumbledoresArmy = "Dumbledore's Army"
	HouseGryffindor      = "Gryffindor"
	HouseHufflepuff      = "Hufflepuff"
	HouseRavenclaw       = "Ravenclaw"
	HouseSlytherin       = "Slytherin"
)

// Non-house roster names.
const (
	RosterGhosts      = "Ghosts"
	RosterInstructors = "Instructors"
)

// RosterNames lists the seven rosters returned by AllNamesByHouse in order.
var RosterNames = []string{
	HouseDumbledoresArmy,
	HouseGryffindor,
	HouseHufflepuff,
	HouseRavenclaw,
	HouseSlytherin,
	RosterGhosts,
	RosterInstructors,
}

// Status classifies a record by its cohort sentinel.
type Status int

const (
	StatusRegular Status = iota
	StatusGhost
	StatusInstructor
)

func (s Status) String() string {
	switch s {
	case StatusGhost:
		return "ghost"
	case StatusInstructor:
		return "instructor"
	default:
		return "regular"
	}
}

// Record is one line of a roster file.
type Record struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	House     string `json:"house"`
	Adviser   string `json:"adviser"`
	// Cohort is kept verbatim, sentinels included
	Cohort string `json:"cohort"`
}

// FullName returns "FirstName LastName".
func (r Record) FullName() string {
	return stringpool.Concat(r.FirstName, " ", r.LastName)
}

// Status derives the record's status from the cohort field.
func (r Record) Status() Status {
	switch r.Cohort {
	case CohortGhost:
		return StatusGhost
	case CohortInstructor:
		return StatusInstructor
	default:
		return StatusRegular
	}
}

// Entry is the four-field projection returned by AllData.
type Entry struct {
	Name    string `json:"name"`
	House   string `json:"house"`
	Adviser string `json:"adviser"`
	Cohort  string `json:"cohort"`
}

// Entry projects the record onto (name, house, adviser, cohort).
func (r Record) Entry() Entry {
	return Entry{
		Name:    r.FullName(),
		House:   r.House,
		Adviser: r.Adviser,
		Cohort:  r.Cohort,
	}
}

// Roster is a named, alphabetically sorted list of full names.
type Roster struct {
	Name  string   `json:"name"`
	Names []string `json:"names"`
}
