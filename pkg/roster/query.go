package roster

import (
	"fmt"
	"strings"

	"github.com/ajitpratap0/cohortdata/pkg/errors"
)

// Query names a dataset query.
type Query string

const (
	QueryHouses     Query = "houses"
	QueryStudents   Query = "students"
	QueryRosters    Query = "rosters"
	QueryData       Query = "data"
	QueryCohortOf   Query = "cohort-of"
	QueryDupes      Query = "dupes"
	QueryHousemates Query = "housemates"
)

// Queries lists every query in a stable order.
func Queries() []Query {
	return []Query{QueryHouses, QueryStudents, QueryRosters, QueryData, QueryCohortOf, QueryDupes, QueryHousemates}
}

// ParseQuery resolves a query name. The long snake_case names (all_houses,
// get_cohort_for, ...) are accepted as aliases.
func ParseQuery(name string) (Query, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "houses", "all_houses":
		return QueryHouses, nil
	case "students", "students_by_cohort":
		return QueryStudents, nil
	case "rosters", "all_names_by_house":
		return QueryRosters, nil
	case "data", "all_data":
		return QueryData, nil
	case "cohort-of", "get_cohort_for":
		return QueryCohortOf, nil
	case "dupes", "find_duped_last_names":
		return QueryDupes, nil
	case "housemates", "get_housemates_for":
		return QueryHousemates, nil
	default:
		return "", errors.New(errors.ErrorTypeQuery, fmt.Sprintf("unknown query %q", name)).
			WithDetail("query", name)
	}
}

// Request is a query plus its arguments.
type Request struct {
	Query Query `json:"query" yaml:"query"`
	// Cohort is used by QueryStudents. nil means AllCohorts; a pointer to ""
	// selects records with an empty cohort.
	Cohort *string `json:"cohort,omitempty" yaml:"cohort,omitempty"`
	// Name is used by QueryCohortOf and QueryHousemates
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Args returns the request arguments that apply to its query.
func (r Request) Args() map[string]string {
	switch r.Query {
	case QueryStudents:
		return map[string]string{"cohort": r.cohort()}
	case QueryCohortOf, QueryHousemates:
		return map[string]string{"name": r.Name}
	default:
		return nil
	}
}

func (r Request) cohort() string {
	if r.Cohort == nil {
		return AllCohorts
	}
	return *r.Cohort
}

// Result holds the outcome of one query. Exactly one of Names, Rosters,
// Entries or Cohort is meaningful, depending on Query.
type Result struct {
	Query   Query             `json:"query"`
	Args    map[string]string `json:"args,omitempty"`
	Names   []string          `json:"names,omitempty"`
	Rosters []Roster          `json:"rosters,omitempty"`
	Entries []Entry           `json:"entries,omitempty"`
	Cohort  string            `json:"cohort,omitempty"`
	// Found is false when QueryCohortOf has no value
	Found bool `json:"found"`
}

// Value returns the query's natural result: []string, []Roster, []Entry, or
// for QueryCohortOf the cohort string (nil when missing).
func (r *Result) Value() interface{} {
	switch r.Query {
	case QueryRosters:
		return r.Rosters
	case QueryData:
		return r.Entries
	case QueryCohortOf:
		if !r.Found {
			return nil
		}
		return r.Cohort
	default:
		return r.Names
	}
}

// Execute runs req against d.
func Execute(d *Dataset, req Request) (*Result, error) {
	res := &Result{Query: req.Query, Args: req.Args(), Found: true}

	switch req.Query {
	case QueryHouses:
		res.Names = d.AllHouses()
	case QueryStudents:
		res.Names = d.StudentsByCohort(req.cohort())
	case QueryRosters:
		res.Rosters = d.AllNamesByHouse()
	case QueryData:
		res.Entries = d.AllData()
	case QueryCohortOf:
		if req.Name == "" {
			return nil, errors.New(errors.ErrorTypeValidation, "cohort-of requires a name")
		}
		res.Cohort, res.Found = d.GetCohortFor(req.Name)
	case QueryDupes:
		res.Names = d.FindDupedLastNames()
	case QueryHousemates:
		if req.Name == "" {
			return nil, errors.New(errors.ErrorTypeValidation, "housemates requires a name")
		}
		res.Names = d.GetHousematesFor(req.Name)
	default:
		return nil, errors.New(errors.ErrorTypeQuery, fmt.Sprintf("unknown query %q", req.Query)).
			WithDetail("query", string(req.Query))
	}
	return res, nil
}
