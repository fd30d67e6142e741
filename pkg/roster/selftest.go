package roster

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/cohortdata/pkg/errors"
)

//go:embed examples.yaml
var defaultExamples []byte

// Example is one documented query and its expected outcome. List checks
// (Expect, Prefix, Suffix, Contains, Len) apply to the result's names; for
// QueryData each entry is compared as "name|house|adviser|cohort".
type Example struct {
	Name   string `yaml:"name"`
	Query  Query  `yaml:"query"`
	Cohort *string `yaml:"cohort,omitempty"`
	Person string `yaml:"person,omitempty"`
	// Roster selects one roster of QueryRosters; negative counts from the end
	Roster *int `yaml:"roster,omitempty"`

	Expect   []string `yaml:"expect,omitempty"`
	Prefix   []string `yaml:"prefix,omitempty"`
	Suffix   []string `yaml:"suffix,omitempty"`
	Contains []string `yaml:"contains,omitempty"`
	Len      *int     `yaml:"len,omitempty"`

	// Value and Missing check QueryCohortOf
	Value   *string `yaml:"value,omitempty"`
	Missing bool    `yaml:"missing,omitempty"`
}

// Request returns the query request the example runs.
func (e Example) Request() Request {
	return Request{Query: e.Query, Cohort: e.Cohort, Name: e.Person}
}

type exampleFile struct {
	Examples []Example `yaml:"examples"`
}

// DefaultExamples returns the built-in examples for the Hogwarts roster.
func DefaultExamples() []Example {
	examples, err := ParseExamples(bytes.NewReader(defaultExamples))
	if err != nil {
		panic(fmt.Sprintf("embedded examples are invalid: %v", err))
	}
	return examples
}

// ParseExamples reads examples from YAML.
func ParseExamples(r io.Reader) ([]Example, error) {
	var f exampleFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse examples")
	}
	for i, e := range f.Examples {
		q, err := ParseQuery(string(e.Query))
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid example").
				WithDetail("index", i).
				WithDetail("name", e.Name)
		}
		f.Examples[i].Query = q
	}
	return f.Examples, nil
}

// Failure describes an example whose result did not match.
type Failure struct {
	Example Example
	Got     []string
	Message string
}

func (f Failure) String() string {
	return fmt.Sprintf("%s (%s): %s\n  got: %s", f.Example.Name, f.Example.Query, f.Message, formatList(f.Got))
}

// Report summarizes a self-test run. Only the first failure is kept in full.
type Report struct {
	Attempted int
	Failed    int
	First     *Failure
}

// Passed reports whether every example passed.
func (r Report) Passed() bool {
	return r.Failed == 0
}

// Runner executes example queries.
type Runner func(ctx context.Context, req Request) (*Result, error)

// DatasetRunner runs examples directly against d.
func DatasetRunner(d *Dataset) Runner {
	return func(_ context.Context, req Request) (*Result, error) {
		return Execute(d, req)
	}
}

// ServiceRunner runs examples through s against d so each query is traced
// and counted.
func ServiceRunner(s *Service, d *Dataset) Runner {
	return func(ctx context.Context, req Request) (*Result, error) {
		return s.Query(ctx, d, req)
	}
}

// SelfTest runs every example and reports the outcome. A query error counts
// as a failure.
func SelfTest(ctx context.Context, run Runner, examples []Example) Report {
	var report Report
	for _, e := range examples {
		if ctx.Err() != nil {
			break
		}
		report.Attempted++

		res, err := run(ctx, e.Request())
		var failure *Failure
		if err != nil {
			failure = &Failure{Example: e, Message: err.Error()}
		} else {
			failure = check(e, res)
		}

		if failure != nil {
			report.Failed++
			if report.First == nil {
				report.First = failure
			}
		}
	}
	return report
}

func check(e Example, res *Result) *Failure {
	if e.Query == QueryCohortOf {
		got := []string{}
		if res.Found {
			got = append(got, res.Cohort)
		}
		switch {
		case e.Missing && res.Found:
			return &Failure{Example: e, Got: got, Message: "expected no cohort"}
		case e.Value != nil && (!res.Found || res.Cohort != *e.Value):
			return &Failure{Example: e, Got: got, Message: fmt.Sprintf("expected cohort %q", *e.Value)}
		}
		return nil
	}

	got, err := values(e, res)
	if err != nil {
		return &Failure{Example: e, Message: err.Error()}
	}

	if e.Len != nil && len(got) != *e.Len {
		return &Failure{Example: e, Got: got, Message: fmt.Sprintf("expected %d items, got %d", *e.Len, len(got))}
	}
	if e.Expect != nil && !slices.Equal(got, e.Expect) {
		return &Failure{Example: e, Got: got, Message: "expected " + formatList(e.Expect)}
	}
	if len(e.Prefix) > 0 && (len(got) < len(e.Prefix) || !slices.Equal(got[:len(e.Prefix)], e.Prefix)) {
		return &Failure{Example: e, Got: got, Message: "expected to start with " + formatList(e.Prefix)}
	}
	if len(e.Suffix) > 0 && (len(got) < len(e.Suffix) || !slices.Equal(got[len(got)-len(e.Suffix):], e.Suffix)) {
		return &Failure{Example: e, Got: got, Message: "expected to end with " + formatList(e.Suffix)}
	}
	for _, want := range e.Contains {
		if !slices.Contains(got, want) {
			return &Failure{Example: e, Got: got, Message: fmt.Sprintf("expected to contain %q", want)}
		}
	}
	return nil
}

func values(e Example, res *Result) ([]string, error) {
	switch res.Query {
	case QueryRosters:
		if e.Roster == nil {
			names := make([]string, len(res.Rosters))
			for i, r := range res.Rosters {
				names[i] = r.Name
			}
			return names, nil
		}
		i := *e.Roster
		if i < 0 {
			i += len(res.Rosters)
		}
		if i < 0 || i >= len(res.Rosters) {
			return nil, fmt.Errorf("roster index %d out of range", *e.Roster)
		}
		return res.Rosters[i].Names, nil
	case QueryData:
		out := make([]string, len(res.Entries))
		for i, en := range res.Entries {
			out[i] = strings.Join([]string{en.Name, en.House, en.Adviser, en.Cohort}, Delimiter)
		}
		return out, nil
	default:
		return res.Names, nil
	}
}

func formatList(list []string) string {
	quoted := make([]string, len(list))
	for i, s := range list {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
