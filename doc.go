// Package cohortdata answers questions about school cohort rosters stored as
// pipe-delimited text files.
//
// Each line of a roster describes one person:
//
//	Harry|Potter|Gryffindor|McGonagall|Fall 2015
//	Nearly Headless|Nick|||G
//	Severus|Snape|Slytherin||I
//
// The fields are first name, last name, house, adviser and cohort. A cohort of
// "G" marks a ghost and "I" an instructor; everyone else is a student.
//
// # Quick Start
//
// Load a roster once and query it:
//
//	import (
//	    "context"
//	    "github.com/ajitpratap0/cohortdata/pkg/roster"
//	)
//
//	ds, err := roster.Load(context.Background(), "s3://school/cohort_data.txt.gz")
//	if err != nil {
//	    return err
//	}
//
//	houses := ds.AllHouses()                    // sorted, no empty house
//	fall := ds.StudentsByCohort("Fall 2015")    // sorted full names
//	rosters := ds.AllNamesByHouse()             // 5 houses, ghosts, instructors
//	cohort, ok := ds.GetCohortFor("Hannah Abbott")
//	dupes := ds.FindDupedLastNames()
//	mates := ds.GetHousematesFor("Hermione Granger")
//
// Or use the command line:
//
//	cohortdata -f cohort_data.txt students --cohort "Fall 2015"
//	cohortdata -f gs://school/cohort_data.txt -o json rosters
//	cohortdata selftest
//
// # Key Packages
//
//	pkg/roster        - Parsing, the Dataset queries, Service and self-test
//	pkg/source        - file://, s3:// and gs:// openers behind a registry
//	pkg/compression   - gzip, zstd, lz4, snappy and s2 decoding
//	pkg/config        - YAML config with COHORTDATA_* environment overrides
//	pkg/errors        - Structured error handling
//	pkg/logger        - Structured logging
//	pkg/metrics       - Prometheus load and query metrics
//	pkg/observability - OpenTelemetry tracing setup
//	internal/output   - text, JSON, JSON Lines and CSV rendering
//
// # Configuration
//
// Settings come from defaults, an optional config file, COHORTDATA_*
// environment variables and command-line flags, later sources winning:
//
//	source:
//	  path: ${ROSTER_URI}
//	  compression: auto
//	output:
//	  format: text
//	observability:
//	  log_level: warn
//
// Environment variables are supported with ${VAR_NAME} syntax.
package cohortdata
