// Package roster parses pipe-delimited school roster files and answers
// queries over them.
//
// # File Format
//
// Each line holds exactly five fields:
//
//	first_name|last_name|house|adviser|cohort
//
// House and cohort may be empty. The cohort field doubles as a status flag:
// "G" marks a ghost and "I" an instructor. There is no header row and no
// escaping. Trailing whitespace is ignored; any line with a different field
// count (blank lines included) is a data error and stops the parse.
//
// # Basic Usage
//
// Load parses a roster once into an immutable Dataset, whose methods answer
// each query without further I/O:
//
//	ds, err := roster.Load(ctx, "cohort_data.txt")
//	if err != nil {
//	    return err
//	}
//	houses := ds.AllHouses()
//	cohort, ok := ds.GetCohortFor("Harry Potter")
//
// The package-level functions (AllHouses, StudentsByCohort, ...) read the file
// afresh on every call.
//
// # Sources
//
// Load accepts local paths, file:// URIs and any scheme registered with
// package source (s3:// and gs:// by default). Files ending in .gz, .zst,
// .lz4, .sz/.snappy or .s2 are decompressed transparently; WithCompression
// overrides detection.
//
// # Service
//
// Service wraps Load and Execute with structured logging, Prometheus metrics
// and OpenTelemetry spans (roster.load, roster.query.<name>). SelfTest runs
// the documented examples through a Service or directly against a Dataset.
package roster
