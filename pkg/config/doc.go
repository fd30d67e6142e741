// Package config provides configuration management for cohortdata.
//
// # Sources
//
// Settings are layered, later sources winning:
//
//   - built-in defaults (NewDefault)
//   - a YAML or JSON file passed to Load
//   - COHORTDATA_* environment variables
//   - command-line flags bound with FlagBinding
//
// # Environment Variables
//
// Every key has an environment override built from its dotted path:
// source.path becomes COHORTDATA_SOURCE_PATH, output.format becomes
// COHORTDATA_OUTPUT_FORMAT. Inside a config file, ${VAR_NAME} is replaced
// with the variable's value before parsing:
//
//	source:
//	  path: s3://${ROSTER_BUCKET}/cohort_data.txt
//	  region: eu-west-2
//	output:
//	  format: json
//	  pretty: true
//
// # Validation
//
// Load validates the merged configuration. Callers that build a Config by
// hand should call Validate themselves.
package config
