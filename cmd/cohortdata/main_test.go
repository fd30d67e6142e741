package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/cohortdata/pkg/json"
	"github.com/ajitpratap0/cohortdata/pkg/testutil"
)

type cliResult struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, args ...string) cliResult {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return cliResult{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestQueries(t *testing.T) {
	fixture := testutil.RosterFixture(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"houses", []string{"houses"}, "Dumbledore's Army\nGryffindor\nHufflepuff\nRavenclaw\nSlytherin\n"},
		{"cohort of", []string{"cohort-of", "Harry Potter"}, "Fall 2015\n"},
		{"cohort of missing", []string{"cohort-of", "Balloonicorn"}, "None\n"},
		{"dupes", []string{"dupes"}, "Creevey\nPatil\nWeasley\n"},
		{"housemates", []string{"housemates", "Hermione Granger"}, "Angelina Johnson\nFred Weasley\nHarry Potter\nSeamus Finnigan\n"},
		{"housemates unknown", []string{"housemates", "Nobody Here"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, append([]string{"-f", fixture}, tt.args...)...)
			require.Equal(t, 0, res.code, res.stderr)
			assert.Equal(t, tt.want, res.stdout)
		})
	}
}

func TestStudentsJSON(t *testing.T) {
	res := runCLI(t, "--file", testutil.RosterFixture(t), "-o", "json", "students", "--cohort", "Fall 2015")
	require.Equal(t, 0, res.code, res.stderr)

	var names []string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &names))
	require.NotEmpty(t, names)
	assert.Equal(t, "Angelina Johnson", names[0])
	assert.Equal(t, "Theodore Nott", names[len(names)-1])
}

func TestStudentsEmptyCohort(t *testing.T) {
	res := runCLI(t, "-f", testutil.RosterFixture(t), "students", "--cohort", "")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Draco Malfoy\nGinny Weasley\nLavender Brown\n", res.stdout)
}

func TestRostersAndData(t *testing.T) {
	fixture := testutil.RosterFixture(t)

	res := runCLI(t, "-f", fixture, "rosters")
	require.Equal(t, 0, res.code, res.stderr)
	assert.True(t, strings.HasPrefix(res.stdout, "Dumbledore's Army ("))
	assert.Contains(t, res.stdout, "\nInstructors (")

	res = runCLI(t, "-f", fixture, "-o", "csv", "data")
	require.Equal(t, 0, res.code, res.stderr)
	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	assert.Equal(t, "name,house,adviser,cohort", lines[0])
	assert.Equal(t, "Harry Potter,Gryffindor,McGonagall,Fall 2015", lines[1])
	assert.Len(t, lines, 43)
}

func TestSelfTest(t *testing.T) {
	fixture := testutil.RosterFixture(t)

	t.Run("default examples pass", func(t *testing.T) {
		res := runCLI(t, "-f", fixture, "selftest")
		require.Equal(t, 0, res.code, res.stderr)
		assert.Equal(t, "ALL TESTS PASSED\n", res.stdout)
	})

	t.Run("failing examples", func(t *testing.T) {
		examples := testutil.WriteFile(t, t.TempDir(), "examples.yaml", `
examples:
  - name: wrong cohort
    query: cohort-of
    person: Harry Potter
    value: Winter 2016
  - name: houses
    query: houses
    len: 5
`)
		res := runCLI(t, "-f", fixture, "selftest", "--examples", examples)
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stdout, "Failed example:")
		assert.Contains(t, res.stdout, "wrong cohort")
		assert.Contains(t, res.stdout, "1 of 2 examples failed")
		assert.Empty(t, res.stderr)
	})

	t.Run("invalid examples file", func(t *testing.T) {
		examples := testutil.WriteFile(t, t.TempDir(), "examples.yaml", "examples:\n  - query: nonsense\n")
		res := runCLI(t, "-f", fixture, "selftest", "--examples", examples)
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "Error:")
	})
}

func TestErrors(t *testing.T) {
	fixture := testutil.RosterFixture(t)

	t.Run("missing roster", func(t *testing.T) {
		res := runCLI(t, "-f", filepath.Join(t.TempDir(), "absent.txt"), "houses")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "not_found")
		assert.Empty(t, res.stdout)
	})

	t.Run("malformed roster", func(t *testing.T) {
		path := testutil.WriteFile(t, t.TempDir(), "bad.txt", "Harry|Potter|Gryffindor|McGonagall\n")
		res := runCLI(t, "-f", path, "houses")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "expected 5 fields, got 4")
	})

	t.Run("invalid format", func(t *testing.T) {
		res := runCLI(t, "-f", fixture, "-o", "xml", "houses")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "invalid config")
	})

	t.Run("missing argument", func(t *testing.T) {
		res := runCLI(t, "-f", fixture, "cohort-of")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "accepts 1 arg")
	})
}

func TestConfigFileAndEnv(t *testing.T) {
	fixture := testutil.RosterFixture(t)
	dir := t.TempDir()

	cfgPath := testutil.WriteFile(t, dir, "cohortdata.yaml", "source:\n  path: "+fixture+"\noutput:\n  format: csv\n")

	res := runCLI(t, "--config", cfgPath, "dupes")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "last_name\nCreevey\nPatil\nWeasley\n", res.stdout)

	// flags beat the file
	res = runCLI(t, "--config", cfgPath, "-o", "text", "dupes")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Creevey\nPatil\nWeasley\n", res.stdout)

	t.Setenv("COHORTDATA_OUTPUT_FORMAT", "jsonl")
	res = runCLI(t, "--config", cfgPath, "dupes")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "\"Creevey\"\n\"Patil\"\n\"Weasley\"\n", res.stdout)
}

func TestMetricsFile(t *testing.T) {
	metricsPath := filepath.Join(t.TempDir(), "metrics.prom")

	res := runCLI(t, "-f", testutil.RosterFixture(t), "--metrics-file", metricsPath, "houses")
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "cohortdata_records_loaded_total")
	assert.Contains(t, text, `query="houses"`)
	assert.Contains(t, text, `status="success"`)
}

func TestTrace(t *testing.T) {
	res := runCLI(t, "-f", testutil.RosterFixture(t), "--trace", "cohort-of", "Harry Potter")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Fall 2015\n", res.stdout)
	assert.Contains(t, res.stderr, "roster.load")
	assert.Contains(t, res.stderr, "roster.query.cohort-of")
}

func TestSourcesAndVersion(t *testing.T) {
	res := runCLI(t, "sources")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "SCHEME")
	for _, scheme := range []string{"file", "gs", "s3"} {
		assert.Contains(t, res.stdout, scheme)
	}

	// no config or roster needed, even with a bad config path
	res = runCLI(t, "--config", "/does/not/exist.yaml", "version")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "cohortdata v"+version)
}
