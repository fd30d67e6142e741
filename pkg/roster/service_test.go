package roster

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zapcore"

	"github.com/ajitpratap0/cohortdata/pkg/errors"
	"github.com/ajitpratap0/cohortdata/pkg/metrics"
	"github.com/ajitpratap0/cohortdata/pkg/testutil"
)

type serviceHarness struct {
	svc      *Service
	spans    *tracetest.SpanRecorder
	metrics  *metrics.Collector
	observed interface{ Len() int }
}

func newServiceHarness(t *testing.T, uri string) *serviceHarness {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	log, logs := testutil.ObservedLogger(zapcore.DebugLevel)
	collector := metrics.NewCollector("test")

	return &serviceHarness{
		svc: NewService(uri,
			WithLogger(log),
			WithMetrics(collector),
			WithTracer(tp.Tracer("test"))),
		spans:    sr,
		metrics:  collector,
		observed: logs,
	}
}

func TestServiceRun(t *testing.T) {
	h := newServiceHarness(t, fixturePath)
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	res, err := h.svc.Run(ctx, Request{Query: QueryCohortOf, Name: "Harry Potter"})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "Fall 2015", res.Value())
	assert.Equal(t, map[string]string{"name": "Harry Potter"}, res.Args)

	ended := h.spans.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, "roster.load", ended[0].Name())
	assert.Equal(t, "roster.query.cohort-of", ended[1].Name())
	assert.Positive(t, h.observed.Len())

	var buf bytes.Buffer
	require.NoError(t, h.metrics.WriteText(&buf))
	assert.Contains(t, buf.String(), `cohortdata_records_loaded_total{component="test"} 42`)
	assert.Contains(t, buf.String(), `cohortdata_queries_total{component="test",query="cohort-of",status="success"} 1`)
}

func TestServiceQueryNotFound(t *testing.T) {
	h := newServiceHarness(t, fixturePath)
	ctx := context.Background()

	ds, err := h.svc.Load(ctx)
	require.NoError(t, err)

	res, err := h.svc.Query(ctx, ds, Request{Query: QueryCohortOf, Name: "Balloonicorn"})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.Value())

	var buf bytes.Buffer
	require.NoError(t, h.metrics.WriteText(&buf))
	assert.Contains(t, buf.String(), `query="cohort-of",status="not_found"} 1`)
}

func TestServiceQueryError(t *testing.T) {
	h := newServiceHarness(t, fixturePath)
	ctx := context.Background()

	ds, err := h.svc.Load(ctx)
	require.NoError(t, err)

	_, err = h.svc.Query(ctx, ds, Request{Query: "bogus"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeQuery))

	_, err = h.svc.Query(ctx, ds, Request{Query: QueryHousemates})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	ended := h.spans.Ended()
	require.Len(t, ended, 3)
	assert.Equal(t, "roster.query.bogus", ended[1].Name())
	assert.Equal(t, "Error", ended[1].Status().Code.String())
}

func TestServiceLoadErrors(t *testing.T) {
	dir := t.TempDir()

	h := newServiceHarness(t, filepath.Join(dir, "missing.txt"))
	_, err := h.svc.Run(context.Background(), Request{Query: QueryHouses})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))

	bad := testutil.WriteFile(t, dir, "bad.txt", "only|three|fields\n")
	h = newServiceHarness(t, bad)
	_, err = h.svc.Load(context.Background())
	require.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, h.metrics.WriteText(&buf))
	assert.Contains(t, buf.String(), `cohortdata_malformed_lines_total{component="test"} 1`)
}

func TestExecuteAllQueries(t *testing.T) {
	ds := loadFixture(t)

	for _, q := range Queries() {
		t.Run(string(q), func(t *testing.T) {
			res, err := Execute(ds, Request{Query: q, Name: "Hermione Granger"})
			require.NoError(t, err)
			assert.Equal(t, q, res.Query)
			assert.NotNil(t, res.Value())
		})
	}
}

func TestExecuteStudentsDefaultsToAll(t *testing.T) {
	ds := loadFixture(t)

	res, err := Execute(ds, Request{Query: QueryStudents})
	require.NoError(t, err)
	assert.Len(t, res.Names, 34)
	assert.Equal(t, map[string]string{"cohort": AllCohorts}, res.Args)
}

func TestExecuteStudentsEmptyCohort(t *testing.T) {
	ds := loadFixture(t)
	empty := ""

	res, err := Execute(ds, Request{Query: QueryStudents, Cohort: &empty})
	require.NoError(t, err)
	assert.Equal(t, []string{"Draco Malfoy", "Ginny Weasley", "Lavender Brown"}, res.Names)
	assert.Equal(t, ds.StudentsByCohort(""), res.Names)
	assert.Equal(t, map[string]string{"cohort": ""}, res.Args)

	fall := "Fall 2015"
	res, err = Execute(ds, Request{Query: QueryStudents, Cohort: &fall})
	require.NoError(t, err)
	assert.Equal(t, ds.StudentsByCohort(fall), res.Names)
}

func TestParseQuery(t *testing.T) {
	tests := map[string]Query{
		"houses":                QueryHouses,
		"all_houses":            QueryHouses,
		" Students ":            QueryStudents,
		"all_names_by_house":    QueryRosters,
		"all_data":              QueryData,
		"get_cohort_for":        QueryCohortOf,
		"find_duped_last_names": QueryDupes,
		"housemates":            QueryHousemates,
	}
	for in, want := range tests {
		got, err := ParseQuery(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseQuery("unique_houses")
	assert.True(t, errors.IsType(err, errors.ErrorTypeQuery))
}
