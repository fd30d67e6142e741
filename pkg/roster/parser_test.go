package roster

import (
	"context"
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/cohortdata/pkg/errors"
)

func TestParse(t *testing.T) {
	input := "Harry|Potter|Gryffindor|McGonagall|Fall 2015\n" +
		"Draco|Malfoy|Slytherin|Snape|\n" +
		"Severus|Snape|Slytherin||I\n"

	records, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Record{
		FirstName: "Harry",
		LastName:  "Potter",
		House:     "Gryffindor",
		Adviser:   "McGonagall",
		Cohort:    "Fall 2015",
	}, records[0])
	assert.Equal(t, "", records[1].Cohort)
	assert.Equal(t, StatusInstructor, records[2].Status())
	assert.Equal(t, "", records[2].Adviser)
}

func TestParseTrimsTrailingWhitespace(t *testing.T) {
	records, err := Parse(strings.NewReader("Luna|Lovegood|Ravenclaw|Flitwick|Summer 2016  \r\nCho|Chang|Ravenclaw|Flitwick|Fall 2015\r\n"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Summer 2016", records[0].Cohort)
	assert.Equal(t, "Fall 2015", records[1].Cohort)
}

func TestParseKeepsLeadingWhitespace(t *testing.T) {
	records, err := Parse(strings.NewReader(" Luna|Lovegood|Ravenclaw|Flitwick|Summer 2016\n"))
	require.NoError(t, err)
	assert.Equal(t, " Luna", records[0].FirstName)
}

func TestParseEmptyInput(t *testing.T) {
	records, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		fields int
	}{
		{"too few fields", "Harry|Potter|Gryffindor|McGonagall\n", 1, 4},
		{"too many fields", "Harry|Potter|Gryffindor|McGonagall|Fall 2015|extra\n", 1, 6},
		{"blank line", "Harry|Potter|Gryffindor|McGonagall|Fall 2015\n\nCho|Chang|Ravenclaw|Flitwick|Fall 2015\n", 2, 1},
		{"whitespace line", "Harry|Potter|Gryffindor|McGonagall|Fall 2015\n   \n", 2, 1},
		{"third line", "a|b|c|d|e\na|b|c|d|e\na|b\n", 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Nil(t, records)
			assert.True(t, errors.IsType(err, errors.ErrorTypeData))

			var e *errors.Error
			require.True(t, errors.As(err, &e))
			line, ok := e.Detail("line")
			require.True(t, ok)
			assert.Equal(t, tt.line, line)
			fields, ok := e.Detail("fields")
			require.True(t, ok)
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestParseLongLine(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	records, err := Parse(strings.NewReader(long + "|Potter|Gryffindor|McGonagall|Fall 2015\n"))
	require.NoError(t, err)
	assert.Len(t, records[0].FirstName, 200*1024)

	tooLong := strings.Repeat("x", MaxLineSize+1)
	_, err = Parse(strings.NewReader(tooLong + "|a|b|c|d\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeData))
}

func TestParseInternsRepeatedValues(t *testing.T) {
	records, err := Parse(strings.NewReader(
		"Harry|Potter|Gryffindor|McGonagall|Fall 2015\n" +
			"Hermione|Granger|Gryffindor|McGonagall|Fall 2015\n"))
	require.NoError(t, err)

	// Equal strings from separate lines share storage once interned.
	assert.Same(t, unsafe.StringData(records[0].House), unsafe.StringData(records[1].House))
	assert.Same(t, unsafe.StringData(records[0].Cohort), unsafe.StringData(records[1].Cohort))
}

func TestParseContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ParseContext(ctx, strings.NewReader("a|b|c|d|e\n"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTimeout))
}

func TestParseLine(t *testing.T) {
	rec, err := ParseLine("Nearly Headless|Nick|Gryffindor||G", 1)
	require.NoError(t, err)
	assert.Equal(t, "Nearly Headless Nick", rec.FullName())
	assert.Equal(t, StatusGhost, rec.Status())

	_, err = ParseLine("", 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 5 fields, got 1")
}
