package roster

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/ajitpratap0/cohortdata/pkg/errors"
	stringpool "github.com/ajitpratap0/cohortdata/pkg/strings"
)

const (
	initialLineBuffer = 64 * 1024
	// MaxLineSize is the longest line the parser accepts
	MaxLineSize = 1024 * 1024
)

// Parse reads every record from r. It stops at the first malformed line.
func Parse(r io.Reader) ([]Record, error) {
	return ParseContext(context.Background(), r)
}

// ParseContext is Parse with cancellation checked between lines.
func ParseContext(ctx context.Context, r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBuffer), MaxLineSize)

	intern := stringpool.NewIntern()
	var records []Record
	lineNo := 0

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeTimeout, "parse cancelled").
				WithDetail("line", lineNo)
		}
		lineNo++

		rec, err := parseLine(scanner.Text(), lineNo, intern)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "line exceeds maximum length").
				WithDetail("line", lineNo+1).
				WithDetail("max_bytes", MaxLineSize)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read roster data").
			WithDetail("line", lineNo+1)
	}

	return records, nil
}

// ParseLine parses a single line. lineNo is only used for error details.
func ParseLine(line string, lineNo int) (Record, error) {
	return parseLine(line, lineNo, nil)
}

func parseLine(line string, lineNo int, intern *stringpool.Intern) (Record, error) {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	fields := strings.Split(line, Delimiter)
	if len(fields) != FieldCount {
		return Record{}, errors.New(errors.ErrorTypeData,
			fmt.Sprintf("expected %d fields, got %d", FieldCount, len(fields))).
			WithDetail("line", lineNo).
			WithDetail("fields", len(fields))
	}

	rec := Record{
		FirstName: fields[0],
		LastName:  fields[1],
		House:     fields[2],
		Adviser:   fields[3],
		Cohort:    fields[4],
	}
	if intern != nil {
		rec.House = intern.Get(rec.House)
		rec.Adviser = intern.Get(rec.Adviser)
		rec.Cohort = intern.Get(rec.Cohort)
	}
	return rec, nil
}
