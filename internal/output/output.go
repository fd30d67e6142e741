// Package output renders query results for the command line.
package output

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ajitpratap0/cohortdata/pkg/config"
	"github.com/ajitpratap0/cohortdata/pkg/errors"
	"github.com/ajitpratap0/cohortdata/pkg/json"
	"github.com/ajitpratap0/cohortdata/pkg/roster"
)

// Missing is printed in text mode when cohort-of finds no match.
const Missing = "None"

const indent = "  "

// Options selects the rendering.
type Options struct {
	// Format is one of the config.Format* values; empty means text
	Format string
	// Pretty indents JSON output
	Pretty bool
}

// Render writes res to w.
func Render(w io.Writer, res *roster.Result, opts Options) error {
	if res == nil {
		return errors.New(errors.ErrorTypeValidation, "nil result")
	}

	var err error
	switch opts.Format {
	case "", config.FormatText:
		err = renderText(w, res)
	case config.FormatJSON:
		ind := ""
		if opts.Pretty {
			ind = indent
		}
		err = json.Encode(w, res.Value(), ind)
	case config.FormatJSONLines:
		err = json.EncodeLines(w, lines(res))
	case config.FormatCSV:
		err = renderCSV(w, res)
	default:
		return errors.New(errors.ErrorTypeValidation, fmt.Sprintf("unsupported output format %q", opts.Format)).
			WithDetail("format", opts.Format)
	}

	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write result").
			WithDetail("format", opts.Format)
	}
	return nil
}

// renderText prints one value per line. Rosters become headed sections and
// entries are written back in the pipe-delimited field order.
func renderText(w io.Writer, res *roster.Result) error {
	bw := bufio.NewWriter(w)

	switch res.Query {
	case roster.QueryCohortOf:
		if res.Found {
			fmt.Fprintln(bw, res.Cohort)
		} else {
			fmt.Fprintln(bw, Missing)
		}
	case roster.QueryRosters:
		for i, r := range res.Rosters {
			if i > 0 {
				fmt.Fprintln(bw)
			}
			fmt.Fprintf(bw, "%s (%d)\n", r.Name, len(r.Names))
			for _, name := range r.Names {
				fmt.Fprintf(bw, "%s%s\n", indent, name)
			}
		}
	case roster.QueryData:
		for _, e := range res.Entries {
			fmt.Fprintf(bw, "%s%s%s%s%s%s%s\n",
				e.Name, roster.Delimiter, e.House, roster.Delimiter, e.Adviser, roster.Delimiter, e.Cohort)
		}
	default:
		for _, name := range res.Names {
			fmt.Fprintln(bw, name)
		}
	}

	return bw.Flush()
}

func renderCSV(w io.Writer, res *roster.Result) error {
	cw := csv.NewWriter(w)

	switch res.Query {
	case roster.QueryCohortOf:
		cohort := ""
		if res.Found {
			cohort = res.Cohort
		}
		_ = cw.Write([]string{"name", "cohort"})
		_ = cw.Write([]string{res.Args["name"], cohort})
	case roster.QueryRosters:
		_ = cw.Write([]string{"roster", "name"})
		for _, r := range res.Rosters {
			for _, name := range r.Names {
				_ = cw.Write([]string{r.Name, name})
			}
		}
	case roster.QueryData:
		_ = cw.Write([]string{"name", "house", "adviser", "cohort"})
		for _, e := range res.Entries {
			_ = cw.Write([]string{e.Name, e.House, e.Adviser, e.Cohort})
		}
	default:
		_ = cw.Write([]string{columnFor(res.Query)})
		for _, name := range res.Names {
			_ = cw.Write([]string{name})
		}
	}

	cw.Flush()
	return cw.Error()
}

func columnFor(q roster.Query) string {
	switch q {
	case roster.QueryHouses:
		return "house"
	case roster.QueryDupes:
		return "last_name"
	default:
		return "name"
	}
}

// lines splits a result into one JSON value per line.
func lines(res *roster.Result) []interface{} {
	var out []interface{}
	switch res.Query {
	case roster.QueryCohortOf:
		out = append(out, res.Value())
	case roster.QueryRosters:
		for _, r := range res.Rosters {
			out = append(out, r)
		}
	case roster.QueryData:
		for _, e := range res.Entries {
			out = append(out, e)
		}
	default:
		for _, name := range res.Names {
			out = append(out, name)
		}
	}
	return out
}
