package source

import (
	"context"
	"io"
	"io/fs"
	"os"

	"github.com/ajitpratap0/cohortdata/pkg/errors"
)

func init() {
	_ = Register(Info{
		Scheme:      SchemeFile,
		Description: "Local filesystem path or file:// URI",
		Example:     "cohort_data.txt",
	}, NewLocalOpener)
}

// LocalOpener reads roster files from the local filesystem.
type LocalOpener struct{}

// NewLocalOpener creates a local file opener. It takes no configuration.
func NewLocalOpener(_ Config) (Opener, error) {
	return &LocalOpener{}, nil
}

// Open opens loc.Key as a local path.
func (o *LocalOpener) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeTimeout, "open cancelled").
			WithDetail("path", loc.Key)
	}

	f, err := os.Open(loc.Key) //nolint:gosec // G304: path is supplied by the operator
	if err != nil {
		return nil, classifyOpenError(err, loc.Key)
	}
	return f, nil
}

func classifyOpenError(err error, path string) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errors.Wrap(err, errors.ErrorTypeNotFound, "data file not found").
			WithDetail("path", path)
	case errors.Is(err, fs.ErrPermission):
		return errors.Wrap(err, errors.ErrorTypePermission, "data file not readable").
			WithDetail("path", path)
	default:
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to open data file").
			WithDetail("path", path)
	}
}
