// Package source opens roster data files from local disk or object storage.
//
// A data file is addressed by URI. Plain paths and file:// URIs read from
// the local filesystem; s3://bucket/key reads from Amazon S3 and
// gs://bucket/object from Google Cloud Storage. Each scheme is served by an
// Opener registered in a Registry, so new backends plug in without touching
// the parser:
//
//	rc, err := source.Open(ctx, "s3://school-data/cohort_data.txt", source.Config{Region: "eu-west-2"})
//	if err != nil {
//	    return err
//	}
//	defer rc.Close()
package source

import (
	"context"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/ajitpratap0/cohortdata/pkg/errors"
)

const (
	// SchemeFile serves local paths and file:// URIs
	SchemeFile = "file"
	// SchemeS3 serves s3://bucket/key URIs
	SchemeS3 = "s3"
	// SchemeGCS serves gs://bucket/object URIs
	SchemeGCS = "gs"
)

// Config carries backend settings shared by all openers. Backends ignore
// fields that do not apply to them.
type Config struct {
	// Region is the AWS region for s3:// sources
	Region string `yaml:"region" json:"region" mapstructure:"region"`
	// Endpoint overrides the S3 endpoint (S3-compatible stores)
	Endpoint string `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"`
	// CredentialsFile is a service account key for gs:// sources
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file" mapstructure:"credentials_file"`
}

// Location is a parsed source URI.
type Location struct {
	URI    string
	Scheme string
	// Bucket is empty for local files
	Bucket string
	// Key is the object key, or the filesystem path for local files
	Key string
}

// Name returns the final path element, used for extension-based detection.
func (l Location) Name() string {
	return filepath.Base(l.Key)
}

// Opener opens the data behind a Location for reading. The caller must close
// the returned reader.
type Opener interface {
	Open(ctx context.Context, loc Location) (io.ReadCloser, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, loc Location) (io.ReadCloser, error)

// Open calls f(ctx, loc).
func (f OpenerFunc) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	return f(ctx, loc)
}

// ParseLocation parses a source URI. Strings without a scheme (and Windows
// drive paths) are treated as local paths.
func ParseLocation(uri string) (Location, error) {
	if strings.TrimSpace(uri) == "" {
		return Location{}, errors.New(errors.ErrorTypeValidation, "source path is required")
	}

	i := strings.Index(uri, "://")
	if i <= 1 {
		return Location{URI: uri, Scheme: SchemeFile, Key: uri}, nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return Location{}, errors.Wrap(err, errors.ErrorTypeValidation, "invalid source URI").
			WithDetail("uri", uri)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme == SchemeFile {
		p := u.Path
		if u.Host != "" && u.Host != "localhost" {
			p = u.Host + p
		}
		if p == "" {
			return Location{}, errors.New(errors.ErrorTypeValidation, "file URI has no path").
				WithDetail("uri", uri)
		}
		return Location{URI: uri, Scheme: SchemeFile, Key: p}, nil
	}

	loc := Location{
		URI:    uri,
		Scheme: scheme,
		Bucket: u.Host,
		Key:    strings.TrimPrefix(u.Path, "/"),
	}
	if loc.Bucket == "" {
		return Location{}, errors.New(errors.ErrorTypeValidation, "source URI has no bucket").
			WithDetail("uri", uri)
	}
	if loc.Key == "" {
		return Location{}, errors.New(errors.ErrorTypeValidation, "source URI has no object key").
			WithDetail("uri", uri)
	}
	return loc, nil
}
