package source

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/ajitpratap0/cohortdata/pkg/errors"
)

func init() {
	_ = Register(Info{
		Scheme:      SchemeGCS,
		Description: "Google Cloud Storage object (application default credentials or a key file)",
		Example:     "gs://bucket/path/cohort_data.txt",
	}, NewGCSOpener)
}

// objectReaderFunc opens a single GCS object.
type objectReaderFunc func(ctx context.Context, bucket, object string) (io.ReadCloser, error)

// GCSOpener reads roster files from Google Cloud Storage.
type GCSOpener struct {
	credentialsFile string
	newReader       objectReaderFunc
}

// NewGCSOpener creates a GCS opener. A client is created per Open and closed
// together with the returned reader.
func NewGCSOpener(cfg Config) (Opener, error) {
	o := &GCSOpener{credentialsFile: cfg.CredentialsFile}
	o.newReader = o.openWithClient
	return o, nil
}

func (o *GCSOpener) openWithClient(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	var opts []option.ClientOption
	if o.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(o.credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create GCS client")
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &clientReader{ReadCloser: r, client: client}, nil
}

// Open reads the object at loc.
func (o *GCSOpener) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	rc, err := o.newReader(ctx, loc.Bucket, loc.Key)
	if err == nil {
		return rc, nil
	}

	switch {
	case errors.HasType(err, errors.ErrorTypeConfig):
		return nil, err
	case errors.Is(err, storage.ErrObjectNotExist), errors.Is(err, storage.ErrBucketNotExist):
		return nil, errors.Wrap(err, errors.ErrorTypeNotFound, "gcs object not found").
			WithDetail("bucket", loc.Bucket).
			WithDetail("object", loc.Key)
	case ctx.Err() != nil:
		return nil, errors.Wrap(err, errors.ErrorTypeTimeout, "gcs request cancelled").
			WithDetail("bucket", loc.Bucket).
			WithDetail("object", loc.Key)
	default:
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "gcs read failed").
			WithDetail("bucket", loc.Bucket).
			WithDetail("object", loc.Key)
	}
}

// clientReader closes the storage client along with the object reader.
type clientReader struct {
	io.ReadCloser
	client *storage.Client
}

func (c *clientReader) Close() error {
	err := c.ReadCloser.Close()
	if cerr := c.client.Close(); err == nil {
		err = cerr
	}
	return err
}
