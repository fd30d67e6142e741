package source

import (
	"context"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/ajitpratap0/cohortdata/pkg/errors"
)

func init() {
	_ = Register(Info{
		Scheme:      SchemeS3,
		Description: "Amazon S3 object (credentials from the default AWS chain)",
		Example:     "s3://bucket/path/cohort_data.txt",
	}, NewS3Opener)
}

// s3API is the subset of the S3 client used to read objects.
type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Opener reads roster files from Amazon S3 or an S3-compatible store.
type S3Opener struct {
	region   string
	endpoint string

	once      sync.Once
	client    s3API
	clientErr error
}

// NewS3Opener creates an S3 opener. The client is built on first Open.
func NewS3Opener(cfg Config) (Opener, error) {
	return &S3Opener{
		region:   cfg.Region,
		endpoint: cfg.Endpoint,
	}, nil
}

func newS3OpenerWithClient(client s3API) *S3Opener {
	o := &S3Opener{client: client}
	o.once.Do(func() {})
	return o
}

func (o *S3Opener) getClient(ctx context.Context) (s3API, error) {
	o.once.Do(func() {
		var opts []func(*awsconfig.LoadOptions) error
		if o.region != "" {
			opts = append(opts, awsconfig.WithRegion(o.region))
		}

		cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			o.clientErr = errors.Wrap(err, errors.ErrorTypeConfig, "failed to load AWS config")
			return
		}

		o.client = s3.NewFromConfig(cfg, func(so *s3.Options) {
			if o.endpoint != "" {
				so.BaseEndpoint = aws.String(o.endpoint)
				so.UsePathStyle = true
			}
		})
	})
	return o.client, o.clientErr
}

// Open fetches the object at loc and returns its body.
func (o *S3Opener) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	client, err := o.getClient(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var noSuchBucket *types.NoSuchBucket
		switch {
		case errors.As(err, &noSuchKey), errors.As(err, &noSuchBucket):
			return nil, errors.Wrap(err, errors.ErrorTypeNotFound, "s3 object not found").
				WithDetail("bucket", loc.Bucket).
				WithDetail("key", loc.Key)
		case ctx.Err() != nil:
			return nil, errors.Wrap(err, errors.ErrorTypeTimeout, "s3 request cancelled").
				WithDetail("bucket", loc.Bucket).
				WithDetail("key", loc.Key)
		default:
			return nil, errors.Wrap(err, errors.ErrorTypeConnection, "s3 GetObject failed").
				WithDetail("bucket", loc.Bucket).
				WithDetail("key", loc.Key)
		}
	}
	return out.Body, nil
}
