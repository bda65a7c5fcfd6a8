package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"

	"github.com/prn-tf/vidfeed/internal/domain"
	"github.com/prn-tf/vidfeed/internal/storage"
)

// Config contains the settings for the S3 client.
type Config struct {
	Region string

	// Endpoint is set for S3-compatible emulators; empty uses AWS.
	Endpoint     string
	UsePathStyle bool

	// AccessKeyID and SecretAccessKey override the default credential chain.
	AccessKeyID     string
	SecretAccessKey string
}

// LoadAWSConfig resolves the shared AWS configuration. Static keys are used
// when both are set; otherwise the default credential chain applies.
func LoadAWSConfig(ctx context.Context, config Config) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// getObjectAPI is the subset of the S3 client used here.
type getObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ObjectStore reads objects through the S3 API.
type ObjectStore struct {
	client getObjectAPI
	logger zerolog.Logger
}

// NewObjectStore creates an ObjectStore from a loaded AWS config.
func NewObjectStore(cfg aws.Config, config Config, logger zerolog.Logger) *ObjectStore {
	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	return newObjectStore(s3.NewFromConfig(cfg, s3Options...), logger)
}

func newObjectStore(client getObjectAPI, logger zerolog.Logger) *ObjectStore {
	return &ObjectStore{
		client: client,
		logger: logger.With().Str("component", "s3").Logger(),
	}
}

// Get returns the object body, or domain.ErrObjectNotFound.
func (s *ObjectStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, domain.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	s.logger.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Int("size", len(body)).
		Msg("fetched object")

	return body, nil
}

var _ storage.ObjectStore = (*ObjectStore)(nil)
