package keys

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/jwtkeeper/internal/common"
)

// Source reads PEM key material by name.
type Source interface {
	Read(ctx context.Context, name string) ([]byte, error)
}

// Load reads both keys from src and validates them. Any failure wraps
// common.ErrConfiguration so startup can stop on it.
func Load(ctx context.Context, src Source, privateName, publicName string) (*KeyPair, error) {
	privatePEM, err := src.Read(ctx, privateName)
	if err != nil {
		return nil, fmt.Errorf("%w: read private key %q: %w", common.ErrConfiguration, privateName, err)
	}
	publicPEM, err := src.Read(ctx, publicName)
	if err != nil {
		return nil, fmt.Errorf("%w: read public key %q: %w", common.ErrConfiguration, publicName, err)
	}
	return ParsePEM(privatePEM, publicPEM)
}

// FileSource reads keys from the local filesystem; names are paths.
type FileSource struct{}

func (FileSource) Read(_ context.Context, name string) ([]byte, error) {
	return os.ReadFile(name)
}

// ObjectGetter is the subset of *s3.Client used by S3Source.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads keys from an S3 compatible bucket; names are object keys.
type S3Source struct {
	client ObjectGetter
	bucket string
}

func NewS3Source(client ObjectGetter, bucket string) *S3Source {
	return &S3Source{client: client, bucket: bucket}
}

func (s *S3Source) Read(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, name, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// S3Options configures the S3 client (MinIO works with path-style
// addressing and static credentials).
type S3Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3Client builds an S3 client with static credentials.
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return client, nil
}
