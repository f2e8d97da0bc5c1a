package catalog

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/iecho/tooldir/internal/models"
)

// ObjectGetter is the subset of the S3 client the loader uses.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Loader reads catalog documents from local files or s3://bucket/key URIs.
// It is safe for concurrent use.
type Loader struct {
	// S3 is used for s3:// sources. When nil a client is built from the
	// default AWS credential chain on first use.
	S3 ObjectGetter

	// newS3 builds the default client; nil means defaultS3Client.
	newS3 func(ctx context.Context) (ObjectGetter, error)

	once      sync.Once
	client    ObjectGetter
	clientErr error
}

// s3Client returns S3, or the default client built once and shared.
func (l *Loader) s3Client(ctx context.Context) (ObjectGetter, error) {
	if l.S3 != nil {
		return l.S3, nil
	}
	l.once.Do(func() {
		build := l.newS3
		if build == nil {
			build = defaultS3Client
		}
		l.client, l.clientErr = build(ctx)
	})
	return l.client, l.clientErr
}

func defaultS3Client(ctx context.Context) (ObjectGetter, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// Load reads and parses the catalog at source.
func (l *Loader) Load(ctx context.Context, source string) ([]*models.Tool, error) {
	data, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}
	tools, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return tools, nil
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "s3://") {
		return l.readS3(ctx, source)
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()
	return readLimited(f, source)
}

func (l *Loader) readS3(ctx context.Context, source string) ([]byte, error) {
	bucket, key, err := parseS3URI(source)
	if err != nil {
		return nil, err
	}

	client, err := l.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", source, err)
	}
	defer out.Body.Close()
	return readLimited(out.Body, source)
}

func readLimited(r io.Reader, source string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	if len(data) > MaxDocumentBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", source, MaxDocumentBytes)
	}
	return data, nil
}

// parseS3URI splits s3://bucket/key.
func parseS3URI(source string) (bucket, key string, err error) {
	u, err := url.Parse(source)
	if err != nil {
		return "", "", fmt.Errorf("invalid S3 URI %q: %w", source, err)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 URI %q: want s3://bucket/key", source)
	}
	return bucket, key, nil
}

func validHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
