package wordlist

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chulbong-kr/wordscan/pkg/types"
)

const (
	// EnvWordlist names the environment variable holding the default word list location.
	EnvWordlist = "WORDSCAN_WORDLIST"

	// DefaultLocation is used when EnvWordlist is unset.
	DefaultLocation = "badwords.txt"

	// EnvAzureConnectionString holds the Azure Storage connection string for azblob:// locations.
	EnvAzureConnectionString = "AZURE_STORAGE_CONNECTION_STRING"
)

// Location returns the configured word list location.
func Location() string {
	if loc := os.Getenv(EnvWordlist); loc != "" {
		return loc
	}
	return DefaultLocation
}

// SourceConfig holds optional credentials for remote word lists. Empty
// fields fall back to the SDKs' default credential chains.
type SourceConfig struct {
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string // S3-compatible endpoint override

	AzureConnectionString string
}

// Open opens a word list by location:
//
//	s3://bucket/key            Amazon S3 (or an S3-compatible endpoint)
//	azblob://container/blob    Azure Blob Storage
//	anything else              local file path
func Open(ctx context.Context, location string, cfg SourceConfig) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(location, "s3://"):
		return openS3(ctx, strings.TrimPrefix(location, "s3://"), cfg)
	case strings.HasPrefix(location, "azblob://"):
		return openAzureBlob(ctx, strings.TrimPrefix(location, "azblob://"), cfg)
	default:
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("opening word list %s: %w", location, err)
		}
		return f, nil
	}
}

// Fetch opens and parses the word list at location.
func (l *Loader) Fetch(ctx context.Context, location string, cfg SourceConfig) ([]*types.Word, error) {
	rc, err := Open(ctx, location, cfg)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading word list %s: %w", location, err)
	}
	_, words, err := l.Load(location, data)
	if err != nil {
		return nil, err
	}
	return Dedupe(words), nil
}

// splitObjectPath splits "bucket/some/key" into bucket and key.
func splitObjectPath(p string) (string, string, error) {
	bucket, key, ok := strings.Cut(p, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid object path %q: want <bucket>/<key>", p)
	}
	return bucket, key, nil
}

func openS3(ctx context.Context, p string, cfg SourceConfig) (io.ReadCloser, error) {
	bucket, key, err := splitObjectPath(p)
	if err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, config.WithRegion(cfg.AWSRegion))
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpoint)
			o.UsePathStyle = true
		}
	})
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}

func openAzureBlob(ctx context.Context, p string, cfg SourceConfig) (io.ReadCloser, error) {
	container, blob, err := splitObjectPath(p)
	if err != nil {
		return nil, err
	}

	connStr := cfg.AzureConnectionString
	if connStr == "" {
		connStr = os.Getenv(EnvAzureConnectionString)
	}
	if connStr == "" {
		return nil, fmt.Errorf("azblob://%s: %s is not set", p, EnvAzureConnectionString)
	}

	client, err := azblob.NewClientFromConnectionString(connStr, nil)
	if err != nil {
		return nil, fmt.Errorf("creating Azure Blob client: %w", err)
	}
	resp, err := client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		return nil, fmt.Errorf("downloading azblob://%s/%s: %w", container, blob, err)
	}
	return resp.Body, nil
}
