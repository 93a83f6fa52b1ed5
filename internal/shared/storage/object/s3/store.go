package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Tsmith5151/sample-document-processing-with-amazon-bedrock-data-automation/internal/shared/storage/object"
)

// API is the subset of the S3 client the store uses.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Store implements object.Store using Amazon S3.
type Store struct {
	client   API
	kmsKeyID string
}

// New creates an S3-backed object store over an existing client.
func New(client API, kmsKeyID string) *Store {
	return &Store{
		client:   client,
		kmsKeyID: strings.TrimSpace(kmsKeyID),
	}
}

// Open downloads the object at uri for reading.
func (s *Store) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	loc, err := object.ParseURI(uri)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", loc.Bucket, loc.Key, err)
	}
	return out.Body, nil
}

// Put uploads r to uri with server-side encryption.
func (s *Store) Put(ctx context.Context, uri string, contentType string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	loc, err := object.ParseURI(uri)
	if err != nil {
		return 0, err
	}
	if loc.Key == "" {
		return 0, fmt.Errorf("%w: %q has no key", object.ErrInvalidURI, uri)
	}

	counter := &countingReader{r: r}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(loc.Bucket),
		Key:         aws.String(loc.Key),
		Body:        counter,
		ContentType: aws.String(contentType),
	}
	if s.kmsKeyID != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKeyID)
	} else {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return 0, fmt.Errorf("s3 put object bucket=%s key=%s: %w", loc.Bucket, loc.Key, err)
	}
	return counter.n, nil
}

// List returns the URIs of every object under prefixURI, following continuation tokens.
func (s *Store) List(ctx context.Context, prefixURI string) ([]string, error) {
	loc, err := object.ParseURI(prefixURI)
	if err != nil {
		return nil, err
	}

	var (
		out   []string
		token *string
	)
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(loc.Bucket),
			Prefix:            aws.String(loc.Key),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 list objects bucket=%s prefix=%s: %w", loc.Bucket, loc.Key, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			out = append(out, object.Location{Bucket: loc.Bucket, Key: key}.URI())
		}
		if !aws.ToBool(page.IsTruncated) || page.NextContinuationToken == nil {
			return out, nil
		}
		token = page.NextContinuationToken
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var (
	_ object.Store  = (*Store)(nil)
	_ object.Lister = (*Store)(nil)
)
