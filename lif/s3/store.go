// Package s3 opens containers straight from S3-compatible object storage.
//
// Pixel data is fetched lazily through HTTP range reads, so listing a
// container's catalog downloads only the header and metadata blocks. Works
// against AWS S3, MinIO, LocalStack, and other S3-compatible stores.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/lifio/lif/lif"
)

// ErrNotFound reports a key that does not exist in the bucket.
var ErrNotFound = errors.New("s3: object not found")

// API is the subset of the S3 client interface the store uses. It enables
// testing with fake implementations.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Config holds configuration for the store.
type Config struct {
	// Bucket is the S3 bucket name. Required.
	Bucket string

	// Prefix is an optional key prefix for all operations, with a trailing
	// slash added if missing.
	Prefix string
}

// Store reads containers from one bucket.
type Store struct {
	client API
	bucket string
	prefix string
}

// New creates a store around a pre-configured client.
//
// The client must carry credentials, region, and endpoint. Use
// github.com/aws/aws-sdk-go-v2/config to load configuration:
//
//	cfg, err := config.LoadDefaultConfig(ctx)
//	store, err := lifs3.New(s3.NewFromConfig(cfg), lifs3.Config{Bucket: "scans"})
func New(client API, cfg Config) (*Store, error) {
	if client == nil {
		return nil, errors.New("s3: client is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	prefix := cfg.Prefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

// Open opens the container stored under key. The returned file keeps
// issuing range reads against the object with the given context; close it
// before canceling.
func (s *Store) Open(ctx context.Context, key string, opts ...lif.Option) (*lif.File, error) {
	r, size, err := s.ReaderAt(ctx, key)
	if err != nil {
		return nil, err
	}
	return lif.Open(r, size, opts...)
}

// ReaderAt returns a random access view of the object under key and its
// size. The reader is safe for concurrent use at different offsets.
func (s *Store) ReaderAt(ctx context.Context, key string) (io.ReaderAt, int64, error) {
	if key == "" {
		return nil, 0, errors.New("s3: key is required")
	}
	fullKey := s.prefix + key

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("s3: head object: %w", err)
	}

	r := &readerAt{
		client:  s.client,
		bucket:  s.bucket,
		key:     fullKey,
		baseCtx: ctx,
	}
	return r, aws.ToInt64(head.ContentLength), nil
}

// readerAt implements io.ReaderAt using S3 range reads. It is safe for
// concurrent use.
type readerAt struct {
	client  API
	bucket  string
	key     string
	baseCtx context.Context
}

// ReadAt implements io.ReaderAt.
func (r *readerAt) ReadAt(p []byte, off int64) (n int, err error) {
	if off < 0 {
		return 0, errors.New("s3: negative offset")
	}
	if len(p) == 0 {
		return 0, nil
	}

	// S3 Range header format: "bytes=start-end" (inclusive).
	end := off + int64(len(p)) - 1
	rangeHeader := fmt.Sprintf("bytes=%d-%d", off, end)

	out, err := r.client.GetObject(r.baseCtx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(rangeHeader),
	})
	if err != nil {
		// InvalidRange: offset beyond EOF.
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "InvalidRange" {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("s3: range read: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	n, err = io.ReadFull(out.Body, p)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		// Requested range extends beyond EOF.
		err = io.EOF
	}
	return n, err
}

// isNotFound checks if an error indicates the object was not found.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey" || code == "404"
	}
	return false
}
