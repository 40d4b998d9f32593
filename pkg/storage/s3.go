// Package storage wraps the S3-compatible object store holding client
// documents. Production runs against Cloudflare R2; anything speaking the S3
// API works.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/taxdesk/taxdesk/internal/config"
	"go.uber.org/zap"
)

// ObjectStore is the subset of object operations the document layer needs.
// The production implementation is Client; tests substitute an in-memory one.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) error
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Copy(ctx context.Context, srcKey, dstKey string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	PresignDownload(ctx context.Context, key, filename string) (string, error)
}

// Client implements ObjectStore against a single bucket.
type Client struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      config.StorageConfig
	log      *zap.Logger
}

func New(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (*Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	} else if log != nil {
		log.Warn("object store using default credential chain")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// R2 and other S3-compatible stores are addressed by explicit
			// endpoint, path-style.
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
	})

	return &Client{
		client:   client,
		uploader: uploader,
		cfg:      cfg,
		log:      log,
	}, nil
}

func (c *Client) requestTimeout() time.Duration {
	if c.cfg.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.cfg.RequestTimeout) * time.Second
}

func (c *Client) presignExpire() time.Duration {
	if c.cfg.PresignExpire <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.cfg.PresignExpire) * time.Minute
}

// Put streams a reader to the bucket.
func (c *Client) Put(ctx context.Context, key, contentType string, body io.Reader, contentLength int64) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout())
	defer cancel()

	var contentLengthPtr *int64
	if contentLength > 0 {
		contentLengthPtr = &contentLength
	}
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.cfg.Bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: contentLengthPtr,
	})
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	return nil
}

// Get returns the object body and content type. Caller must close the body.
func (c *Client) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("get object: %w", err)
	}
	ct := ""
	if out.ContentType != nil {
		ct = *out.ContentType
	}
	return out.Body, ct, nil
}

// encodeKey percent-encodes each path segment of an object key while keeping
// the separators, as CopySource requires.
func encodeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// Copy copies an object within the bucket, server side.
func (c *Client) Copy(ctx context.Context, srcKey, dstKey string) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout())
	defer cancel()

	// CopySource must be URL-encoded; resolved keys can contain spaces.
	_, err := c.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(c.cfg.Bucket),
		CopySource: aws.String(c.cfg.Bucket + "/" + encodeKey(srcKey)),
		Key:        aws.String(dstKey),
	})
	if err != nil {
		return fmt.Errorf("copy object: %w", err)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, c.requestTimeout())
	defer cancel()

	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// Exists probes the key with HeadObject, retrying transient failures with
// capped exponential backoff. A definitive 404 is not an error.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	const maxAttempts = 5
	backoff := 100 * time.Millisecond

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		headCtx, cancel := context.WithTimeout(ctx, c.requestTimeout())
		_, err := c.client.HeadObject(headCtx, &s3.HeadObjectInput{
			Bucket: aws.String(c.cfg.Bucket),
			Key:    aws.String(key),
		})
		cancel()

		if err == nil {
			return true, nil
		}
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
	return false, fmt.Errorf("head object: %w", lastErr)
}

// PresignDownload returns a time-limited GET URL forcing a download filename.
func (c *Client) PresignDownload(ctx context.Context, key, filename string) (string, error) {
	presignClient := s3.NewPresignClient(c.client)
	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(c.cfg.Bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", filename)),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = c.presignExpire()
	})
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// PresignUpload returns a time-limited PUT URL for direct browser upload.
func (c *Client) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	presignClient := s3.NewPresignClient(c.client)
	req, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = c.presignExpire()
	})
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}
	return req.URL, nil
}
