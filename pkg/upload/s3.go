package upload

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bichil/orgchart/pkg/buildinfo"
	"github.com/bichil/orgchart/pkg/errors"
)

// DefaultURLExpiry is how long presigned download links stay valid.
const DefaultURLExpiry = 24 * time.Hour

// S3Config configures [S3Uploader].
type S3Config struct {
	Endpoint  string        `toml:"endpoint"`
	Region    string        `toml:"region"`
	AccessKey string        `toml:"access_key"`
	SecretKey string        `toml:"secret_key"`
	Bucket    string        `toml:"bucket"`
	Prefix    string        `toml:"prefix"`
	UseSSL    bool          `toml:"use_ssl"`
	PublicURL string        `toml:"public_url"` // when set, links are PublicURL/key instead of presigned
	URLExpiry time.Duration `toml:"url_expiry"`
}

// Enabled reports whether enough is configured to attempt uploads.
func (c S3Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != "" && strings.TrimSpace(c.Bucket) != ""
}

// S3Uploader uploads to an S3-compatible bucket, creating it on first use.
type S3Uploader struct {
	client    *minio.Client
	bucket    string
	region    string
	prefix    string
	publicURL string
	expiry    time.Duration
	attempts  int
	delay     time.Duration

	initOnce sync.Once
	initErr  error
}

// NewS3Uploader validates cfg and builds the client. No network calls are
// made until the first upload.
func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "upload endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "upload access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "upload bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}
	client.SetAppInfo("orgchart", strings.TrimPrefix(buildinfo.UserAgent(), "orgchart/"))

	return &S3Uploader{
		client:    client,
		bucket:    bucket,
		region:    region,
		prefix:    cfg.Prefix,
		publicURL: strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/"),
		expiry:    expiry,
		attempts:  3,
		delay:     time.Second,
	}, nil
}

func (u *S3Uploader) ensureBucket(ctx context.Context) error {
	u.initOnce.Do(func() {
		exists, err := u.client.BucketExists(ctx, u.bucket)
		if err != nil {
			u.initErr = err
			return
		}
		if exists {
			return
		}
		u.initErr = u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{Region: u.region})
	})
	return u.initErr
}

// Upload stores data under a fresh key and returns its URL. Server-side
// failures are retried with backoff.
func (u *S3Uploader) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New(errors.ErrCodeInvalidInput, "nothing to upload")
	}
	if err := u.ensureBucket(ctx); err != nil {
		return "", errors.Wrap(errors.ErrCodeStorage, err, "ensure bucket %q", u.bucket)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := ObjectKey(u.prefix, name, time.Now())
	err := retry(ctx, u.attempts, u.delay, func() error {
		_, err := u.client.PutObject(ctx, u.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
			ContentType: contentType,
		})
		return err
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStorage, err, "upload %s", key)
	}

	if u.publicURL != "" {
		return u.publicURL + "/" + (&url.URL{Path: key}).EscapedPath(), nil
	}
	link, err := u.client.PresignedGetObject(ctx, u.bucket, key, u.expiry, nil)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStorage, err, "presign %s", key)
	}
	return link.String(), nil
}
