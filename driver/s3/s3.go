// Package s3 implements the diskkit driver contract on Amazon S3 and
// API-compatible services. Keys live under an optional root prefix
// inside a single bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gobeaver/diskkit"
)

// Config holds configuration for the S3 driver.
type Config struct {
	// Bucket is the target bucket. Required.
	Bucket string

	// Prefix is prepended to every key, carving a subtree out of the
	// bucket. Optional.
	Prefix string

	// Region is used for conventional URL composition when BaseURL is
	// not set.
	Region string

	// BaseURL overrides the conventional virtual-hosted URL, e.g. a CDN
	// fronting the bucket.
	BaseURL string

	// Presigner enables SignedURL. Optional; typically
	// s3.NewPresignClient over the same client.
	Presigner Presigner
}

// Driver stores objects in an S3 bucket.
type Driver struct {
	client    Client
	uploader  *manager.Uploader
	presigner Presigner
	bucket    string
	prefix    string
	region    string
	baseURL   string
}

// New creates an S3 driver over an existing client.
func New(client Client, cfg Config) (*Driver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}
	return &Driver{
		client:    client,
		uploader:  manager.NewUploader(client),
		presigner: cfg.Presigner,
		bucket:    cfg.Bucket,
		prefix:    strings.Trim(cfg.Prefix, "/"),
		region:    cfg.Region,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

// key maps a caller path onto the full bucket key. Keys are literal
// bytes; no cleaning beyond the contract's normalization.
func (d *Driver) key(path string) string {
	k := diskkit.NormalizePath(path)
	if d.prefix == "" {
		return k
	}
	return d.prefix + "/" + k
}

// copySource builds the URL-encoded "bucket/key" reference CopyObject
// requires; keys with spaces or reserved characters sign wrong when
// passed raw. Separators stay literal, so each segment is escaped on
// its own.
func (d *Driver) copySource(src string) string {
	segments := strings.Split(d.key(src), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return d.bucket + "/" + strings.Join(segments, "/")
}

// strip removes the root prefix from a listed bucket key.
func (d *Driver) strip(key string) string {
	if d.prefix == "" {
		return key
	}
	return strings.TrimPrefix(strings.TrimPrefix(key, d.prefix), "/")
}

// Put implements diskkit.Driver. Uploads stream through the transfer
// manager, which switches to multipart above its part-size threshold.
func (d *Driver) Put(ctx context.Context, path string, content io.Reader, opts ...diskkit.PutOption) error {
	if err := diskkit.ValidatePath(path); err != nil {
		return diskkit.NewPathError("put", path, err)
	}
	o := diskkit.ApplyPutOptions(opts...)

	input := &awss3.PutObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(path)),
		Body:   content,
	}
	if o.ContentType != "" {
		input.ContentType = aws.String(o.ContentType)
	}
	if o.CacheControl != "" {
		input.CacheControl = aws.String(o.CacheControl)
	}
	if len(o.Metadata) > 0 {
		input.Metadata = o.Metadata
	}
	if o.Visibility == diskkit.Public {
		input.ACL = types.ObjectCannedACLPublicRead
	}

	if _, err := d.uploader.Upload(ctx, input); err != nil {
		return diskkit.WrapErr("put", path, diskkit.ErrWrite, err)
	}
	return nil
}

// Get implements diskkit.Driver.
func (d *Driver) Get(ctx context.Context, path string) ([]byte, error) {
	body, err := d.GetStream(ctx, path)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, diskkit.WrapErr("get", path, diskkit.ErrUnavailable, err)
	}
	return data, nil
}

// GetStream implements diskkit.Driver. The response body streams
// directly from the service.
func (d *Driver) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := d.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(path)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, diskkit.NewPathError("get", path, diskkit.ErrNotFound)
		}
		return nil, diskkit.WrapErr("get", path, diskkit.ErrUnavailable, err)
	}
	return resp.Body, nil
}

// Stat implements diskkit.Driver.
func (d *Driver) Stat(ctx context.Context, path string) (diskkit.StatResult, error) {
	head, err := d.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(path)),
	})
	if err != nil {
		if isNotFound(err) {
			return diskkit.StatResult{}, diskkit.NewPathError("stat", path, diskkit.ErrNotFound)
		}
		return diskkit.StatResult{}, diskkit.WrapErr("stat", path, diskkit.ErrUnavailable, err)
	}

	res := diskkit.StatResult{}
	if head.ContentLength != nil {
		res.Size = *head.ContentLength
	}
	if head.LastModified != nil {
		res.Modified = *head.LastModified
	}
	return res, nil
}

// Exists implements diskkit.Driver via a HEAD round trip.
func (d *Driver) Exists(ctx context.Context, path string) (diskkit.ExistsResult, error) {
	_, err := d.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(path)),
	})
	if err != nil {
		if isNotFound(err) {
			return diskkit.ExistsResult{Exists: false}, nil
		}
		return diskkit.ExistsResult{}, diskkit.WrapErr("exists", path, diskkit.ErrUnavailable, err)
	}
	return diskkit.ExistsResult{Exists: true}, nil
}

// Delete implements diskkit.Driver. S3's DeleteObject is silent about
// prior existence, so a HEAD establishes it first.
func (d *Driver) Delete(ctx context.Context, path string) (diskkit.DeleteResult, error) {
	existed, err := d.Exists(ctx, path)
	if err != nil {
		return diskkit.DeleteResult{}, err
	}
	if !existed.Exists {
		return diskkit.DeleteResult{WasDeleted: false}, nil
	}

	_, err = d.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(path)),
	})
	if err != nil {
		return diskkit.DeleteResult{}, diskkit.WrapErr("delete", path, diskkit.ErrWrite, err)
	}
	return diskkit.DeleteResult{WasDeleted: true}, nil
}

// Copy implements diskkit.Driver using server-side CopyObject; bytes
// never transit the client.
func (d *Driver) Copy(ctx context.Context, src, dst string) error {
	if err := diskkit.ValidatePath(dst); err != nil {
		return diskkit.NewPathError("copy", dst, err)
	}

	_, err := d.client.CopyObject(ctx, &awss3.CopyObjectInput{
		Bucket:     aws.String(d.bucket),
		Key:        aws.String(d.key(dst)),
		CopySource: aws.String(d.copySource(src)),
	})
	if err != nil {
		if isNotFound(err) {
			return diskkit.NewPathError("copy", src, diskkit.ErrNotFound)
		}
		return diskkit.WrapErr("copy", dst, diskkit.ErrWrite, err)
	}
	return nil
}

// Move implements diskkit.Driver as copy plus delete; S3 has no rename.
func (d *Driver) Move(ctx context.Context, src, dst string) error {
	if err := d.Copy(ctx, src, dst); err != nil {
		return err
	}

	_, err := d.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(src)),
	})
	if err != nil {
		return &diskkit.PartialMoveError{
			Src: diskkit.NormalizePath(src),
			Dst: diskkit.NormalizePath(dst),
			Err: err,
		}
	}
	return nil
}

// URL implements diskkit.Driver. With no BaseURL configured the
// virtual-hosted-style convention is used.
func (d *Driver) URL(path string) string {
	if d.baseURL != "" {
		return d.baseURL + "/" + diskkit.NormalizePath(path)
	}
	if d.region != "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", d.bucket, d.region, d.key(path))
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", d.bucket, d.key(path))
}

// SignedURL implements diskkit.Driver through the presign client.
func (d *Driver) SignedURL(ctx context.Context, path string, expiry time.Duration) (diskkit.SignedURLResult, error) {
	if d.presigner == nil {
		return diskkit.SignedURLResult{}, diskkit.NewPathError("signed_url", path, diskkit.ErrSigning)
	}

	req, err := d.presigner.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(d.bucket),
		Key:    aws.String(d.key(path)),
	}, func(o *awss3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return diskkit.SignedURLResult{}, diskkit.WrapErr("signed_url", path, diskkit.ErrSigning, err)
	}
	return diskkit.SignedURLResult{SignedURL: req.URL, Expiry: expiry}, nil
}

// FlatList implements diskkit.Driver. Pages are fetched from the
// ListObjectsV2 paginator only as the consumer keeps pulling.
func (d *Driver) FlatList(ctx context.Context, prefix string) iter.Seq2[diskkit.FileEntry, error] {
	full := d.key(prefix)

	return func(yield func(diskkit.FileEntry, error) bool) {
		paginator := awss3.NewListObjectsV2Paginator(d.client, &awss3.ListObjectsV2Input{
			Bucket: aws.String(d.bucket),
			Prefix: aws.String(full),
		})

		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				yield(diskkit.FileEntry{}, diskkit.WrapErr("list", prefix, diskkit.ErrUnavailable, err))
				return
			}
			for _, obj := range page.Contents {
				if obj.Key == nil {
					continue
				}
				if !yield(diskkit.FileEntry{Path: d.strip(*obj.Key)}, nil) {
					return
				}
			}
		}
	}
}

// isNotFound reports whether an S3 error means the object is absent.
// HEAD surfaces *types.NotFound, GET *types.NoSuchKey.
func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	return errors.As(err, &nsk)
}

// Ensure Driver implements interfaces
var _ diskkit.Driver = (*Driver)(nil)
