// Package minio implements the diskkit driver contract on MinIO and
// other S3-compatible object stores through the native MinIO client.
package minio

import (
	"context"
	"fmt"
	"io"
	"iter"
	"net/url"
	"strings"
	"time"

	"github.com/gobeaver/diskkit"
	"github.com/minio/minio-go/v7"
)

// Config holds configuration for the MinIO driver.
type Config struct {
	// Bucket is the target bucket. Required.
	Bucket string

	// Prefix is prepended to every key. Optional.
	Prefix string

	// BaseURL overrides the endpoint-derived public URL.
	BaseURL string
}

// Driver stores objects in a MinIO bucket.
type Driver struct {
	client  *minio.Client
	bucket  string
	prefix  string
	baseURL string
}

// New creates a MinIO driver over an existing client.
func New(client *minio.Client, cfg Config) (*Driver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio: bucket is required")
	}
	return &Driver{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}, nil
}

func (d *Driver) key(path string) string {
	k := diskkit.NormalizePath(path)
	if d.prefix == "" {
		return k
	}
	return d.prefix + "/" + k
}

func (d *Driver) strip(key string) string {
	if d.prefix == "" {
		return key
	}
	return strings.TrimPrefix(strings.TrimPrefix(key, d.prefix), "/")
}

// isNotFound inspects the wire-level error code; StatObject reports
// NoSuchKey, some S3-compatible services NotFound.
func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

// Put implements diskkit.Driver. Size -1 lets the client pick streaming
// multipart for unbounded readers.
func (d *Driver) Put(ctx context.Context, path string, content io.Reader, opts ...diskkit.PutOption) error {
	if err := diskkit.ValidatePath(path); err != nil {
		return diskkit.NewPathError("put", path, err)
	}
	o := diskkit.ApplyPutOptions(opts...)

	putOpts := minio.PutObjectOptions{
		ContentType:  o.ContentType,
		CacheControl: o.CacheControl,
		UserMetadata: o.Metadata,
	}

	if _, err := d.client.PutObject(ctx, d.bucket, d.key(path), content, -1, putOpts); err != nil {
		return diskkit.WrapErr("put", path, diskkit.ErrWrite, err)
	}
	return nil
}

// Get implements diskkit.Driver.
func (d *Driver) Get(ctx context.Context, path string) ([]byte, error) {
	r, err := d.GetStream(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		if isNotFound(err) {
			return nil, diskkit.NewPathError("get", path, diskkit.ErrNotFound)
		}
		return nil, diskkit.WrapErr("get", path, diskkit.ErrUnavailable, err)
	}
	return data, nil
}

// GetStream implements diskkit.Driver. GetObject defers the round trip
// to the first read, so existence is verified with a stat up front to
// honor the fail-before-bytes contract.
func (d *Driver) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	key := d.key(path)

	if _, err := d.client.StatObject(ctx, d.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNotFound(err) {
			return nil, diskkit.NewPathError("get", path, diskkit.ErrNotFound)
		}
		return nil, diskkit.WrapErr("get", path, diskkit.ErrUnavailable, err)
	}

	obj, err := d.client.GetObject(ctx, d.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, diskkit.WrapErr("get", path, diskkit.ErrUnavailable, err)
	}
	return obj, nil
}

// Stat implements diskkit.Driver.
func (d *Driver) Stat(ctx context.Context, path string) (diskkit.StatResult, error) {
	info, err := d.client.StatObject(ctx, d.bucket, d.key(path), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return diskkit.StatResult{}, diskkit.NewPathError("stat", path, diskkit.ErrNotFound)
		}
		return diskkit.StatResult{}, diskkit.WrapErr("stat", path, diskkit.ErrUnavailable, err)
	}
	return diskkit.StatResult{
		Size:     info.Size,
		Modified: info.LastModified,
	}, nil
}

// Exists implements diskkit.Driver.
func (d *Driver) Exists(ctx context.Context, path string) (diskkit.ExistsResult, error) {
	_, err := d.client.StatObject(ctx, d.bucket, d.key(path), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return diskkit.ExistsResult{Exists: false}, nil
		}
		return diskkit.ExistsResult{}, diskkit.WrapErr("exists", path, diskkit.ErrUnavailable, err)
	}
	return diskkit.ExistsResult{Exists: true}, nil
}

// Delete implements diskkit.Driver. RemoveObject is silent about prior
// existence, so a stat establishes it first.
func (d *Driver) Delete(ctx context.Context, path string) (diskkit.DeleteResult, error) {
	existed, err := d.Exists(ctx, path)
	if err != nil {
		return diskkit.DeleteResult{}, err
	}
	if !existed.Exists {
		return diskkit.DeleteResult{WasDeleted: false}, nil
	}

	if err := d.client.RemoveObject(ctx, d.bucket, d.key(path), minio.RemoveObjectOptions{}); err != nil {
		return diskkit.DeleteResult{}, diskkit.WrapErr("delete", path, diskkit.ErrWrite, err)
	}
	return diskkit.DeleteResult{WasDeleted: true}, nil
}

// Copy implements diskkit.Driver using server-side CopyObject.
func (d *Driver) Copy(ctx context.Context, src, dst string) error {
	if err := diskkit.ValidatePath(dst); err != nil {
		return diskkit.NewPathError("copy", dst, err)
	}

	_, err := d.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: d.bucket, Object: d.key(dst)},
		minio.CopySrcOptions{Bucket: d.bucket, Object: d.key(src)},
	)
	if err != nil {
		if isNotFound(err) {
			return diskkit.NewPathError("copy", src, diskkit.ErrNotFound)
		}
		return diskkit.WrapErr("copy", dst, diskkit.ErrWrite, err)
	}
	return nil
}

// Move implements diskkit.Driver as copy plus delete.
func (d *Driver) Move(ctx context.Context, src, dst string) error {
	if err := d.Copy(ctx, src, dst); err != nil {
		return err
	}
	if err := d.client.RemoveObject(ctx, d.bucket, d.key(src), minio.RemoveObjectOptions{}); err != nil {
		return &diskkit.PartialMoveError{
			Src: diskkit.NormalizePath(src),
			Dst: diskkit.NormalizePath(dst),
			Err: err,
		}
	}
	return nil
}

// URL implements diskkit.Driver. Without a BaseURL the client's
// endpoint is used path-style.
func (d *Driver) URL(path string) string {
	if d.baseURL != "" {
		return d.baseURL + "/" + diskkit.NormalizePath(path)
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(d.client.EndpointURL().String(), "/"), d.bucket, d.key(path))
}

// SignedURL implements diskkit.Driver through a presigned GET.
func (d *Driver) SignedURL(ctx context.Context, path string, expiry time.Duration) (diskkit.SignedURLResult, error) {
	u, err := d.client.PresignedGetObject(ctx, d.bucket, d.key(path), expiry, url.Values{})
	if err != nil {
		return diskkit.SignedURLResult{}, diskkit.WrapErr("signed_url", path, diskkit.ErrSigning, err)
	}
	return diskkit.SignedURLResult{SignedURL: u.String(), Expiry: expiry}, nil
}

// FlatList implements diskkit.Driver. ListObjects streams over a
// channel; the generator pulls entries as the consumer does.
func (d *Driver) FlatList(ctx context.Context, prefix string) iter.Seq2[diskkit.FileEntry, error] {
	full := d.key(prefix)

	return func(yield func(diskkit.FileEntry, error) bool) {
		// Cancel the listing goroutine if the consumer stops early.
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		for obj := range d.client.ListObjects(ctx, d.bucket, minio.ListObjectsOptions{
			Prefix:    full,
			Recursive: true,
		}) {
			if obj.Err != nil {
				yield(diskkit.FileEntry{}, diskkit.WrapErr("list", prefix, diskkit.ErrUnavailable, obj.Err))
				return
			}
			if !yield(diskkit.FileEntry{Path: d.strip(obj.Key)}, nil) {
				return
			}
		}
	}
}

// Ensure Driver implements interfaces
var _ diskkit.Driver = (*Driver)(nil)
