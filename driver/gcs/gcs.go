// Package gcs implements the diskkit driver contract on Google Cloud
// Storage. Keys live under an optional root prefix inside a single
// bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gobeaver/diskkit"
	"google.golang.org/api/iterator"
)

// Config holds configuration for the GCS driver.
type Config struct {
	// Bucket is the target bucket. Required.
	Bucket string

	// Prefix is prepended to every key. Optional.
	Prefix string

	// BaseURL overrides the conventional storage.googleapis.com URL.
	BaseURL string
}

// Driver stores objects in a GCS bucket.
type Driver struct {
	client  *storage.Client
	bucket  string
	prefix  string
	baseURL string
}

// New creates a GCS driver over an existing client.
func New(client *storage.Client, cfg Config) (*Driver, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs: bucket is required")
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

func (d *Driver) object(path string) *storage.ObjectHandle {
	return d.client.Bucket(d.bucket).Object(d.key(path))
}

// Put implements diskkit.Driver. The object writer commits atomically
// on Close; a failed upload leaves nothing behind.
func (d *Driver) Put(ctx context.Context, path string, content io.Reader, opts ...diskkit.PutOption) error {
	if err := diskkit.ValidatePath(path); err != nil {
		return diskkit.NewPathError("put", path, err)
	}
	o := diskkit.ApplyPutOptions(opts...)

	w := d.object(path).NewWriter(ctx)
	if o.ContentType != "" {
		w.ContentType = o.ContentType
	} else {
		w.ContentType = diskkit.GuessContentType(diskkit.NormalizePath(path), nil)
	}
	if o.CacheControl != "" {
		w.CacheControl = o.CacheControl
	}
	if len(o.Metadata) > 0 {
		w.Metadata = o.Metadata
	}
	if o.Visibility == diskkit.Public {
		w.ACL = []storage.ACLRule{
			{Entity: storage.AllUsers, Role: storage.RoleReader},
		}
	}

	if _, err := io.Copy(w, content); err != nil {
		w.Close()
		return diskkit.WrapErr("put", path, diskkit.ErrWrite, err)
	}
	if err := w.Close(); err != nil {
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
		return nil, diskkit.WrapErr("get", path, diskkit.ErrUnavailable, err)
	}
	return data, nil
}

// GetStream implements diskkit.Driver.
func (d *Driver) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	r, err := d.object(path).NewReader(ctx)
	if err != nil {
		return nil, mapErr("get", path, err)
	}
	return r, nil
}

// Stat implements diskkit.Driver.
func (d *Driver) Stat(ctx context.Context, path string) (diskkit.StatResult, error) {
	attrs, err := d.object(path).Attrs(ctx)
	if err != nil {
		return diskkit.StatResult{}, mapErr("stat", path, err)
	}
	return diskkit.StatResult{
		Size:     attrs.Size,
		Modified: attrs.Updated,
	}, nil
}

// Exists implements diskkit.Driver.
func (d *Driver) Exists(ctx context.Context, path string) (diskkit.ExistsResult, error) {
	_, err := d.object(path).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return diskkit.ExistsResult{Exists: false}, nil
		}
		return diskkit.ExistsResult{}, diskkit.WrapErr("exists", path, diskkit.ErrUnavailable, err)
	}
	return diskkit.ExistsResult{Exists: true}, nil
}

// Delete implements diskkit.Driver.
func (d *Driver) Delete(ctx context.Context, path string) (diskkit.DeleteResult, error) {
	err := d.object(path).Delete(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return diskkit.DeleteResult{WasDeleted: false}, nil
		}
		return diskkit.DeleteResult{}, diskkit.WrapErr("delete", path, diskkit.ErrWrite, err)
	}
	return diskkit.DeleteResult{WasDeleted: true}, nil
}

// Copy implements diskkit.Driver using the service-side copier.
func (d *Driver) Copy(ctx context.Context, src, dst string) error {
	if err := diskkit.ValidatePath(dst); err != nil {
		return diskkit.NewPathError("copy", dst, err)
	}

	_, err := d.object(dst).CopierFrom(d.object(src)).Run(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return diskkit.NewPathError("copy", src, diskkit.ErrNotFound)
		}
		return diskkit.WrapErr("copy", dst, diskkit.ErrWrite, err)
	}
	return nil
}

// Move implements diskkit.Driver as copy plus delete; GCS has no rename.
func (d *Driver) Move(ctx context.Context, src, dst string) error {
	if err := d.Copy(ctx, src, dst); err != nil {
		return err
	}
	if err := d.object(src).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil
		}
		return &diskkit.PartialMoveError{
			Src: diskkit.NormalizePath(src),
			Dst: diskkit.NormalizePath(dst),
			Err: err,
		}
	}
	return nil
}

// URL implements diskkit.Driver.
func (d *Driver) URL(path string) string {
	if d.baseURL != "" {
		return d.baseURL + "/" + diskkit.NormalizePath(path)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", d.bucket, d.key(path))
}

// SignedURL implements diskkit.Driver with a V4 signature. The client
// must carry credentials able to sign, e.g. a service account key.
func (d *Driver) SignedURL(ctx context.Context, path string, expiry time.Duration) (diskkit.SignedURLResult, error) {
	url, err := d.client.Bucket(d.bucket).SignedURL(d.key(path), &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(expiry),
	})
	if err != nil {
		return diskkit.SignedURLResult{}, diskkit.WrapErr("signed_url", path, diskkit.ErrSigning, err)
	}
	return diskkit.SignedURLResult{SignedURL: url, Expiry: expiry}, nil
}

// FlatList implements diskkit.Driver. The object iterator pages lazily
// under the hood; entries are pulled one at a time.
func (d *Driver) FlatList(ctx context.Context, prefix string) iter.Seq2[diskkit.FileEntry, error] {
	full := d.key(prefix)

	return func(yield func(diskkit.FileEntry, error) bool) {
		it := d.client.Bucket(d.bucket).Objects(ctx, &storage.Query{Prefix: full})
		for {
			attrs, err := it.Next()
			if errors.Is(err, iterator.Done) {
				return
			}
			if err != nil {
				yield(diskkit.FileEntry{}, diskkit.WrapErr("list", prefix, diskkit.ErrUnavailable, err))
				return
			}
			if !yield(diskkit.FileEntry{Path: d.strip(attrs.Name)}, nil) {
				return
			}
		}
	}
}

// mapErr translates GCS failures into the contract taxonomy.
func mapErr(op, path string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return diskkit.NewPathError(op, path, diskkit.ErrNotFound)
	}
	return diskkit.WrapErr(op, path, diskkit.ErrUnavailable, err)
}

// Ensure Driver implements interfaces
var _ diskkit.Driver = (*Driver)(nil)
