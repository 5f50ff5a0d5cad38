package diskkit

import (
	"context"
	"io"
	"iter"
	"time"
)

// ReadOnly wraps a driver so that every mutating operation fails with
// ErrReadOnly while reads pass through untouched. Useful for handing a
// production disk to code that must not write to it.
func ReadOnly(d Driver) Driver {
	return &readOnlyDriver{inner: d}
}

type readOnlyDriver struct {
	inner Driver
}

func (r *readOnlyDriver) Put(ctx context.Context, path string, content io.Reader, opts ...PutOption) error {
	return NewPathError("put", path, ErrReadOnly)
}

func (r *readOnlyDriver) Delete(ctx context.Context, path string) (DeleteResult, error) {
	return DeleteResult{}, NewPathError("delete", path, ErrReadOnly)
}

func (r *readOnlyDriver) Copy(ctx context.Context, src, dst string) error {
	return NewPathError("copy", dst, ErrReadOnly)
}

func (r *readOnlyDriver) Move(ctx context.Context, src, dst string) error {
	return NewPathError("move", src, ErrReadOnly)
}

func (r *readOnlyDriver) Get(ctx context.Context, path string) ([]byte, error) {
	return r.inner.Get(ctx, path)
}

func (r *readOnlyDriver) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	return r.inner.GetStream(ctx, path)
}

func (r *readOnlyDriver) Stat(ctx context.Context, path string) (StatResult, error) {
	return r.inner.Stat(ctx, path)
}

func (r *readOnlyDriver) Exists(ctx context.Context, path string) (ExistsResult, error) {
	return r.inner.Exists(ctx, path)
}

func (r *readOnlyDriver) URL(path string) string {
	return r.inner.URL(path)
}

func (r *readOnlyDriver) SignedURL(ctx context.Context, path string, expiry time.Duration) (SignedURLResult, error) {
	return r.inner.SignedURL(ctx, path, expiry)
}

func (r *readOnlyDriver) FlatList(ctx context.Context, prefix string) iter.Seq2[FileEntry, error] {
	return r.inner.FlatList(ctx, prefix)
}

var _ Driver = (*readOnlyDriver)(nil)
