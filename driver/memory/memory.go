package memory

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobeaver/diskkit"
)

// object is a stored blob. Values are immutable once stored; writes
// replace the whole object.
type object struct {
	data        []byte
	contentType string
	metadata    map[string]string
	modTime     time.Time
}

type watchEntry struct {
	prefix string
	token  *diskkit.CallbackChangeToken
}

// Driver is an in-memory implementation of diskkit.Driver. Useful for
// tests and ephemeral storage; every instance starts empty.
type Driver struct {
	mu      sync.RWMutex
	objects map[string]*object
	baseURL string
	signKey []byte

	watchMu sync.Mutex
	watches []*watchEntry
}

// Config holds configuration for the memory driver.
type Config struct {
	// BaseURL is the base for public URL composition. Optional; without
	// it URLs are root-relative.
	BaseURL string
}

// New creates an empty in-memory driver.
func New(cfg ...Config) *Driver {
	d := &Driver{
		objects: make(map[string]*object),
		signKey: make([]byte, 32),
	}
	if len(cfg) > 0 {
		d.baseURL = strings.TrimSuffix(cfg[0].BaseURL, "/")
	}
	// Per-instance signing key; signed URLs are only comparable within
	// one driver lifetime.
	_, _ = rand.Read(d.signKey)
	return d
}

// Put implements diskkit.Driver.
func (d *Driver) Put(ctx context.Context, path string, content io.Reader, opts ...diskkit.PutOption) error {
	if err := ctx.Err(); err != nil {
		return diskkit.WrapErr("put", path, diskkit.ErrWrite, err)
	}
	if err := diskkit.ValidatePath(path); err != nil {
		return diskkit.NewPathError("put", path, err)
	}
	key := diskkit.NormalizePath(path)

	data, err := io.ReadAll(content)
	if err != nil {
		return diskkit.WrapErr("put", path, diskkit.ErrWrite, err)
	}

	o := diskkit.ApplyPutOptions(opts...)
	contentType := o.ContentType
	if contentType == "" {
		contentType = diskkit.GuessContentType(key, data)
	}

	d.mu.Lock()
	d.objects[key] = &object{
		data:        data,
		contentType: contentType,
		metadata:    o.Metadata,
		modTime:     time.Now().UTC(),
	}
	d.mu.Unlock()

	d.notify(key)
	return nil
}

// Get implements diskkit.Driver.
func (d *Driver) Get(ctx context.Context, path string) ([]byte, error) {
	key := diskkit.NormalizePath(path)

	d.mu.RLock()
	obj, ok := d.objects[key]
	d.mu.RUnlock()

	if !ok {
		return nil, diskkit.NewPathError("get", path, diskkit.ErrNotFound)
	}
	return bytes.Clone(obj.data), nil
}

// GetStream implements diskkit.Driver. Existence is checked up front,
// so a missing object fails before any bytes are produced.
func (d *Driver) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	data, err := d.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Stat implements diskkit.Driver.
func (d *Driver) Stat(ctx context.Context, path string) (diskkit.StatResult, error) {
	key := diskkit.NormalizePath(path)

	d.mu.RLock()
	obj, ok := d.objects[key]
	d.mu.RUnlock()

	if !ok {
		return diskkit.StatResult{}, diskkit.NewPathError("stat", path, diskkit.ErrNotFound)
	}
	return diskkit.StatResult{
		Size:     int64(len(obj.data)),
		Modified: obj.modTime,
	}, nil
}

// Exists implements diskkit.Driver.
func (d *Driver) Exists(ctx context.Context, path string) (diskkit.ExistsResult, error) {
	key := diskkit.NormalizePath(path)

	d.mu.RLock()
	_, ok := d.objects[key]
	d.mu.RUnlock()

	return diskkit.ExistsResult{Exists: ok}, nil
}

// Delete implements diskkit.Driver.
func (d *Driver) Delete(ctx context.Context, path string) (diskkit.DeleteResult, error) {
	key := diskkit.NormalizePath(path)

	d.mu.Lock()
	_, existed := d.objects[key]
	delete(d.objects, key)
	d.mu.Unlock()

	if existed {
		d.notify(key)
	}
	return diskkit.DeleteResult{WasDeleted: existed}, nil
}

// Copy implements diskkit.Driver.
func (d *Driver) Copy(ctx context.Context, src, dst string) error {
	srcKey := diskkit.NormalizePath(src)
	dstKey := diskkit.NormalizePath(dst)
	if err := diskkit.ValidatePath(dst); err != nil {
		return diskkit.NewPathError("copy", dst, err)
	}

	d.mu.Lock()
	obj, ok := d.objects[srcKey]
	if !ok {
		d.mu.Unlock()
		return diskkit.NewPathError("copy", src, diskkit.ErrNotFound)
	}
	d.objects[dstKey] = &object{
		data:        bytes.Clone(obj.data),
		contentType: obj.contentType,
		metadata:    obj.metadata,
		modTime:     time.Now().UTC(),
	}
	d.mu.Unlock()

	d.notify(dstKey)
	return nil
}

// Move implements diskkit.Driver. The map rename is atomic under the
// lock, so a partial move cannot occur here.
func (d *Driver) Move(ctx context.Context, src, dst string) error {
	srcKey := diskkit.NormalizePath(src)
	dstKey := diskkit.NormalizePath(dst)
	if err := diskkit.ValidatePath(dst); err != nil {
		return diskkit.NewPathError("move", dst, err)
	}

	d.mu.Lock()
	obj, ok := d.objects[srcKey]
	if !ok {
		d.mu.Unlock()
		return diskkit.NewPathError("move", src, diskkit.ErrNotFound)
	}
	d.objects[dstKey] = obj
	delete(d.objects, srcKey)
	d.mu.Unlock()

	d.notify(srcKey)
	d.notify(dstKey)
	return nil
}

// URL implements diskkit.Driver.
func (d *Driver) URL(path string) string {
	return d.baseURL + "/" + diskkit.NormalizePath(path)
}

// SignedURL implements diskkit.Driver, signing with a per-instance
// HMAC key.
func (d *Driver) SignedURL(ctx context.Context, path string, expiry time.Duration) (diskkit.SignedURLResult, error) {
	key := diskkit.NormalizePath(path)
	expires := time.Now().Add(expiry).Unix()

	mac := hmac.New(sha256.New, d.signKey)
	fmt.Fprintf(mac, "%s:%d", key, expires)
	sig := hex.EncodeToString(mac.Sum(nil))

	return diskkit.SignedURLResult{
		SignedURL: fmt.Sprintf("%s/%s?expires=%d&signature=%s", d.baseURL, key, expires, sig),
		Expiry:    expiry,
	}, nil
}

// FlatList implements diskkit.Driver. The key set is snapshotted under
// the read lock, so the sequence is stable against concurrent writes.
func (d *Driver) FlatList(ctx context.Context, prefix string) iter.Seq2[diskkit.FileEntry, error] {
	p := diskkit.NormalizePrefix(prefix)

	return func(yield func(diskkit.FileEntry, error) bool) {
		d.mu.RLock()
		keys := make([]string, 0, len(d.objects))
		for key := range d.objects {
			if strings.HasPrefix(key, p) {
				keys = append(keys, key)
			}
		}
		d.mu.RUnlock()
		sort.Strings(keys)

		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				yield(diskkit.FileEntry{}, diskkit.WrapErr("list", prefix, diskkit.ErrUnavailable, err))
				return
			}
			if !yield(diskkit.FileEntry{Path: key}, nil) {
				return
			}
		}
	}
}

// Watch implements diskkit.CanWatch via write hooks.
func (d *Driver) Watch(ctx context.Context, prefix string) (diskkit.ChangeToken, error) {
	token := diskkit.NewCallbackChangeToken()

	d.watchMu.Lock()
	d.watches = append(d.watches, &watchEntry{
		prefix: diskkit.NormalizePrefix(prefix),
		token:  token,
	})
	d.watchMu.Unlock()

	return token, nil
}

// notify signals watch tokens matching key. Spent tokens are dropped.
func (d *Driver) notify(key string) {
	d.watchMu.Lock()
	defer d.watchMu.Unlock()

	kept := d.watches[:0]
	for _, w := range d.watches {
		if strings.HasPrefix(key, w.prefix) {
			w.token.SignalChange()
			continue
		}
		kept = append(kept, w)
	}
	d.watches = kept
}

// Ensure Driver implements interfaces
var (
	_ diskkit.Driver   = (*Driver)(nil)
	_ diskkit.CanWatch = (*Driver)(nil)
)
