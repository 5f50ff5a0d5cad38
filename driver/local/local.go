// Package local implements the diskkit driver contract on a directory of
// the local filesystem. Keys map to files under a configured root; the
// root is a hard boundary and paths escaping it are rejected.
package local

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gobeaver/diskkit"
)

// Config holds configuration for the local driver.
type Config struct {
	// Root is the directory all keys resolve under. Created if missing.
	Root string

	// BaseURL is the base for public URL composition, typically the
	// address a file server exposes Root at. Optional; without it URLs
	// are root-relative.
	BaseURL string

	// SigningSecret enables HMAC signed URLs. SignedURL fails without it.
	SigningSecret string
}

// Driver stores objects as files under a root directory.
type Driver struct {
	root    string
	baseURL string
	secret  []byte
}

// New creates a local driver rooted at cfg.Root.
func New(cfg Config) (*Driver, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("local: root directory is required")
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("local: resolve root: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("local: create root: %w", err)
	}

	d := &Driver{
		root:    root,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
	}
	if cfg.SigningSecret != "" {
		d.secret = []byte(cfg.SigningSecret)
	}
	return d, nil
}

// resolve maps a key to an absolute file path, rejecting anything that
// escapes the root.
func (d *Driver) resolve(op, path string) (string, error) {
	if err := diskkit.ValidatePath(path); err != nil {
		return "", diskkit.NewPathError(op, path, err)
	}
	key := diskkit.NormalizePath(path)

	full := filepath.Join(d.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(d.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", diskkit.NewPathError(op, path, diskkit.ErrInvalidPath)
	}
	return full, nil
}

// key returns the normalized slash-separated key for a resolved file.
func (d *Driver) key(full string) string {
	rel, _ := filepath.Rel(d.root, full)
	return filepath.ToSlash(rel)
}

// Put implements diskkit.Driver. The write goes through a temporary
// file in the target directory and a rename, so readers never observe
// a half-written object.
func (d *Driver) Put(ctx context.Context, path string, content io.Reader, opts ...diskkit.PutOption) error {
	full, err := d.resolve("put", path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return diskkit.WrapErr("put", path, diskkit.ErrWrite, err)
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return diskkit.WrapErr("put", path, diskkit.ErrWrite, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".diskkit-*")
	if err != nil {
		return diskkit.WrapErr("put", path, diskkit.ErrWrite, err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return diskkit.WrapErr("put", path, diskkit.ErrWrite, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return diskkit.WrapErr("put", path, diskkit.ErrWrite, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return diskkit.WrapErr("put", path, diskkit.ErrWrite, err)
	}
	if err := os.Rename(tmpName, full); err != nil {
		os.Remove(tmpName)
		return diskkit.WrapErr("put", path, diskkit.ErrWrite, err)
	}
	return nil
}

// Get implements diskkit.Driver.
func (d *Driver) Get(ctx context.Context, path string) ([]byte, error) {
	full, err := d.resolve("get", path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, mapReadErr("get", path, err)
	}
	return data, nil
}

// GetStream implements diskkit.Driver.
func (d *Driver) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	full, err := d.resolve("get_stream", path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(full)
	if err != nil {
		return nil, mapReadErr("get_stream", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, diskkit.WrapErr("get_stream", path, diskkit.ErrUnavailable, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, diskkit.NewPathError("get_stream", path, diskkit.ErrNotFound)
	}
	return f, nil
}

// Stat implements diskkit.Driver. Directories are not objects and stat
// on one reports not found.
func (d *Driver) Stat(ctx context.Context, path string) (diskkit.StatResult, error) {
	full, err := d.resolve("stat", path)
	if err != nil {
		return diskkit.StatResult{}, err
	}

	info, err := os.Stat(full)
	if err != nil {
		return diskkit.StatResult{}, mapReadErr("stat", path, err)
	}
	if info.IsDir() {
		return diskkit.StatResult{}, diskkit.NewPathError("stat", path, diskkit.ErrNotFound)
	}
	return diskkit.StatResult{
		Size:     info.Size(),
		Modified: info.ModTime(),
	}, nil
}

// Exists implements diskkit.Driver.
func (d *Driver) Exists(ctx context.Context, path string) (diskkit.ExistsResult, error) {
	full, err := d.resolve("exists", path)
	if err != nil {
		return diskkit.ExistsResult{}, err
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return diskkit.ExistsResult{Exists: false}, nil
		}
		return diskkit.ExistsResult{}, diskkit.WrapErr("exists", path, diskkit.ErrUnavailable, err)
	}
	return diskkit.ExistsResult{Exists: info.Mode().IsRegular()}, nil
}

// Delete implements diskkit.Driver.
func (d *Driver) Delete(ctx context.Context, path string) (diskkit.DeleteResult, error) {
	full, err := d.resolve("delete", path)
	if err != nil {
		return diskkit.DeleteResult{}, err
	}

	if err := os.Remove(full); err != nil {
		if os.IsNotExist(err) {
			return diskkit.DeleteResult{WasDeleted: false}, nil
		}
		return diskkit.DeleteResult{}, diskkit.WrapErr("delete", path, diskkit.ErrWrite, err)
	}
	return diskkit.DeleteResult{WasDeleted: true}, nil
}

// Copy implements diskkit.Driver.
func (d *Driver) Copy(ctx context.Context, src, dst string) error {
	srcFull, err := d.resolve("copy", src)
	if err != nil {
		return err
	}
	dstFull, err := d.resolve("copy", dst)
	if err != nil {
		return err
	}
	// Creating the destination truncates it; copying a path onto itself
	// would destroy the content before any byte is read.
	if srcFull == dstFull {
		if _, err := os.Stat(srcFull); err != nil {
			return mapReadErr("copy", src, err)
		}
		return nil
	}

	in, err := os.Open(srcFull)
	if err != nil {
		return mapReadErr("copy", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return diskkit.WrapErr("copy", src, diskkit.ErrUnavailable, err)
	}
	if info.IsDir() {
		return diskkit.NewPathError("copy", src, diskkit.ErrNotFound)
	}

	if err := os.MkdirAll(filepath.Dir(dstFull), 0o755); err != nil {
		return diskkit.WrapErr("copy", dst, diskkit.ErrWrite, err)
	}
	out, err := os.Create(dstFull)
	if err != nil {
		return diskkit.WrapErr("copy", dst, diskkit.ErrWrite, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dstFull)
		return diskkit.WrapErr("copy", dst, diskkit.ErrWrite, err)
	}
	if err := out.Close(); err != nil {
		return diskkit.WrapErr("copy", dst, diskkit.ErrWrite, err)
	}
	return nil
}

// Move implements diskkit.Driver. A native rename is attempted first;
// across filesystems it degrades to copy plus delete, and a delete
// failure after a successful copy surfaces as *PartialMoveError.
func (d *Driver) Move(ctx context.Context, src, dst string) error {
	srcFull, err := d.resolve("move", src)
	if err != nil {
		return err
	}
	dstFull, err := d.resolve("move", dst)
	if err != nil {
		return err
	}

	if _, err := os.Stat(srcFull); err != nil {
		return mapReadErr("move", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dstFull), 0o755); err != nil {
		return diskkit.WrapErr("move", dst, diskkit.ErrWrite, err)
	}

	if err := os.Rename(srcFull, dstFull); err == nil {
		return nil
	}

	if err := d.Copy(ctx, src, dst); err != nil {
		return err
	}
	if err := os.Remove(srcFull); err != nil {
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
	return d.baseURL + "/" + diskkit.NormalizePath(path)
}

// SignedURL implements diskkit.Driver. The signature is an HMAC-SHA256
// over the key and expiry timestamp, verifiable by whatever serves the
// root directory with the same secret.
func (d *Driver) SignedURL(ctx context.Context, path string, expiry time.Duration) (diskkit.SignedURLResult, error) {
	if len(d.secret) == 0 {
		return diskkit.SignedURLResult{}, diskkit.NewPathError("signed_url", path, diskkit.ErrSigning)
	}
	key := diskkit.NormalizePath(path)
	expires := time.Now().Add(expiry).Unix()

	mac := hmac.New(sha256.New, d.secret)
	fmt.Fprintf(mac, "%s:%d", key, expires)
	sig := hex.EncodeToString(mac.Sum(nil))

	return diskkit.SignedURLResult{
		SignedURL: fmt.Sprintf("%s/%s?expires=%d&signature=%s", d.baseURL, key, expires, sig),
		Expiry:    expiry,
	}, nil
}

// FlatList implements diskkit.Driver. The walk starts at the deepest
// directory the prefix implies, so "reports/2024/q" only traverses
// reports/, and matching stays byte-prefix on the slash key.
func (d *Driver) FlatList(ctx context.Context, prefix string) iter.Seq2[diskkit.FileEntry, error] {
	p := diskkit.NormalizePrefix(prefix)

	walkRoot := d.root
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		walkRoot = filepath.Join(d.root, filepath.FromSlash(p[:i]))
	}

	// The walk root is subject to the same jail as every resolved path;
	// a prefix like "../" must not enumerate the root's parent.
	if rel, err := filepath.Rel(d.root, walkRoot); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return func(yield func(diskkit.FileEntry, error) bool) {
			yield(diskkit.FileEntry{}, diskkit.NewPathError("list", prefix, diskkit.ErrInvalidPath))
		}
	}

	return func(yield func(diskkit.FileEntry, error) bool) {
		err := filepath.WalkDir(walkRoot, func(fp string, entry fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return fs.SkipAll
				}
				return err
			}
			if entry.IsDir() {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			key := d.key(fp)
			if !strings.HasPrefix(key, p) {
				return nil
			}
			if !yield(diskkit.FileEntry{Path: key}, nil) {
				return fs.SkipAll
			}
			return nil
		})
		if err != nil && !errors.Is(err, fs.SkipAll) {
			yield(diskkit.FileEntry{}, diskkit.WrapErr("list", prefix, diskkit.ErrUnavailable, err))
		}
	}
}

// mapReadErr classifies filesystem read failures. A key whose parent
// turns out to be a file surfaces as ENOTDIR, and a key naming a
// directory as EISDIR; for the object model both mean absence.
func mapReadErr(op, path string, err error) error {
	if os.IsNotExist(err) || errors.Is(err, syscall.ENOTDIR) || errors.Is(err, syscall.EISDIR) {
		return diskkit.NewPathError(op, path, diskkit.ErrNotFound)
	}
	return diskkit.WrapErr(op, path, diskkit.ErrUnavailable, err)
}

// Ensure Driver implements interfaces
var (
	_ diskkit.Driver   = (*Driver)(nil)
	_ diskkit.CanWatch = (*Driver)(nil)
)
