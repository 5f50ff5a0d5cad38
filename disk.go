package diskkit

import (
	"bytes"
	"context"
	"io"
	"iter"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Disk is a logical named storage target bound to one driver instance.
// It forwards the full driver contract unchanged and layers on the
// content conveniences that are backend-independent: typed writes, text
// decoding, checksums and glob-filtered listing.
type Disk struct {
	name   string
	driver Driver
}

// NewDisk binds a driver under a logical name. Most callers get disks
// from a [Manager] instead.
func NewDisk(name string, driver Driver) *Disk {
	return &Disk{name: name, driver: driver}
}

// Name returns the logical disk name.
func (d *Disk) Name() string { return d.name }

// Driver returns the underlying driver.
func (d *Disk) Driver() Driver { return d.driver }

// ============================================================================
// Forwarded contract
// ============================================================================

// Put writes content from a stream with total-overwrite semantics.
func (d *Disk) Put(ctx context.Context, path string, content io.Reader, opts ...PutOption) error {
	return d.driver.Put(ctx, path, content, opts...)
}

// PutBytes writes raw bytes.
func (d *Disk) PutBytes(ctx context.Context, path string, content []byte, opts ...PutOption) error {
	return d.driver.Put(ctx, path, bytes.NewReader(content), opts...)
}

// PutString writes a string as UTF-8 bytes.
func (d *Disk) PutString(ctx context.Context, path, content string, opts ...PutOption) error {
	return d.driver.Put(ctx, path, strings.NewReader(content), opts...)
}

// Get reads the full object as raw bytes.
func (d *Disk) Get(ctx context.Context, path string) ([]byte, error) {
	return d.driver.Get(ctx, path)
}

// GetStream opens the object for streaming read.
func (d *Disk) GetStream(ctx context.Context, path string) (io.ReadCloser, error) {
	return d.driver.GetStream(ctx, path)
}

// Stat returns object metadata.
func (d *Disk) Stat(ctx context.Context, path string) (StatResult, error) {
	return d.driver.Stat(ctx, path)
}

// Exists reports whether the object exists.
func (d *Disk) Exists(ctx context.Context, path string) (ExistsResult, error) {
	return d.driver.Exists(ctx, path)
}

// Delete removes the object; removing an absent object is a no-op.
func (d *Disk) Delete(ctx context.Context, path string) (DeleteResult, error) {
	return d.driver.Delete(ctx, path)
}

// Copy duplicates src to dst.
func (d *Disk) Copy(ctx context.Context, src, dst string) error {
	return d.driver.Copy(ctx, src, dst)
}

// Move relocates src to dst. See Driver.Move for partial-failure
// reporting.
func (d *Disk) Move(ctx context.Context, src, dst string) error {
	return d.driver.Move(ctx, src, dst)
}

// URL composes the conventional public URL for path.
func (d *Disk) URL(path string) string {
	return d.driver.URL(path)
}

// SignedURL produces a time-limited access URL.
func (d *Disk) SignedURL(ctx context.Context, path string, expiry time.Duration) (SignedURLResult, error) {
	return d.driver.SignedURL(ctx, path, expiry)
}

// FlatList lazily yields every object under prefix.
func (d *Disk) FlatList(ctx context.Context, prefix string) iter.Seq2[FileEntry, error] {
	return d.driver.FlatList(ctx, prefix)
}

// ============================================================================
// Content conveniences
// ============================================================================

// GetString reads the object and validates it as UTF-8 text. Invalid
// byte sequences fail with ErrDecode; there is no replacement decoding.
func (d *Disk) GetString(ctx context.Context, path string) (string, error) {
	raw, err := d.driver.Get(ctx, path)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", NewPathError("get", path, ErrDecode)
	}
	return string(raw), nil
}

// GetText reads the object and decodes it from the given encoding into a
// UTF-8 string. A nil encoding means plain UTF-8 validation. Bytes the
// encoding cannot represent fail with ErrDecode rather than being
// replaced.
func (d *Disk) GetText(ctx context.Context, path string, enc encoding.Encoding) (string, error) {
	if enc == nil {
		return d.GetString(ctx, path)
	}

	raw, err := d.driver.Get(ctx, path)
	if err != nil {
		return "", err
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", WrapErr("get", path, ErrDecode, err)
	}
	// x/text decoders substitute U+FFFD for undecodable input instead of
	// erroring; the contract wants a hard failure.
	if bytes.ContainsRune(decoded, utf8.RuneError) && !bytes.ContainsRune(raw, utf8.RuneError) {
		return "", NewPathError("get", path, ErrDecode)
	}
	return string(decoded), nil
}

// Checksum computes a digest of the object by streaming it through the
// given algorithm.
func (d *Disk) Checksum(ctx context.Context, path string, algorithm ChecksumAlgorithm) (string, error) {
	rc, err := d.driver.GetStream(ctx, path)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	sum, err := CalculateChecksum(rc, algorithm)
	if err != nil {
		return "", NewPathError("checksum", path, err)
	}
	return sum, nil
}

// Checksums computes several digests in one streaming pass.
func (d *Disk) Checksums(ctx context.Context, path string, algorithms []ChecksumAlgorithm) (map[ChecksumAlgorithm]string, error) {
	rc, err := d.driver.GetStream(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	sums, err := CalculateChecksums(rc, algorithms)
	if err != nil {
		return nil, NewPathError("checksums", path, err)
	}
	return sums, nil
}

// Glob lists objects whose path matches a glob pattern. The listing is
// seeded with the pattern's literal prefix so drivers only enumerate the
// relevant part of the keyspace.
func (d *Disk) Glob(ctx context.Context, pattern string) (iter.Seq2[FileEntry, error], error) {
	prefix := pattern
	if i := strings.IndexAny(pattern, `*?[{\`); i >= 0 {
		prefix = pattern[:i]
	}
	return FilterGlob(d.driver.FlatList(ctx, prefix), pattern)
}
