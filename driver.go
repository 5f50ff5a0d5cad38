package diskkit

import (
	"context"
	"io"
	"iter"
	"time"
)

// Driver is the capability set every storage backend implements.
//
// All paths are forward-slash separated keys relative to the driver's
// configured root (local directory, or bucket plus optional key prefix).
// A single leading "/" is tolerated and stripped; anything a driver cannot
// map to a key inside its root fails with [ErrInvalidPath].
//
// Drivers translate every backend-native failure into the closed error
// taxonomy of this package before returning it; no SDK error type crosses
// this boundary except as wrapped detail reachable through errors.Unwrap.
type Driver interface {
	// Put writes content to path with total-overwrite semantics: any
	// existing object is fully replaced, content and metadata both.
	// Intermediate directories are created implicitly where the backend
	// has them (local) and do not exist otherwise (object stores).
	Put(ctx context.Context, path string, content io.Reader, opts ...PutOption) error

	// Get reads the full object as raw bytes.
	// Fails with ErrNotFound if the object does not exist.
	Get(ctx context.Context, path string) ([]byte, error)

	// GetStream opens the object for streaming read. The returned stream
	// is finite, single-pass and single-owner; the caller must drain or
	// close it. Where the backend can verify existence cheaply the call
	// fails with ErrNotFound before any bytes are produced; otherwise a
	// missing object may surface as a terminal read error.
	GetStream(ctx context.Context, path string) (io.ReadCloser, error)

	// Stat returns size and modification time.
	// Fails with ErrNotFound if the object does not exist.
	Stat(ctx context.Context, path string) (StatResult, error)

	// Exists reports whether the object exists. Absence is a successful
	// answer, never an error; only backend connectivity failures
	// (ErrUnavailable) are reported as errors.
	Exists(ctx context.Context, path string) (ExistsResult, error)

	// Delete removes the object. Deleting an absent path is a successful
	// no-op reported as {WasDeleted: false}.
	Delete(ctx context.Context, path string) (DeleteResult, error)

	// Copy duplicates src to dst, preferring the backend's server-side
	// copy where one exists. The source is left untouched.
	Copy(ctx context.Context, src, dst string) error

	// Move relocates src to dst. Backends without a native rename perform
	// copy followed by delete; if the trailing delete fails after a
	// successful copy the returned error is a *PartialMoveError so the
	// caller knows the content now exists in both locations.
	Move(ctx context.Context, src, dst string) error

	// URL composes the conventional public URL for path. It is pure
	// string composition over configured values and never performs I/O.
	URL(path string) string

	// SignedURL produces a time-limited URL granting access to path
	// without backend credentials. Fails with ErrSigning when the
	// backend cannot produce a signature.
	SignedURL(ctx context.Context, path string, expiry time.Duration) (SignedURLResult, error)

	// FlatList lazily yields every object whose key starts with prefix,
	// recursively, in backend-native order. Matching is byte-prefix on
	// the normalized key ("f/te" matches "f/test.txt"), not path-segment
	// matching. A prefix matching nothing yields an empty sequence.
	// Pagination, where the backend has it, is hidden entirely: pages
	// are fetched as the consumer keeps pulling. The sequence is
	// single-pass but FlatList may be called again for a fresh listing.
	FlatList(ctx context.Context, prefix string) iter.Seq2[FileEntry, error]
}

// ============================================================================
// Optional Capability Interfaces
// ============================================================================
// Drivers may expose capabilities beyond the core contract. Callers check
// with a type assertion:
//
//	if w, ok := drv.(diskkit.CanWatch); ok {
//	    token, err := w.Watch(ctx, "config/")
//	}

// CanWatch indicates the driver can report changes under a key prefix.
// Backends without native events simply do not implement it.
type CanWatch interface {
	// Watch returns a single-use token signalled when any object whose
	// key starts with prefix is created, modified or deleted.
	Watch(ctx context.Context, prefix string) (ChangeToken, error)
}
