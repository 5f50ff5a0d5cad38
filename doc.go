// Package diskkit provides a unified abstraction over heterogeneous
// blob-storage backends with a single operation set regardless of which
// backend is active.
//
// Every backend implements the [Driver] contract: put, get, streaming
// read, delete, copy, move, existence check, stat, public and signed URL
// generation, and recursive prefix listing. Backend-native failures are
// normalized into a closed error taxonomy ([ErrNotFound], [ErrWrite],
// [ErrDecode], [ErrInvalidPath], [ErrUnavailable], [ErrSigning] and
// [*PartialMoveError]) so callers treat all backends identically.
//
// # Storage Backends
//
//   - Local filesystem (github.com/gobeaver/diskkit/driver/local)
//   - Amazon S3 (github.com/gobeaver/diskkit/driver/s3)
//   - Google Cloud Storage (github.com/gobeaver/diskkit/driver/gcs)
//   - MinIO and other S3-compatible stores (github.com/gobeaver/diskkit/driver/minio)
//   - In-memory (github.com/gobeaver/diskkit/driver/memory)
//
// # Basic Usage
//
//	import "github.com/gobeaver/diskkit/driver/local"
//
//	drv, err := local.New(local.Config{Root: "./storage"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	disk := diskkit.NewDisk("local", drv)
//
//	ctx := context.Background()
//
//	// Write and read back
//	err = disk.PutString(ctx, "hello.txt", "Hello, World!")
//	text, err := disk.GetString(ctx, "hello.txt")
//
//	// Absence is an answer, not an error
//	res, err := disk.Exists(ctx, "missing.txt") // res.Exists == false, err == nil
//
//	// Lazy recursive listing, byte-prefix matched
//	for entry, err := range disk.FlatList(ctx, "reports/2024") {
//	    ...
//	}
//
// Multiple named disks are dispatched through a [Manager], resolved once
// at registration:
//
//	m := diskkit.NewManager()
//	m.Use("uploads", s3Driver)
//	m.Use("scratch", memoryDriver)
//	disk, err := m.Disk("uploads")
//
// The core performs no retries, caching or locking: each operation is a
// single translated round trip, and races between concurrent calls on
// the same path resolve to whatever the backend does (last writer wins
// for Put). Streams returned by GetStream and FlatList are single-owner,
// single-pass resources the caller must drain or close.
package diskkit
