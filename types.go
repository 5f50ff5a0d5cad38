package diskkit

import "time"

// ExistsResult is the answer to an existence check. It is always fully
// populated; absence is a valid result, not an error.
type ExistsResult struct {
	Exists bool
}

// DeleteResult reports whether a delete removed anything. WasDeleted is
// false when the target never existed, which is not an error.
type DeleteResult struct {
	WasDeleted bool
}

// StatResult carries object metadata. Modified is the backend-native
// modification instant in UTC; no further normalization is applied.
type StatResult struct {
	Size     int64
	Modified time.Time
}

// SignedURLResult carries a time-limited URL and the expiry it was
// issued with.
type SignedURLResult struct {
	SignedURL string
	Expiry    time.Duration
}

// FileEntry is one element of a listing: the full key, forward-slash
// separated, relative to the driver's root. Listings promise completeness
// for a prefix, not ordering; callers needing order sort client-side.
type FileEntry struct {
	Path string
}
