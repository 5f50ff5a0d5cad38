package diskkit

// PutOption configures a single Put call.
type PutOption func(*PutOptions)

// PutOptions contains all per-write options. Drivers honor what their
// backend supports and ignore the rest; none of these change overwrite
// semantics, which are always total replacement.
type PutOptions struct {
	// ContentType specifies the MIME type of the object.
	ContentType string

	// Metadata contains additional key/value metadata for the object.
	Metadata map[string]string

	// CacheControl sets the Cache-Control header on backends that serve
	// objects over HTTP.
	CacheControl string

	// Visibility defines object visibility (public or private).
	Visibility Visibility
}

// Visibility represents object visibility.
type Visibility string

const (
	// Private means the object is only accessible with credentials.
	Private Visibility = "private"

	// Public means the object is publicly accessible.
	Public Visibility = "public"
)

// WithContentType sets the content type of the object.
func WithContentType(contentType string) PutOption {
	return func(o *PutOptions) {
		o.ContentType = contentType
	}
}

// WithMetadata sets additional metadata for the object.
func WithMetadata(metadata map[string]string) PutOption {
	return func(o *PutOptions) {
		o.Metadata = metadata
	}
}

// WithCacheControl sets the Cache-Control header for the object.
func WithCacheControl(cacheControl string) PutOption {
	return func(o *PutOptions) {
		o.CacheControl = cacheControl
	}
}

// WithVisibility sets the object visibility.
func WithVisibility(visibility Visibility) PutOption {
	return func(o *PutOptions) {
		o.Visibility = visibility
	}
}

// ApplyPutOptions collects options into a PutOptions. Driver packages use
// this instead of each reimplementing the fold.
func ApplyPutOptions(opts ...PutOption) *PutOptions {
	o := &PutOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
