package diskkit

import (
	"mime"
	"net/http"
	"path"
)

// GuessContentType determines a content type for a key, preferring the
// extension and falling back to sniffing the first bytes of content.
// content may be nil. Returns "application/octet-stream" when nothing
// better is known.
func GuessContentType(key string, content []byte) string {
	if ext := path.Ext(key); ext != "" {
		if ct := mime.TypeByExtension(ext); ct != "" {
			return ct
		}
	}
	if len(content) > 0 {
		if len(content) > 512 {
			content = content[:512]
		}
		return http.DetectContentType(content)
	}
	return "application/octet-stream"
}
