// Package objectstore implements the remote asset store on top of cloud
// object storage.
package objectstore

import (
	"path"
	"strings"
)

var formats = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// FormatFor maps a content type to the stored file format.
func FormatFor(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if f, ok := formats[ct]; ok {
		return f
	}
	if i := strings.IndexByte(ct, '/'); i >= 0 {
		return ct[i+1:]
	}
	return ""
}

// ResourceTypeFor returns the top-level media type ("image", "video", ...).
func ResourceTypeFor(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, '/'); i > 0 {
		return ct[:i]
	}
	return "raw"
}

// ObjectKey builds folder/id.format.
func ObjectKey(folder, id, format string) string {
	name := id
	if format != "" {
		name += "." + format
	}
	return path.Join(folder, name)
}
