package model

import (
	"net/url"
	"path"
	"strings"
)

// DirectoryEntry is a single hyperlink target scraped from an index page
type DirectoryEntry struct {
	Href string
}

// IsDir reports whether the entry denotes a sub-directory
func (e DirectoryEntry) IsDir() bool {
	return strings.HasSuffix(e.Href, "/")
}

// Name returns the unescaped last path segment of the entry without the
// trailing slash. Query and fragment are ignored.
func (e DirectoryEntry) Name() string {
	ref := e.Href
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimSuffix(ref, "/")
	name := path.Base(ref)
	if name == "." || name == "/" {
		return ""
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}
