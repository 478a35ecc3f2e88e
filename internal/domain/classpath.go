package domain

import (
	"net/url"
	"strings"
)

// ClasspathEntry is an extra library a script asks to load. Approval state is
// kept elsewhere, keyed by a content hash.
type ClasspathEntry struct {
	URL string `toml:"url" yaml:"url" json:"url"`
}

// LocalPath returns the filesystem path of a file: URL or bare path.
// ok is false for other schemes.
func (e ClasspathEntry) LocalPath() (path string, ok bool) {
	if !strings.Contains(e.URL, "://") && !strings.HasPrefix(e.URL, "file:") {
		return e.URL, true
	}
	u, err := url.Parse(e.URL)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	if u.Path == "" {
		return u.Opaque, true
	}
	return u.Path, true
}

func (e ClasspathEntry) String() string {
	return e.URL
}
