package legacy

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// DefaultPathSegments are the URL segments after which a legacy asset URL continues
// with a path relative to the archive (uploads) root. Longest first.
var DefaultPathSegments = []string{"/wp-content/uploads/", "/uploads/"}

var iframeSrc = regexp.MustCompile(`(?i)<iframe[^>]+src\s*=\s*["']([^"']+)["']`)

// localPath extracts an archive-relative path from a URL or path. Values with a
// scheme are only accepted when they contain one of the known segments; bare
// relative paths are accepted as they are.
func localPath(raw string, segments []string) (string, bool) {
	v := strings.TrimSpace(raw)
	if v == "" || strings.HasPrefix(v, "<") {
		return "", false
	}

	hasScheme := strings.Contains(v, "://") || strings.HasPrefix(v, "//")
	if hasScheme {
		if u, err := url.Parse(v); err == nil {
			v = u.EscapedPath()
		}
	} else if i := strings.IndexAny(v, "?#"); i >= 0 {
		v = v[:i]
	}

	for _, seg := range segments {
		if i := strings.Index(v, seg); i >= 0 {
			return cleanRelative(v[i+len(seg):])
		}
		if strings.HasPrefix(v, strings.TrimPrefix(seg, "/")) {
			return cleanRelative(v[len(seg)-1:])
		}
	}

	if hasScheme || strings.HasPrefix(v, "/") {
		return "", false
	}
	return cleanRelative(v)
}

func cleanRelative(p string) (string, bool) {
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	if p == "" {
		return "", false
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", false
		}
	}
	clean := strings.TrimPrefix(path.Clean("/"+p), "/")
	if clean == "" || clean == "." {
		return "", false
	}
	return clean, true
}

// remoteURL returns v if it is an absolute http(s) URL.
func remoteURL(raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	u, err := url.Parse(v)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", false
	}
	return v, true
}

// embedURL extracts the player URL from an embed snippet (an iframe) or accepts a
// bare http(s) URL.
func embedURL(raw string) (string, bool) {
	if m := iframeSrc.FindStringSubmatch(raw); m != nil {
		src := strings.TrimSpace(m[1])
		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}
		return src, src != ""
	}
	return remoteURL(raw)
}
