package sanitizer

import "strings"

// NormalizeURL forces https and a lower-case host for image links. The path
// keeps its case and loses a trailing slash.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(raw, "https://"); ok {
		raw = rest
	} else {
		raw = strings.TrimPrefix(raw, "http://")
	}

	host, path, hasPath := strings.Cut(raw, "/")
	if host == "" {
		return ""
	}
	out := "https://" + strings.ToLower(host)
	if hasPath {
		out += "/" + path
	}
	return strings.TrimSuffix(out, "/")
}
