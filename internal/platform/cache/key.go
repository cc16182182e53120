package cache

import (
	"net/url"
	"sort"
	"strings"
)

// Key derives the cache key for a listing request from its query parameters.
// Names are sorted so parameter order does not matter, while the values of a
// repeated name keep their request order: handlers read the first value, so
// ?a=1&a=2 and ?a=2&a=1 are different requests.
func Key(namespace string, query url.Values) string {
	names := make([]string, 0, len(query))
	for name, values := range query {
		if len(values) > 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return namespace
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(namespace)
	b.WriteByte('?')
	for i, name := range names {
		for j, v := range query[name] {
			if i > 0 || j > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// Patterns returns the glob patterns matching every key Key derives under
// namespace and nothing else: the bare namespace, and namespace followed by a
// query string. The namespace itself is matched literally.
func Patterns(namespace string) []string {
	literal := escapeGlob(namespace)
	return []string{literal, literal + `\?*`}
}

func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
