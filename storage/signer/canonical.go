package signer

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// extensionHeaderPrefix marks the custom headers that participate in
// signature canonicalization. Headers outside this prefix never affect
// the signature.
const extensionHeaderPrefix = "x-goog-"

// canonicalExtensionHeaders builds the canonical header block: extension
// headers only, names lower-cased, sorted lexicographically, multi-valued
// headers joined with ",", whitespace runs collapsed, one "name:value\n"
// line per header. The server performs the same normalization before
// verifying; any mismatch invalidates the signature.
func canonicalExtensionHeaders(headers map[string][]string) string {
	if len(headers) == 0 {
		return ""
	}

	// Walk the input in sorted key order so that duplicate names differing
	// only in case merge their values deterministically.
	rawNames := make([]string, 0, len(headers))
	for name := range headers {
		rawNames = append(rawNames, name)
	}
	sort.Strings(rawNames)

	merged := make(map[string][]string)
	var names []string
	for _, name := range rawNames {
		lower := strings.ToLower(strings.TrimSpace(name))
		if !strings.HasPrefix(lower, extensionHeaderPrefix) {
			continue
		}
		if _, seen := merged[lower]; !seen {
			names = append(names, lower)
		}
		for _, v := range headers[name] {
			merged[lower] = append(merged[lower], collapseSpaces(v))
		}
	}
	if len(merged) == 0 {
		return ""
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strings.Join(merged[name], ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// collapseSpaces trims v and reduces every internal whitespace run to a
// single space.
func collapseSpaces(v string) string {
	return strings.Join(strings.Fields(v), " ")
}

// canonicalString assembles the exact byte sequence that gets signed.
// Field order and "\n" separators are fixed; omitted optional fields stay
// as empty strings so the separators are positional, never label-based.
func canonicalString(method, contentMD5, contentType string, expires int64, extHeaders, resource string) string {
	var b strings.Builder
	b.WriteString(method)
	b.WriteByte('\n')
	b.WriteString(contentMD5)
	b.WriteByte('\n')
	b.WriteString(contentType)
	b.WriteByte('\n')
	b.WriteString(strconv.FormatInt(expires, 10))
	b.WriteByte('\n')
	b.WriteString(extHeaders)
	b.WriteString(resource)
	return b.String()
}

// escapeObjectPath percent-escapes each path segment of an object key
// without escaping the "/" separators themselves.
func escapeObjectPath(object string) string {
	segments := strings.Split(object, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
