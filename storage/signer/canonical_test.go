package signer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalExtensionHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string][]string
		want    string
	}{
		{
			name:    "nil headers",
			headers: nil,
			want:    "",
		},
		{
			name: "non-extension headers filtered out",
			headers: map[string][]string{
				"Content-Type": {"image/png"},
				"X-Custom":     {"value"},
			},
			want: "",
		},
		{
			name: "names lower-cased and sorted",
			headers: map[string][]string{
				"X-Goog-Meta-Zeta": {"z"},
				"X-Goog-Acl":       {"public-read"},
			},
			want: "x-goog-acl:public-read\nx-goog-meta-zeta:z\n",
		},
		{
			name: "multi-valued header joined with comma",
			headers: map[string][]string{
				"x-goog-meta-tags": {"alpha", "beta"},
			},
			want: "x-goog-meta-tags:alpha,beta\n",
		},
		{
			name: "duplicate names differing in case merge",
			headers: map[string][]string{
				"X-Goog-Meta-Foo": {"bar"},
				"x-goog-meta-foo": {"baz"},
			},
			want: "x-goog-meta-foo:bar,baz\n",
		},
		{
			name: "whitespace runs collapse",
			headers: map[string][]string{
				"x-goog-meta-name": {"  heidi \t  gruber  "},
			},
			want: "x-goog-meta-name:heidi gruber\n",
		},
		{
			name: "mixed signable and unsignable",
			headers: map[string][]string{
				"Content-MD5":     {"abc"},
				"x-goog-acl":      {"private"},
				"Accept-Encoding": {"gzip"},
			},
			want: "x-goog-acl:private\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalExtensionHeaders(tt.headers))
		})
	}
}

func TestCanonicalString(t *testing.T) {
	got := canonicalString(
		"PUT",
		"rL0Y20zC+Fzt72VPzMSk2A==",
		"image/png",
		1700000300,
		"x-goog-acl:public-read\n",
		"/my-todo-app/avatars/heidi/400x400.png",
	)
	want := "PUT\nrL0Y20zC+Fzt72VPzMSk2A==\nimage/png\n1700000300\nx-goog-acl:public-read\n/my-todo-app/avatars/heidi/400x400.png"
	assert.Equal(t, want, got)
}

func TestCanonicalString_EmptyOptionalFields(t *testing.T) {
	got := canonicalString("GET", "", "", 1700000300, "", "/b/o.txt")
	assert.Equal(t, "GET\n\n\n1700000300\n/b/o.txt", got)
}

func TestEscapeObjectPath(t *testing.T) {
	tests := []struct {
		name   string
		object string
		want   string
	}{
		{"plain", "a.txt", "a.txt"},
		{"nested", "avatars/heidi/400x400.png", "avatars/heidi/400x400.png"},
		{"space", "q3 report.txt", "q3%20report.txt"},
		{"reserved characters", "a?b#c/d e", "a%3Fb%23c/d%20e"},
		{"unicode", "café/menü.txt", "caf%C3%A9/men%C3%BC.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeObjectPath(tt.object))
		})
	}
}
