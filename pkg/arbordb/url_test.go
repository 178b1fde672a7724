package arbordb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDatabaseURL(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare identifier", in: "demo-project", want: "https://demo-project.arbordb.io"},
		{name: "host", in: "demo-project.arbordb.io", want: "https://demo-project.arbordb.io"},
		{name: "full url", in: "https://demo-project.arbordb.io", want: "https://demo-project.arbordb.io"},
		{name: "http scheme kept for sandboxes", in: "http://db.example.com", want: "http://db.example.com"},
		{name: "dot-less host with scheme not suffixed", in: "http://localhost:8787", want: "http://localhost:8787"},
		{name: "trailing slash stripped", in: "https://db.example.com///", want: "https://db.example.com"},
		{name: "whitespace trimmed", in: "  demo ", want: "https://demo.arbordb.io"},
		{name: "inner whitespace rejected", in: "demo project", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "only scheme", in: "https://", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeDatabaseURL(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResourcePath(t *testing.T) {
	assert.Equal(t, "/posts.json", resourcePath("posts"))
	assert.Equal(t, "/posts/a/b.json", resourcePath("/posts/a/b/"))
	assert.Equal(t, "/.json", resourcePath(""))
	assert.Equal(t, "/.json", resourcePath("/"))
}
