package folio_test

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sagarc03/folio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidPath(t *testing.T) {
	// Create a path with invalid UTF-8 (without embedding raw invalid bytes in source)
	invalidUTF8 := string([]byte{'/', 'a', 0xff, 'b'})

	tt := []struct {
		Name string
		Path string
		Want bool
	}{
		// Basics
		{Name: "root path", Path: "/", Want: false},
		{Name: "empty path", Path: "", Want: false},
		{Name: "leading slash", Path: "/some/path", Want: false},
		{Name: "ends with slash", Path: "some/path/", Want: false},

		// Double dots anywhere are invalid
		{Name: "double dots segment", Path: "../", Want: false},
		{Name: "double dots in middle segment", Path: "a/../b", Want: false},
		{Name: "double dots at end", Path: "/a/..", Want: false},
		{Name: "double dots in filename", Path: "/a/b..c", Want: false},
		{Name: "double dots prefix", Path: "/a/..b", Want: false},

		// Single dots segment are invalid
		{Name: "single dot segment not allowed", Path: "a/./b", Want: false},
		{Name: "single dot only", Path: ".", Want: false},

		// Double slashes invalid
		{Name: "double slash", Path: "a//b", Want: false},
		{Name: "leading double slash", Path: "//a", Want: false},

		// Forbidden characters
		{Name: "contains space", Path: "some path/file.ext", Want: false},
		{Name: "contains tab", Path: "some\tpath/file.ext", Want: false},
		{Name: "contains newline", Path: "some\npath/file.ext", Want: false},
		{Name: "contains carriage return", Path: "some\rpath/file.ext", Want: false},
		{Name: "contains backslash", Path: `some\path/file.ext`, Want: false},
		{Name: "contains hash", Path: "some/path#frag", Want: false},
		{Name: "contains question mark", Path: "some/path?x=1", Want: false},
		{Name: "contains tilde", Path: "some/~path/file.ext", Want: false},

		// Control chars / NUL
		{Name: "contains NUL", Path: "some\x00path/file.ext", Want: false},
		{Name: "contains DEL", Path: "some\x7fpath/file.ext", Want: false},
		{Name: "contains control char", Path: "some\x1fpath/file.ext", Want: false},

		// UTF-8 validity
		{Name: "invalid utf8", Path: invalidUTF8, Want: false},

		// Valid examples
		{Name: "simple valid", Path: "some/path/file.ext", Want: true},
		{Name: "hidden file valid", Path: ".hidden/file", Want: true},
		{Name: "underscores and dashes valid", Path: "some_path/with-dash/file_name.ext", Want: true},
		{Name: "percent is allowed as literal", Path: "a/%2e/b", Want: true},
		{Name: "upload path valid", Path: "owner@example.com/1700000000000-1a2b3c4d.jpg", Want: true},
		{Name: "unicode valid", Path: "привет/世界/file.ext", Want: true},
	}

	// sanity check for our generated invalid UTF-8 case
	if utf8.ValidString(invalidUTF8) {
		t.Fatalf("test setup error: invalidUTF8 is unexpectedly valid")
	}

	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			got := folio.IsValidPath(tc.Path)
			if got != tc.Want {
				expected := "valid"
				if !tc.Want {
					expected = "invalid"
				}
				t.Errorf("expected path %q to be %s, got %v", tc.Path, expected, got)
			}
		})
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "trims and keeps order", raw: "nature, wildlife ,  portrait", want: []string{"nature", "wildlife", "portrait"}},
		{name: "drops empty entries", raw: ",a,, ,b,", want: []string{"a", "b"}},
		{name: "keeps duplicates", raw: "owl, owl,fox", want: []string{"owl", "owl", "fox"}},
		{name: "empty input", raw: "", want: []string{}},
		{name: "only separators", raw: " , , ", want: []string{}},
		{name: "inner spaces kept", raw: "golden hour, night sky", want: []string{"golden hour", "night sky"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := folio.ParseTags(tt.raw)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTitleFromFilename(t *testing.T) {
	tests := map[string]string{
		"heron_at-dawn.jpg":        "heron at dawn",
		"/stills/Night  Train.png": "Night Train",
		"noext":                    "noext",
		"a__b--c.tar.gz":           "a b c.tar",
	}

	for in, want := range tests {
		assert.Equal(t, want, folio.TitleFromFilename(in), in)
	}
}

func TestBlobPath(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	t.Run("derives owner prefixed path", func(t *testing.T) {
		p, err := folio.BlobPath("owner@example.com", now, "Sunset.JPG")
		require.NoError(t, err)

		dir, name, ok := strings.Cut(p, "/")
		require.True(t, ok)
		assert.Equal(t, "owner@example.com", dir)
		assert.True(t, strings.HasPrefix(name, "1700000000123-"), name)
		assert.True(t, strings.HasSuffix(name, ".jpg"), name)
		assert.Len(t, name, len("1700000000123-")+8+len(".jpg"))
		assert.True(t, folio.IsValidPath(p))
	})

	t.Run("unique within the same millisecond", func(t *testing.T) {
		a, err := folio.BlobPath("owner", now, "a.png")
		require.NoError(t, err)
		b, err := folio.BlobPath("owner", now, "a.png")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("extension fallback", func(t *testing.T) {
		for _, name := range []string{"noext", "", "weird.$$$", "trailing."} {
			p, err := folio.BlobPath("owner", now, name)
			require.NoError(t, err, name)
			assert.True(t, strings.HasSuffix(p, ".bin"), p)
		}
	})

	t.Run("extension sanitized", func(t *testing.T) {
		p, err := folio.BlobPath("owner", now, "photo.Jp-G")
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(p, ".jpg"), p)
	})

	t.Run("rejects empty identity", func(t *testing.T) {
		_, err := folio.BlobPath("", now, "a.jpg")
		assert.ErrorIs(t, err, folio.ErrValidation)
	})

	t.Run("identities unusable as a segment get a stable uuid owner", func(t *testing.T) {
		for _, identity := range []string{"a b", "a/b", "..", "Jane Doe <jane@example.com>", "what?#"} {
			p, err := folio.BlobPath(identity, now, "a.jpg")
			require.NoError(t, err, identity)
			assert.True(t, folio.IsValidPath(p), p)

			dir, _, ok := strings.Cut(p, "/")
			require.True(t, ok)
			_, err = uuid.Parse(dir)
			assert.NoError(t, err, "owner segment %q for %q", dir, identity)

			again, err := folio.BlobPath(identity, now, "a.jpg")
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(again, dir+"/"), "owner segment is stable")
		}
	})

	t.Run("distinct identities get distinct owners", func(t *testing.T) {
		a, err := folio.BlobPath("a b", now, "a.jpg")
		require.NoError(t, err)
		b, err := folio.BlobPath("a  b", now, "a.jpg")
		require.NoError(t, err)

		dirA, _, _ := strings.Cut(a, "/")
		dirB, _, _ := strings.Cut(b, "/")
		assert.NotEqual(t, dirA, dirB)
	})
}

func TestPublicURLRoundTrip(t *testing.T) {
	bases := []string{
		"https://cdn.example.com/media",
		"https://cdn.example.com/media/",
		"http://localhost:5708/media",
	}

	for _, base := range bases {
		t.Run(base, func(t *testing.T) {
			u := folio.PublicURL(base, "owner/1-abcd1234.jpg")
			assert.Equal(t, strings.TrimSuffix(base, "/")+"/owner/1-abcd1234.jpg", u)

			p, err := folio.PathFromURL(base, u)
			require.NoError(t, err)
			assert.Equal(t, "owner/1-abcd1234.jpg", p)
		})
	}
}

func TestPathFromURL_Invalid(t *testing.T) {
	base := "https://cdn.example.com/media"

	tests := []struct {
		name string
		url  string
	}{
		{name: "foreign host", url: "https://other.example.com/media/owner/a.jpg"},
		{name: "base only", url: "https://cdn.example.com/media/"},
		{name: "traversal", url: "https://cdn.example.com/media/../secret"},
		{name: "empty", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := folio.PathFromURL(base, tt.url)
			require.Error(t, err)

			var verr *folio.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "image_url", verr.Field)
		})
	}
}
