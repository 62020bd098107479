package folio

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// IsValidPath validates that a path string meets the requirements for a blob path.
// It checks that the path:
//   - is not empty, ".", or "/"
//   - is relative (does not start with "/")
//   - does not end with "/"
//   - does not contain ".." (path traversal)
//   - does not contain "//" (empty segments)
//   - does not contain invalid characters: \ ? # ~
//   - is valid UTF-8
//   - does not contain "." segments (/., /./, or ending with /.)
//   - does not contain null bytes, control characters (< 0x20), DEL (0x7f), or whitespace
//
// Returns true if the path is valid, false otherwise.
func IsValidPath(p string) bool {
	if p == "" || p == "/" || p == "." {
		return false
	}

	if p[0] == '/' {
		return false
	}

	if strings.HasSuffix(p, "/") {
		return false
	}

	if strings.Contains(p, "..") {
		return false
	}

	if strings.Contains(p, "//") {
		return false
	}

	if strings.ContainsAny(p, `\?#~`) {
		return false
	}

	if !utf8.ValidString(p) {
		return false
	}

	if p == "/." || strings.Contains(p, "/./") || strings.HasSuffix(p, "/.") {
		return false
	}

	for _, r := range p {
		if r == 0 || r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}

// ParseTags splits a comma-separated tag string into trimmed, non-empty tags.
// Order and duplicates are preserved.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// TitleFromFilename turns a local file name like "heron_at-dawn.jpg" into a
// default photo title, "heron at dawn".
func TitleFromFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}

// BlobPath derives the storage path for a new upload:
// <owner>/<unix-millis>-<random>.<ext>. The random segment keeps two
// uploads by the same identity in the same millisecond apart.
func BlobPath(identity string, now time.Time, filename string) (string, error) {
	if identity == "" {
		return "", fmt.Errorf("blob path: %w: empty owner identity", ErrValidation)
	}

	name := strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.New().String()[:8] + "." + fileExt(filename)
	p := ownerSegment(identity) + "/" + name
	if !IsValidPath(p) {
		return "", fmt.Errorf("blob path %q: %w", p, ErrValidation)
	}
	return p, nil
}

// ownerSegment is the identity itself when it is usable as a single path
// segment, and otherwise a name-based UUID of it, so every identity that can
// hold a role can also upload.
func ownerSegment(identity string) string {
	if !strings.Contains(identity, "/") && IsValidPath(identity) {
		return identity
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(identity)).String()
}

func fileExt(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	var b strings.Builder
	for _, r := range ext {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "bin"
	}
	return b.String()
}

// PublicURL joins a public base URL and a blob path.
func PublicURL(publicBase, p string) string {
	return strings.TrimRight(publicBase, "/") + "/" + p
}

// PathFromURL is the inverse of PublicURL. It fails when imageURL does not
// live under publicBase or does not carry a valid blob path.
func PathFromURL(publicBase, imageURL string) (string, error) {
	prefix := strings.TrimRight(publicBase, "/") + "/"
	p, ok := strings.CutPrefix(imageURL, prefix)
	if !ok || !IsValidPath(p) {
		return "", &ValidationError{Field: "image_url", Reason: "not a blob reference of this store"}
	}
	return p, nil
}
