package util

import (
	"errors"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxFileNameBytes keeps generated object keys well under the 1024-byte S3 key limit.
const maxFileNameBytes = 200

// ErrInvalidFileName indicates a name that cannot become an object key segment.
var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName turns a client-supplied name into a single object key segment:
// separators become '_', control characters are dropped, runs of whitespace collapse
// to one space, and long names are cut while keeping the extension.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", ErrInvalidFileName
	}

	var b strings.Builder
	space := false
	for _, r := range strings.TrimSpace(name) {
		switch {
		case r == '/' || r == '\\':
			b.WriteRune('_')
			space = false
		case unicode.IsSpace(r):
			if !space {
				b.WriteRune(' ')
			}
			space = true
		case unicode.IsControl(r) || r == utf8.RuneError:
		default:
			b.WriteRune(r)
			space = false
		}
	}

	s := truncateKeepingExt(b.String(), maxFileNameBytes)
	if s == "" || s == "." {
		return "", ErrInvalidFileName
	}
	return s, nil
}

func truncateKeepingExt(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	ext := path.Ext(s)
	if len(ext) >= limit {
		ext = ""
	}
	stem := s[:limit-len(ext)]
	for !utf8.ValidString(stem) {
		stem = stem[:len(stem)-1]
	}
	return strings.TrimSpace(stem) + ext
}
