package storage

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// AllowedExtensions are the accepted upload extensions, without the dot.
var AllowedExtensions = []string{"xlsx", "xls"}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// AllowedFile reports whether the name carries an accepted extension, ignoring case.
func AllowedFile(name string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// SecureFilename reduces a client supplied name to a safe basename: accents are folded
// to ASCII, path separators become spaces, whitespace becomes underscores, anything
// outside [A-Za-z0-9_.-] is dropped and leading dots or underscores are trimmed.
func SecureFilename(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	s, _, err := transform.String(t, name)
	if err != nil {
		s = name
	}
	s = strings.NewReplacer("/", " ", "\\", " ").Replace(s)
	s = strings.Join(strings.Fields(s), "_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")
	return strings.Trim(s, "._")
}
