package fileutil

import (
	"path/filepath"
	"strings"
	"unicode"
)

var unsafeNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// OutputStem derives the base name for transcript files from a media name:
// the directory and extension are dropped and filesystem-unsafe characters
// replaced. Names that reduce to nothing become "transcript".
func OutputStem(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, base)
	base = strings.TrimSpace(unsafeNameReplacer.Replace(base))
	base = strings.TrimLeft(base, ".")
	if base == "" {
		return "transcript"
	}
	return base
}
