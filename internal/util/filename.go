package util

import (
	"path"
	"strings"
)

// safeRune reports whether r may appear in a stored file name or shift id.
func safeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.' || r == '_' || r == '-':
		return true
	}
	return false
}

// SanitizeName reduces a client-supplied file name to a safe character set.
// Unsafe runes become '-'; an empty input yields "file".
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		if safeRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return "file"
	}
	return out
}

// SafeExt derives a lowercase file extension from the stored pathname or,
// failing that, the original name. Anything that does not look like a short
// alphanumeric extension falls back to ".jpg".
func SafeExt(pathname, originalName string) string {
	for _, candidate := range []string{pathname, originalName} {
		ext := strings.ToLower(path.Ext(candidate))
		if isPlainExt(ext) {
			return ext
		}
	}
	return ".jpg"
}

func isPlainExt(ext string) bool {
	if len(ext) < 2 || len(ext) > 6 || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
