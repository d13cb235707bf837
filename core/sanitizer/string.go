package sanitizer

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Trim removes leading and trailing whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// Email trims and lowercases an address so the same account is not spelled two ways.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RemoveControlChars drops control characters but keeps newlines and tabs.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// SingleLine joins all lines and collapses runs of whitespace into one space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(RemoveControlChars(s)), " ")
}

// Text collapses whitespace within each line, drops blank leading and
// trailing lines and normalizes line endings to \n.
func Text(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(RemoveControlChars(s), "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// MaxLength truncates s to at most n runes.
func MaxLength(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Filename reduces a client supplied file name to a safe base name. Directory
// parts, control characters and leading dots are removed; an empty result
// becomes "file".
func Filename(s string) string {
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Base(SingleLine(s))
	s = strings.TrimLeft(s, ".")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, s)
	if s == "" {
		return "file"
	}
	return MaxLength(s, 255)
}
