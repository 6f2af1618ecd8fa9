// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
)

var (
	// Matches path separators (replaced with spaces before collapsing).
	pathSeparatorRe = regexp.MustCompile(`[/\\]+`)
	// Matches whitespace runs (collapsed to a single underscore).
	whitespaceRe = regexp.MustCompile(`\s+`)
	// Matches everything outside the safe filename alphabet.
	unsafeCharRe = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
)

// Reserved device names on Windows; a sanitized filename must not collide
// with them even with an extension attached.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// SecureFilename reduces a filename to a form that is safe to pass to a
// filesystem or Content-Disposition header: no path separators, no relative
// path components, ASCII-safe characters only.
//
// Sanitization rules:
//  1. Replace path separators with spaces
//  2. Collapse whitespace runs into single underscores
//  3. Drop every character outside [A-Za-z0-9_.-]
//  4. Trim leading/trailing dots, dashes and underscores
//  5. Prefix Windows reserved device names with an underscore
//
// Examples:
//
//	"exam.pdf"          → "exam.pdf"
//	"../../etc/passwd"  → "etc_passwd"
//	"my exam 2021.pdf"  → "my_exam_2021.pdf"
//	"CON.txt"           → "_CON.txt"
func SecureFilename(name string) string {
	s := pathSeparatorRe.ReplaceAllString(name, " ")
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), "_")
	s = unsafeCharRe.ReplaceAllString(s, "")
	s = strings.Trim(s, "._-")

	base, _, _ := strings.Cut(s, ".")
	if windowsReservedNames[strings.ToUpper(base)] {
		s = "_" + s
	}

	return s
}

// FilenameSecure reports whether name is non-empty and survives
// sanitization unchanged. Documents must be created with filenames that
// already pass this predicate.
func FilenameSecure(name string) bool {
	return name != "" && SecureFilename(name) == name
}
