// Package filex contains filesystem helpers: directory creation and the
// path-segment sanitizer used wherever a caller-supplied name ends up in a
// filesystem path or object key.
package filex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxSegmentLength bounds a sanitized segment.
const MaxSegmentLength = 128

// ErrUnsafeSegment is returned when nothing usable is left after sanitizing.
var ErrUnsafeSegment = errors.New("unsafe path segment")

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// SanitizeSegment turns raw into a single safe path segment. Parent-directory
// sequences are removed, every character outside [a-zA-Z0-9_.-] is dropped and
// the result is cut to MaxSegmentLength. An empty result, "." or ".." is
// rejected with ErrUnsafeSegment.
//
//	SanitizeSegment("../test/user!@#")     // "testuser"
//	SanitizeSegment("../../report!@#.txt") // "report.txt"
//	SanitizeSegment("../../")              // ErrUnsafeSegment
func SanitizeSegment(raw string) (string, error) {
	s := strings.ReplaceAll(raw, "..", "")
	s = unsafeChars.ReplaceAllString(s, "")
	if len(s) > MaxSegmentLength {
		s = s[:MaxSegmentLength]
	}
	if s == "" || s == "." || s == ".." {
		return "", fmt.Errorf("%w: %q", ErrUnsafeSegment, raw)
	}
	return s, nil
}

// Within joins segments under root and fails if the result escapes root.
func Within(root string, segments ...string) (string, error) {
	cleanRoot := filepath.Clean(root)
	p := filepath.Join(append([]string{cleanRoot}, segments...)...)
	rel, err := filepath.Rel(cleanRoot, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes %s", ErrUnsafeSegment, p, cleanRoot)
	}
	return p, nil
}

// EnsureDir creates dir (and parents) when missing and returns it.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}
