package filex

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"../test/user!@#", "testuser"},
		{"../../report!@#.txt", "report.txt"},
		{"alice", "alice"},
		{"crash-2024-01-02_10.11.12-fml.txt", "crash-2024-01-02_10.11.12-fml.txt"},
		{"Steve_01", "Steve_01"},
		{"a b\tc", "abc"},
	}
	for _, tt := range tests {
		got, err := SanitizeSegment(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSanitizeSegment_Rejects(t *testing.T) {
	for _, in := range []string{"", "../../", "!@#$%^", ".", "...", "/", "..\\.."} {
		_, err := SanitizeSegment(in)
		assert.True(t, errors.Is(err, ErrUnsafeSegment), "input %q: %v", in, err)
	}
}

func TestSanitizeSegment_Truncates(t *testing.T) {
	got, err := SanitizeSegment(strings.Repeat("a", 300))
	require.NoError(t, err)
	assert.Len(t, got, MaxSegmentLength)
}

func TestWithin(t *testing.T) {
	root := t.TempDir()

	p, err := Within(root, "alice", "crash.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "alice", "crash.txt"), p)

	_, err = Within(root, "..", "etc")
	assert.ErrorIs(t, err, ErrUnsafeSegment)
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "crash", "alice")

	got, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	fi, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	_, err = EnsureDir(dir)
	require.NoError(t, err)
}

func TestEnsureDir_Error(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := EnsureDir(filepath.Join(file, "sub"))
	assert.Error(t, err)
}
