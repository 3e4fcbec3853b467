// Package crashreports ingests crash-report uploads from launcher clients.
//
// A report passes, in order: client validation, chunk reassembly, rate
// limiting, size validation, content validation, path-safe persistence and
// bookkeeping. Old reports are purged by a background sweep.
package crashreports

import (
	"fmt"
	"strings"
	"time"
)

const fileTimeLayout = "2006-01-02_15.04.05"

// FilePrefix starts every generated report name. Retention only touches
// objects carrying it.
const FilePrefix = "crash-"

// Signatures are the substrings that identify a crash dump. A report must
// contain at least one.
var Signatures = []string{
	"Minecraft Crash Report",
	"java.lang.Exception",
	"at net.minecraft",
	"at net.minecraftforge",
}

// Report is one crash-report request, or one part of a chunked upload.
type Report struct {
	// Username is the submitter. It comes from the authenticated session
	// when there is one.
	Username      string
	Authenticated bool
	ClientIP      string

	FileName         string
	Content          []byte
	GameVersion      string
	ModLoaderVersion string

	IsPart     bool
	IsLastPart bool
	// RequestID ties the parts of a chunked upload together.
	RequestID string

	// KeepFileName stores the report under the sanitized FileName instead of
	// a generated one.
	KeepFileName bool
}

// Result describes an accepted request. Pending means more parts are
// expected and nothing was stored yet.
type Result struct {
	Pending  bool
	Username string
	Path     string
}

func hasSignature(content string) bool {
	for _, s := range Signatures {
		if strings.Contains(content, s) {
			return true
		}
	}
	return false
}

// generateFileName returns crash-<timestamp>.txt, tagged -fml when the
// client-side name mentions fml.
func generateFileName(original string, t time.Time) string {
	ts := t.Format(fileTimeLayout)
	if strings.Contains(original, "fml") {
		return FilePrefix + ts + "-fml.txt"
	}
	return FilePrefix + ts + ".txt"
}

func enrich(r *Report, content []byte, project string, t time.Time) []byte {
	var b strings.Builder
	b.WriteString("// Crash report submitted via launcher\n")
	fmt.Fprintf(&b, "// Submitted by: %s\n", r.Username)
	fmt.Fprintf(&b, "// Client IP: %s\n", r.ClientIP)
	fmt.Fprintf(&b, "// Submission time: %s\n", t.Format(time.RFC3339))
	if project != "" {
		fmt.Fprintf(&b, "// Project: %s\n", project)
	}
	if r.GameVersion != "" {
		fmt.Fprintf(&b, "// Game version: %s\n", r.GameVersion)
	}
	if r.ModLoaderVersion != "" {
		fmt.Fprintf(&b, "// Mod loader version: %s\n", r.ModLoaderVersion)
	}
	b.WriteString("\n")
	b.Write(content)
	return []byte(b.String())
}
