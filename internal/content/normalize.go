// Package content holds the path-agnostic text/binary utilities shared by
// the applier, the scanner, and the orchestrator: EOL normalization, binary
// sniffing, and head+tail excerpting. Base64 decoding of patch bodies lives
// in the patch package, not here.
package content

import "strings"

// NormalizeText converts CRLF/CR line endings to LF and guarantees a
// trailing newline. Both writes and equality checks route through this so
// an "already equal" update is reliably detected and skipped.
func NormalizeText(s string) string {
	t := strings.ReplaceAll(s, "\r\n", "\n")
	t = strings.ReplaceAll(t, "\r", "\n")
	if !strings.HasSuffix(t, "\n") {
		t += "\n"
	}
	return t
}
