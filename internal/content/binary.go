package content

import (
	"os"
	"path/filepath"
	"strings"
)

// SniffBytes is the maximum number of leading bytes inspected when
// deciding whether a file is binary.
const SniffBytes = 4096

// BinaryExts short-circuits the sniff for well-known binary file types.
var BinaryExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".webp": true, ".avif": true,
	".tar": true, ".gz": true, ".tgz": true, ".zip": true, ".7z": true,
	".rar": true, ".xz": true, ".bz2": true, ".zst": true,
	".pdf": true, ".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	".mp3": true, ".aac": true, ".flac": true, ".wav": true,
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".webm": true,
	".bin": true, ".exe": true, ".dll": true, ".dylib": true, ".so": true, ".class": true,
}

// IsBinaryPath reports whether the file at path looks binary: a known
// binary extension short-circuits to true; otherwise the leading
// SniffBytes are read and judged NUL-byte or control-density heuristics.
// Unreadable files are conservatively treated as binary.
func IsBinaryPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if BinaryExts[ext] {
		return true
	}
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()
	buf := make([]byte, SniffBytes)
	n, _ := f.Read(buf)
	return IsBinaryBytes(buf[:n])
}

// nonASCIINoNewlineRatio is the threshold for the "very-high non-ASCII
// with no newline" binary condition: a single-line buffer where more than
// 30% of bytes are outside the 7-bit ASCII range (e.g. undetected UTF-16 or a
// base64/compressed blob with no embedded line breaks).
const nonASCIINoNewlineRatio = 0.30

// IsBinaryBytes applies the NUL-byte, control-density, and no-newline
// non-ASCII-density heuristics directly to an in-memory buffer (the
// leading slice of a file, or a patch's decoded body before it is
// written to disk).
func IsBinaryBytes(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	nonASCII, hasNewline := 0, false
	for _, b := range data {
		if b == 0x00 {
			return true
		}
		if b == '\n' {
			hasNewline = true
		}
		if b > 0x7F {
			nonASCII++
		}
	}
	ctrl := 0
	for _, b := range data {
		if b < 32 && b != 9 && b != 10 && b != 13 {
			ctrl++
		}
	}
	if float64(ctrl)/float64(len(data)) > 0.30 {
		return true
	}
	return !hasNewline && float64(nonASCII)/float64(len(data)) > nonASCIINoNewlineRatio
}
