package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "a\nb\n", NormalizeText("a\r\nb"))
	assert.Equal(t, "a\nb\n", NormalizeText("a\rb"))
	assert.Equal(t, "a\nb\n", NormalizeText("a\nb\n"))
	assert.Equal(t, "\n", NormalizeText(""))
}

func TestIsBinaryBytes(t *testing.T) {
	assert.False(t, IsBinaryBytes([]byte("hello\nworld\n")))
	assert.True(t, IsBinaryBytes([]byte{0x00, 0x01, 0x02}))

	var ctrlHeavy []byte
	for i := 0; i < 100; i++ {
		ctrlHeavy = append(ctrlHeavy, 0x01)
	}
	assert.True(t, IsBinaryBytes(ctrlHeavy))

	assert.False(t, IsBinaryBytes(nil))

	var nonASCIIHeavy []byte
	for i := 0; i < 100; i++ {
		nonASCIIHeavy = append(nonASCIIHeavy, 0xC3, 0xA9) // "é" repeated, no newline
	}
	assert.True(t, IsBinaryBytes(nonASCIIHeavy))

	withNewline := append(append([]byte{}, nonASCIIHeavy...), '\n')
	assert.False(t, IsBinaryBytes(withNewline))
}

func TestIsBinaryPath_ExtensionShortCircuit(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "image.png")
	require.NoError(t, os.WriteFile(p, []byte("not actually binary but ext says so"), 0o644))
	assert.True(t, IsBinaryPath(p))
}

func TestIsBinaryPath_SniffsContent(t *testing.T) {
	dir := t.TempDir()
	textPath := filepath.Join(dir, "file.go")
	require.NoError(t, os.WriteFile(textPath, []byte("package main\n"), 0o644))
	assert.False(t, IsBinaryPath(textPath))

	binPath := filepath.Join(dir, "file.dat")
	require.NoError(t, os.WriteFile(binPath, []byte{0x00, 0x10, 0x20}, 0o644))
	assert.True(t, IsBinaryPath(binPath))
}

func TestIsBinaryPath_MissingFileIsBinary(t *testing.T) {
	assert.True(t, IsBinaryPath("/does/not/exist"))
}

func TestExcerpt_UnderLimitReturnsWhole(t *testing.T) {
	data := []byte("short content")
	assert.Equal(t, string(data), Excerpt(data, 1000, 100))
}

func TestExcerpt_OverLimitTruncates(t *testing.T) {
	data := make([]byte, 1000)
	for i := range data {
		data[i] = 'a'
	}
	out := Excerpt(data, 200, 50)
	assert.True(t, strings.Contains(out, "<<EXCERPT: file too large"))
	assert.True(t, strings.Contains(out, "1000 bytes total"))
}
