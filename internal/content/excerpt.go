package content

import "fmt"

// Excerpt truncates data to a head+tail view when it exceeds maxBytes,
// inserting a marker that tells the model how much was omitted. headTail
// bytes are kept from each end. Used to bound per-file prompt size for
// large files without silently hiding the omission from the model.
func Excerpt(data []byte, maxBytes, headTail int) string {
	if len(data) <= maxBytes {
		return string(data)
	}
	head := data[:headTail]
	tail := data[len(data)-headTail:]
	omitted := len(data) - 2*headTail
	return fmt.Sprintf("%s\n<<EXCERPT: file too large (%d bytes total, %d bytes omitted)>>\n%s",
		head, len(data), omitted, tail)
}
