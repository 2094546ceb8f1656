package chat

import "bytes"

var terminator = []byte("\r\n")

// LineFramer splits a raw byte stream into protocol lines. Bytes accumulate
// until the two-byte CRLF terminator appears; everything before it is one
// line. A terminator split across two Feed calls is still one terminator.
type LineFramer struct {
	buf []byte
}

// Feed appends p and returns every complete line now available, terminator
// stripped, in arrival order. Empty lines come back as empty strings; the
// caller decides whether to ignore them. Bytes after the last terminator
// stay buffered for the next call.
func (f *LineFramer) Feed(p []byte) []string {
	f.buf = append(f.buf, p...)
	var lines []string
	for {
		i := bytes.Index(f.buf, terminator)
		if i < 0 {
			break
		}
		lines = append(lines, string(f.buf[:i]))
		f.buf = f.buf[i+len(terminator):]
	}
	if len(f.buf) == 0 {
		f.buf = nil
	}
	return lines
}

// Pending reports how many bytes are buffered awaiting a terminator.
func (f *LineFramer) Pending() int { return len(f.buf) }
