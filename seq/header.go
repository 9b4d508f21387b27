package seq

import (
	"bytes"
)

// TrimCR drops a trailing carriage return, normalizing CRLF input lines.
func TrimCR(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\r' {
		return line[:n-1]
	}
	return line
}

// SplitHeader splits a header line (without its sentinel byte) into the
// record ID and the optional comment. The ID runs up to the first space or
// tab; the comment is the remainder with leading whitespace removed, nil
// if absent.
func SplitHeader(header []byte) (id, comment []byte) {
	i := bytes.IndexAny(header, " \t")
	if i < 0 {
		return header, nil
	}
	id = header[:i]
	comment = bytes.TrimLeft(header[i:], " \t")
	if len(comment) == 0 {
		comment = nil
	}
	return id, comment
}

// JoinLines concatenates the sequence lines of body into one contiguous
// slice, stripping line terminators. Empty lines vanish.
func JoinLines(body []byte) []byte {
	out := make([]byte, 0, len(body))
	for len(body) > 0 {
		line := body
		if i := bytes.IndexByte(body, '\n'); i >= 0 {
			line = body[:i]
			body = body[i+1:]
		} else {
			body = nil
		}
		out = append(out, TrimCR(line)...)
	}
	return out
}
