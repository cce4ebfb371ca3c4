// Package splitter de-frames a buffered byte stream into discrete record
// buffers for the decode -> encode -> enqueue pipeline stage.
package splitter

import (
	"bufio"
	"errors"
)

// Splitter owns the de-framing loop for one connection's byte stream. Next
// blocks until a full frame is available, returning it with any framing
// delimiter stripped. It returns io.EOF when the stream ends cleanly
// between frames, and any other error is fatal to the connection.
type Splitter interface {
	Next(r *bufio.Reader) ([]byte, error)
}

// ErrMalformedLength is returned by the syslen splitter when the octet
// count prefix is not a valid ASCII decimal number; the caller must close
// the connection on this error.
var ErrMalformedLength = errors.New("splitter: malformed octet-counting length prefix")

// SkipFunc is invoked by splitters that silently discard a malformed frame
// (e.g. non-UTF-8 line) instead of treating it as fatal, so callers can log
// the occurrence. reason is a short machine-readable tag.
type SkipFunc func(reason string, raw []byte)
