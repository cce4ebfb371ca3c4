// Package avrorecord implements the self-framed binary record splitter
// that stands in for the original project's Cap'n Proto framing: a 4-byte
// big-endian length prefix followed by exactly that many bytes of Avro
// binary payload (see pkg/encoder/avrorecord). The original's capnp
// library distinguished a transient "Overloaded" condition (its reader's
// internal traversal limit hit mid-message) from a hard disconnect and
// retried the former after a short sleep; goavro's binary codec reads no
// such distinction from a length-prefixed stream, so every read error
// here — EOF, a short read, or a declared length past MaxFrameSize — is
// surfaced to the caller as terminal, which closes the connection the
// same way a disconnect does.
package avrorecord

import (
	"bufio"
	"encoding/binary"
	"io"
)

// MaxFrameSize bounds the declared length prefix to guard against a
// corrupt or hostile stream forcing an unbounded allocation.
const MaxFrameSize = 16 * 1024 * 1024

type Splitter struct{}

func New() Splitter { return Splitter{} }

func (Splitter) Next(r *bufio.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > MaxFrameSize {
		return nil, io.ErrUnexpectedEOF
	}

	frame := make([]byte, n)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, err
	}
	return frame, nil
}
