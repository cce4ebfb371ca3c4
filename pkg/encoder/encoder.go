// Package encoder defines the Encoder interface implemented by each wire
// format the relay can re-serialize a Record into.
package encoder

import (
	"errors"

	"github.com/flowgger-go/flowgger/pkg/record"
)

// Encoder turns a Record into wire bytes. Implementations are immutable
// value types, safe to share across goroutines.
type Encoder interface {
	Encode(r record.Record) ([]byte, error)
}

// ErrMissingFullMsg is returned by the passthrough encoder when the record
// carries no FullMsg to emit verbatim.
var ErrMissingFullMsg = errors.New("encoder: record has no full_msg to pass through")
