// Package passthrough re-emits a Record's original wire bytes unchanged,
// for relay topologies that decode only to route or filter, not to
// transform.
package passthrough

import (
	"strings"

	"github.com/flowgger-go/flowgger/pkg/encoder"
	"github.com/flowgger-go/flowgger/pkg/record"
)

// Encoder emits full_msg verbatim. An optional timestamp prefix, in the
// caller's Go time layout, is written before it when PrependTimeFormat is
// non-empty — this mirrors output.syslog_prepend_timestamp, the same
// config key rfc3164's encoder reads.
type Encoder struct {
	PrependTimeFormat string
	clock             record.Clock
}

func New() Encoder { return Encoder{} }

// NewWithPrepend builds an Encoder that writes clock.NowUTC() formatted
// with prependFormat before full_msg; an empty format disables the
// prefix.
func NewWithPrepend(prependFormat string) Encoder {
	return Encoder{PrependTimeFormat: prependFormat, clock: record.SystemClock{}}
}

func (e Encoder) Encode(r record.Record) ([]byte, error) {
	if r.FullMsg == nil {
		return nil, encoder.ErrMissingFullMsg
	}
	if e.PrependTimeFormat == "" {
		return []byte(*r.FullMsg), nil
	}

	clock := e.clock
	if clock == nil {
		clock = record.SystemClock{}
	}

	var b strings.Builder
	b.WriteString(clock.NowUTC().Format(e.PrependTimeFormat))
	b.WriteString(*r.FullMsg)
	return []byte(b.String()), nil
}
