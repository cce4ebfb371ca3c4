// Package rfc3164 re-serializes a Record as a legacy BSD syslog (RFC 3164)
// message, with a non-standard structured-data extension preserved from the
// decoder side for round-tripping.
package rfc3164

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flowgger-go/flowgger/pkg/record"
)

// Encoder emits RFC 3164 formatted messages. An optional timestamp prefix,
// in the caller's Go time layout, is written before the record itself when
// PrependTimeFormat is non-empty — this mirrors output.syslog_prepend_timestamp.
type Encoder struct {
	PrependTimeFormat string
	clock             record.Clock
}

// New builds an Encoder. prependFormat is a Go time layout string (see
// time.Format); an empty string disables the prefix.
func New(prependFormat string) Encoder {
	return Encoder{PrependTimeFormat: prependFormat, clock: record.SystemClock{}}
}

func (e Encoder) Encode(r record.Record) ([]byte, error) {
	var b strings.Builder

	if e.PrependTimeFormat != "" {
		clock := e.clock
		if clock == nil {
			clock = record.SystemClock{}
		}
		b.WriteString(clock.NowUTC().Format(e.PrependTimeFormat))
	}

	if r.Facility != nil && r.Severity != nil {
		pri := (*r.Facility << 3) & 0xF8
		pri += *r.Severity & 0x7
		fmt.Fprintf(&b, "<%d>", pri)
	}

	t := record.TimeFromTS(r.TS)
	b.WriteString(t.Format("Jan _2 15:04:05"))
	b.WriteByte(' ')

	b.WriteString(r.Hostname)
	b.WriteByte(' ')

	if r.AppName != nil {
		b.WriteString(*r.AppName)
	}
	if r.ProcID != nil {
		fmt.Fprintf(&b, "[%s]:", *r.ProcID)
		b.WriteByte(' ')
	}
	if r.MsgID != nil {
		b.WriteString(*r.MsgID)
		b.WriteByte(' ')
	}

	if len(r.SD) > 0 {
		for _, sd := range r.SD {
			writeSD(&b, sd)
		}
		b.WriteByte(' ')
	}

	if r.Msg != nil {
		b.WriteString(*r.Msg)
	}

	return []byte(b.String()), nil
}

func writeSD(b *strings.Builder, sd record.StructuredData) {
	b.WriteByte('[')
	if sd.SDID != nil {
		b.WriteString(*sd.SDID)
	}
	for _, p := range sd.Pairs {
		name := strings.TrimPrefix(p.Name, "_")
		if p.Value.Kind == record.KindNull {
			fmt.Fprintf(b, " %s", name)
			continue
		}
		fmt.Fprintf(b, " %s=\"%s\"", name, valueString(p.Value))
	}
	b.WriteByte(']')
}

func valueString(v record.SDValue) string {
	switch v.Kind {
	case record.KindString:
		return v.Str
	case record.KindBool:
		return strconv.FormatBool(v.Bool)
	case record.KindF64:
		return strconv.FormatFloat(v.F64, 'f', -1, 64)
	case record.KindI64:
		return strconv.FormatInt(v.I64, 10)
	case record.KindU64:
		return strconv.FormatUint(v.U64, 10)
	default:
		return ""
	}
}
