// Package rfc5424 re-serializes a Record as an RFC 5424 syslog message.
package rfc5424

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flowgger-go/flowgger/pkg/record"
)

const defaultPriority = "<13>"

type Encoder struct{}

func New() Encoder { return Encoder{} }

func (Encoder) Encode(r record.Record) ([]byte, error) {
	var b strings.Builder

	if r.Facility != nil && r.Severity != nil {
		pri := (*r.Facility << 3) & 0xF8
		pri += *r.Severity & 0x7
		fmt.Fprintf(&b, "<%d>", pri)
	} else {
		b.WriteString(defaultPriority)
	}
	b.WriteByte('1')
	b.WriteByte(' ')

	t := record.TimeFromTS(r.TS)
	b.WriteString(t.Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')

	b.WriteString(r.Hostname)
	b.WriteByte(' ')

	if r.AppName != nil {
		b.WriteString(*r.AppName)
	} else {
		b.WriteByte('-')
	}
	b.WriteByte(' ')

	if r.ProcID != nil {
		b.WriteString(*r.ProcID)
	} else {
		b.WriteByte('-')
	}
	b.WriteByte(' ')

	if r.MsgID != nil {
		b.WriteString(*r.MsgID)
	} else {
		b.WriteByte('-')
	}
	b.WriteByte(' ')

	if len(r.SD) > 0 {
		for _, sd := range r.SD {
			writeSD(&b, sd)
		}
		b.WriteByte(' ')
	} else {
		b.WriteString("- ")
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
