// Package ltsv re-serializes a Record as a single tab-separated LTSV line.
package ltsv

import (
	"strconv"
	"strings"

	"github.com/flowgger-go/flowgger/pkg/record"
)

// Encoder emits LTSV. Extra holds static key/value pairs appended to every
// record — mirrors output.ltsv_extra.
type Encoder struct {
	Extra map[string]string
}

func New() Encoder { return Encoder{} }

func NewWithExtra(extra map[string]string) Encoder { return Encoder{Extra: extra} }

func (e Encoder) Encode(r record.Record) ([]byte, error) {
	var b ltsvBuilder

	for _, sd := range r.SD {
		for _, p := range sd.Pairs {
			name := strings.TrimPrefix(p.Name, "_")
			b.insert(name, sdValueString(p.Value))
		}
	}

	for name, value := range e.Extra {
		b.insert(strings.TrimPrefix(name, "_"), value)
	}

	b.insert("host", r.Hostname)
	b.insert("time", strconv.FormatFloat(r.TS, 'f', -1, 64))
	if r.Msg != nil {
		b.insert("message", *r.Msg)
	}
	if r.FullMsg != nil {
		b.insert("full_message", *r.FullMsg)
	}
	if r.Severity != nil {
		b.insert("level", strconv.FormatUint(uint64(*r.Severity), 10))
	}
	if r.Facility != nil {
		b.insert("facility", strconv.FormatUint(uint64(*r.Facility), 10))
	}
	if r.AppName != nil {
		b.insert("appname", *r.AppName)
	}
	if r.ProcID != nil {
		b.insert("procid", *r.ProcID)
	}
	if r.MsgID != nil {
		b.insert("msgid", *r.MsgID)
	}

	return []byte(b.String()), nil
}

func sdValueString(v record.SDValue) string {
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

// ltsvBuilder escapes tabs/newlines out of keys and values the way the
// original encoder does: keys additionally turn ':' into '_' since ':' is
// the field separator.
type ltsvBuilder struct {
	b strings.Builder
}

func (lb *ltsvBuilder) insert(key, value string) {
	if lb.b.Len() > 0 {
		lb.b.WriteByte('\t')
	}
	lb.b.WriteString(escapeKey(key))
	lb.b.WriteByte(':')
	lb.b.WriteString(escapeValue(value))
}

func (lb *ltsvBuilder) String() string { return lb.b.String() }

func escapeKey(k string) string {
	if !strings.ContainsAny(k, "\n\t:") {
		return k
	}
	k = strings.ReplaceAll(k, "\n", " ")
	k = strings.ReplaceAll(k, "\t", " ")
	k = strings.ReplaceAll(k, ":", "_")
	return k
}

func escapeValue(v string) string {
	if !strings.ContainsAny(v, "\n\t") {
		return v
	}
	v = strings.ReplaceAll(v, "\t", " ")
	v = strings.ReplaceAll(v, "\n", " ")
	return v
}
