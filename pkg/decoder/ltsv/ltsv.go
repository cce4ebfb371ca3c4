// Package ltsv decodes tab-separated "key:value" LTSV records. Four keys
// are reserved (time, host, message, level); everything else becomes a
// structured-data pair, optionally type-coerced by a configured schema.
package ltsv

import (
	"strconv"
	"strings"
	"time"

	"github.com/flowgger-go/flowgger/pkg/decoder"
	"github.com/flowgger-go/flowgger/pkg/record"
)

// FieldType names the coercion applied to a non-reserved LTSV value.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeBool   FieldType = "bool"
	TypeI64    FieldType = "i64"
	TypeU64    FieldType = "u64"
	TypeF64    FieldType = "f64"
)

// Schema maps a source field name to the type its value should be coerced
// to. Decoder is still safe to copy/share: Schema/Suffixes are read-only
// after construction.
type Schema map[string]FieldType

// Suffixes maps a FieldType to the name suffix appended when the source
// field name doesn't already end with it (e.g. "u64" -> "_u64" turns
// "counter" into "_counter_u64", after the "_" prefix every pair name gets).
type Suffixes map[FieldType]string

type Decoder struct {
	Schema   Schema
	Suffixes Suffixes
}

func New(schema Schema, suffixes Suffixes) Decoder {
	return Decoder{Schema: schema, Suffixes: suffixes}
}

const apacheTimeLayout = "02/Jan/2006:15:04:05 -0700"

func (d Decoder) Decode(raw []byte) (record.Record, error) {
	var r record.Record

	line := strings.TrimRight(string(raw), "\r\n")
	if line == "" {
		return r, decoder.ErrMalformed("empty line")
	}

	fields := strings.Split(line, "\t")
	var sd record.StructuredData
	haveTime, haveHost := false, false

	for _, f := range fields {
		idx := strings.IndexByte(f, ':')
		if idx < 0 {
			return r, decoder.ErrMalformed("missing ':' in field " + f)
		}
		key, val := f[:idx], f[idx+1:]

		switch key {
		case "time":
			ts, err := parseLTSVTimestamp(val)
			if err != nil {
				return r, decoder.ErrInvalidTimestamp(err.Error())
			}
			r.TS = ts
			haveTime = true
		case "host":
			if val == "" {
				return r, decoder.ErrMissingField("host")
			}
			r.Hostname = val
			haveHost = true
		case "message":
			r.Msg = record.Str(val)
		case "level":
			lvl, err := strconv.ParseUint(val, 10, 8)
			if err != nil || lvl > 7 {
				return r, decoder.ErrInvalidSeverity(val)
			}
			sev := uint8(lvl)
			r.Severity = &sev
		default:
			name, value, err := d.coerce(key, val)
			if err != nil {
				return r, err
			}
			sd.Pairs = append(sd.Pairs, record.SDPair{Name: name, Value: value})
		}
	}

	if !haveTime {
		r.TS = record.TSFromTime(time.Now().UTC())
	}
	if !haveHost {
		return r, decoder.ErrMissingField("host")
	}
	if len(sd.Pairs) > 0 {
		r.SD = []record.StructuredData{sd}
	}

	return r, nil
}

func (d Decoder) coerce(key, val string) (string, record.SDValue, error) {
	name := key
	if len(name) == 0 || name[0] != '_' {
		name = "_" + name
	}

	typ, hasSchema := d.Schema[key]
	if !hasSchema {
		return name, record.String(val), nil
	}

	if suffix, ok := d.Suffixes[typ]; ok && suffix != "" && !strings.HasSuffix(name, suffix) {
		name += suffix
	}

	switch typ {
	case TypeBool:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return name, record.SDValue{}, decoder.ErrInvalidValueType("bool: " + key)
		}
		return name, record.Bool(b), nil
	case TypeI64:
		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return name, record.SDValue{}, decoder.ErrInvalidValueType("i64: " + key)
		}
		return name, record.I64(i), nil
	case TypeU64:
		u, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return name, record.SDValue{}, decoder.ErrInvalidValueType("u64: " + key)
		}
		return name, record.U64(u), nil
	case TypeF64:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return name, record.SDValue{}, decoder.ErrInvalidValueType("f64: " + key)
		}
		return name, record.F64(f), nil
	default:
		return name, record.String(val), nil
	}
}

// parseLTSVTimestamp tries, in order: numeric unix seconds, RFC 3339,
// Apache-style "dd/Mon/YYYY:HH:MM:SS +zzzz" (optionally bracketed).
func parseLTSVTimestamp(val string) (float64, error) {
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, val); err == nil {
		return record.TSFromTime(t), nil
	}
	trimmed := strings.TrimPrefix(strings.TrimSuffix(val, "]"), "[")
	if t, err := time.Parse(apacheTimeLayout, trimmed); err == nil {
		return record.TSFromTime(t), nil
	}
	return 0, decoder.ErrMalformed("unrecognized timestamp " + val)
}
