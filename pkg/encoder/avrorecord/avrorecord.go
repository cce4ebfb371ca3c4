// Package avrorecord re-serializes a Record as a length-prefixed Avro
// binary frame. It stands in for the original project's fixed Cap'n Proto
// schema: no Cap'n Proto binding exists in the dependency pack, so the same
// field set and sentinel/flattening semantics are carried over onto
// goavro's binary codec instead. The format is self-framed — a 4-byte
// big-endian length prefix followed by one Avro binary record — so no
// merger is needed downstream, matching the original's capnp framing.
package avrorecord

import (
	"encoding/binary"
	"fmt"

	"github.com/linkedin/goavro/v2"

	"github.com/flowgger-go/flowgger/pkg/record"
)

// FacilityMissing and SeverityMissing are the sentinel values written when
// a record carries no facility/severity, mirroring the original schema's
// u8 sentinel convention.
const (
	FacilityMissing = 0xFF
	SeverityMissing = 0xFF
)

// SchemaJSON is the Avro record schema shared by the encoder and its
// symmetric decoder (pkg/decoder/avrorecord).
const SchemaJSON = `{
  "type": "record",
  "name": "LogRecord",
  "fields": [
    {"name": "ts", "type": "double"},
    {"name": "hostname", "type": "string"},
    {"name": "facility", "type": "int"},
    {"name": "severity", "type": "int"},
    {"name": "appname", "type": ["null", "string"], "default": null},
    {"name": "procid", "type": ["null", "string"], "default": null},
    {"name": "msgid", "type": ["null", "string"], "default": null},
    {"name": "msg", "type": ["null", "string"], "default": null},
    {"name": "full_msg", "type": ["null", "string"], "default": null},
    {"name": "sd_id", "type": ["null", "string"], "default": null},
    {"name": "pairs", "type": {"type": "array", "items": {
      "type": "record", "name": "Pair", "fields": [
        {"name": "key", "type": "string"},
        {"name": "value", "type": ["null", "string", "boolean", "double", "long"]}
      ]
    }}, "default": []},
    {"name": "extra", "type": {"type": "array", "items": {
      "type": "record", "name": "ExtraPair", "fields": [
        {"name": "key", "type": "string"},
        {"name": "value", "type": "string"}
      ]
    }}, "default": []}
  ]
}`

// Encoder emits Avro-framed records. Extra holds static key/value pairs
// written into the record's extra list — mirrors output.capnp_extra.
type Encoder struct {
	Extra map[string]string
	codec *goavro.Codec
}

func New() Encoder {
	codec, err := goavro.NewCodec(SchemaJSON)
	if err != nil {
		panic(fmt.Sprintf("avrorecord: invalid embedded schema: %v", err))
	}
	return Encoder{codec: codec}
}

func NewWithExtra(extra map[string]string) Encoder {
	e := New()
	e.Extra = extra
	return e
}

func (e Encoder) Encode(r record.Record) ([]byte, error) {
	native := map[string]interface{}{
		"ts":       r.TS,
		"hostname": r.Hostname,
		"facility": facilityOf(r),
		"severity": severityOf(r),
		"appname":  optString(r.AppName),
		"procid":   optString(r.ProcID),
		"msgid":    optString(r.MsgID),
		"msg":      optString(r.Msg),
		"full_msg": optString(r.FullMsg),
		"sd_id":    nil,
		"pairs":    []interface{}{},
		"extra":    []interface{}{},
	}

	// The avro schema keeps the original capnp format's single sd_id
	// limitation, but every block's pairs are flattened under it — only
	// the first block's sd_id survives, not its pairs alone.
	if len(r.SD) > 0 {
		if sd := r.SD[0].SDID; sd != nil {
			native["sd_id"] = optString(sd)
		}
		var pairs []interface{}
		for _, sd := range r.SD {
			for _, p := range sd.Pairs {
				pairs = append(pairs, map[string]interface{}{
					"key":   p.Name,
					"value": sdValue(p.Value),
				})
			}
		}
		if pairs == nil {
			pairs = []interface{}{}
		}
		native["pairs"] = pairs
	}

	if len(e.Extra) > 0 {
		extra := make([]interface{}, 0, len(e.Extra))
		for k, v := range e.Extra {
			extra = append(extra, map[string]interface{}{"key": k, "value": v})
		}
		native["extra"] = extra
	}

	body, err := e.codec.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("avrorecord: encode: %w", err)
	}

	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(out, uint32(len(body)))
	copy(out[4:], body)
	return out, nil
}

func facilityOf(r record.Record) int32 {
	if r.Facility == nil {
		return FacilityMissing
	}
	return int32(*r.Facility)
}

func severityOf(r record.Record) int32 {
	if r.Severity == nil {
		return SeverityMissing
	}
	return int32(*r.Severity)
}

func optString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return goavro.Union("string", *s)
}

func sdValue(v record.SDValue) interface{} {
	switch v.Kind {
	case record.KindString:
		return goavro.Union("string", v.Str)
	case record.KindBool:
		return goavro.Union("boolean", v.Bool)
	case record.KindF64:
		return goavro.Union("double", v.F64)
	case record.KindI64:
		return goavro.Union("long", v.I64)
	case record.KindU64:
		return goavro.Union("long", int64(v.U64))
	default:
		return nil
	}
}
