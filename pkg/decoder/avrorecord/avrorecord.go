// Package avrorecord decodes the Avro binary frames produced by
// pkg/encoder/avrorecord, completing the decode/encode symmetry the
// original project left implicit: chaining two relays over the "capnp"
// wire format requires decoding it back into a Record just like any other
// input format.
package avrorecord

import (
	"fmt"

	"github.com/linkedin/goavro/v2"

	"github.com/flowgger-go/flowgger/pkg/decoder"
	avroenc "github.com/flowgger-go/flowgger/pkg/encoder/avrorecord"
	"github.com/flowgger-go/flowgger/pkg/record"
)

type Decoder struct {
	codec *goavro.Codec
}

func New() Decoder {
	codec, err := goavro.NewCodec(avroenc.SchemaJSON)
	if err != nil {
		panic(fmt.Sprintf("avrorecord: invalid embedded schema: %v", err))
	}
	return Decoder{codec: codec}
}

func (d Decoder) Decode(raw []byte) (record.Record, error) {
	native, _, err := d.codec.NativeFromBinary(raw)
	if err != nil {
		return record.Record{}, decoder.ErrMalformed(err.Error())
	}
	m, ok := native.(map[string]interface{})
	if !ok {
		return record.Record{}, decoder.ErrMalformed("not a record")
	}

	r := record.Record{
		TS:       m["ts"].(float64),
		Hostname: m["hostname"].(string),
		AppName:  unwrapString(m["appname"]),
		ProcID:   unwrapString(m["procid"]),
		MsgID:    unwrapString(m["msgid"]),
		Msg:      unwrapString(m["msg"]),
		FullMsg:  unwrapString(m["full_msg"]),
	}

	if r.Hostname == "" {
		return record.Record{}, decoder.ErrMissingField("hostname")
	}

	if f := int32ValueOf(m["facility"]); f != avroenc.FacilityMissing {
		v := uint8(f)
		r.Facility = &v
	}
	if sv := int32ValueOf(m["severity"]); sv != avroenc.SeverityMissing {
		v := uint8(sv)
		r.Severity = &v
	}

	sdID := unwrapString(m["sd_id"])
	pairs := decodePairs(m["pairs"])
	if sdID != nil || len(pairs) > 0 {
		r.SD = []record.StructuredData{{SDID: sdID, Pairs: pairs}}
	}

	return r, nil
}

func int32ValueOf(v interface{}) int32 {
	switch n := v.(type) {
	case int32:
		return n
	case int:
		return int32(n)
	default:
		return 0
	}
}

func unwrapString(v interface{}) *string {
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	s, ok := m["string"].(string)
	if !ok {
		return nil
	}
	return &s
}

func decodePairs(v interface{}) []record.SDPair {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	pairs := make([]record.SDPair, 0, len(items))
	for _, item := range items {
		pm, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		key, _ := pm["key"].(string)
		pairs = append(pairs, record.SDPair{Name: key, Value: unwrapSDValue(pm["value"])})
	}
	return pairs
}

func unwrapSDValue(v interface{}) record.SDValue {
	m, ok := v.(map[string]interface{})
	if !ok {
		return record.Null()
	}
	for branch, val := range m {
		switch branch {
		case "string":
			return record.String(val.(string))
		case "boolean":
			return record.Bool(val.(bool))
		case "double":
			return record.F64(val.(float64))
		case "long":
			return record.I64(val.(int64))
		}
	}
	return record.Null()
}
