// Package gelf decodes Graylog Extended Log Format JSON objects into
// Records. Any key besides the recognized GELF fields becomes a
// structured-data pair, prefixed with "_" if it doesn't already carry one.
// Those pairs come out in Go map iteration order, not in the order the keys
// appear in the JSON object.
package gelf

import (
	"encoding/json"
	"time"

	"github.com/flowgger-go/flowgger/pkg/decoder"
	"github.com/flowgger-go/flowgger/pkg/record"
)

type Decoder struct{}

func New() Decoder { return Decoder{} }

func (Decoder) Decode(raw []byte) (record.Record, error) {
	var r record.Record

	// Unlike RFC 5424, GELF does not tolerate a leading BOM: it is just
	// invalid JSON from the parser's point of view.
	if len(raw) >= 3 && raw[0] == 0xEF && raw[1] == 0xBB && raw[2] == 0xBF {
		return r, decoder.ErrUnsupportedBOM()
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return r, decoder.ErrMalformed("invalid json: " + err.Error())
	}

	hostRaw, ok := obj["host"]
	if !ok {
		return r, decoder.ErrMissingField("host")
	}
	var host string
	if err := json.Unmarshal(hostRaw, &host); err != nil || host == "" {
		return r, decoder.ErrMissingField("host")
	}
	r.Hostname = host
	delete(obj, "host")

	if verRaw, ok := obj["version"]; ok {
		var version string
		if err := json.Unmarshal(verRaw, &version); err != nil {
			return r, decoder.ErrInvalidValueType("version")
		}
		if version != "1.0" && version != "1.1" {
			return r, decoder.ErrUnsupportedVersion(version)
		}
		delete(obj, "version")
	}

	if tsRaw, ok := obj["timestamp"]; ok {
		var ts float64
		if err := json.Unmarshal(tsRaw, &ts); err != nil {
			return r, decoder.ErrInvalidTimestamp("timestamp not numeric")
		}
		r.TS = ts
		delete(obj, "timestamp")
	} else {
		r.TS = record.TSFromTime(time.Now().UTC())
	}

	if smRaw, ok := obj["short_message"]; ok {
		var sm string
		if err := json.Unmarshal(smRaw, &sm); err != nil {
			return r, decoder.ErrInvalidValueType("short_message")
		}
		r.Msg = record.Str(sm)
		delete(obj, "short_message")
	}

	if fmRaw, ok := obj["full_message"]; ok {
		var fm string
		if err := json.Unmarshal(fmRaw, &fm); err != nil {
			return r, decoder.ErrInvalidValueType("full_message")
		}
		r.FullMsg = record.Str(fm)
		delete(obj, "full_message")
	}

	if lvlRaw, ok := obj["level"]; ok {
		var lvl float64
		if err := json.Unmarshal(lvlRaw, &lvl); err != nil {
			return r, decoder.ErrInvalidSeverity("level not numeric")
		}
		if lvl < 0 || lvl > 7 {
			return r, decoder.ErrInvalidSeverity("level out of range")
		}
		sev := uint8(lvl)
		r.Severity = &sev
		delete(obj, "level")
	}

	if len(obj) > 0 {
		sd := record.StructuredData{}
		for k, v := range obj {
			val, err := extraValue(v)
			if err != nil {
				return r, err
			}
			name := k
			if len(name) == 0 || name[0] != '_' {
				name = "_" + name
			}
			sd.Pairs = append(sd.Pairs, record.SDPair{Name: name, Value: val})
		}
		r.SD = []record.StructuredData{sd}
	}

	return r, nil
}

func extraValue(raw json.RawMessage) (record.SDValue, error) {
	var probe interface{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return record.SDValue{}, decoder.ErrInvalidValueType("unparsable extra field")
	}
	switch v := probe.(type) {
	case nil:
		return record.Null(), nil
	case bool:
		return record.Bool(v), nil
	case string:
		return record.String(v), nil
	case float64:
		if v == float64(int64(v)) {
			if v >= 0 {
				return record.U64(uint64(v)), nil
			}
			return record.I64(int64(v)), nil
		}
		return record.F64(v), nil
	default:
		return record.SDValue{}, decoder.ErrInvalidValueType("arrays/objects not allowed in extras")
	}
}
