// Package gelf re-serializes a Record as a GELF 1.1 JSON document.
// https://docs.graylog.org/docs/gelf
package gelf

import (
	"encoding/json"

	"github.com/flowgger-go/flowgger/pkg/record"
)

// Encoder emits GELF JSON. Extra holds static key/value pairs merged into
// every record, overwriting any record-derived key of the same name —
// mirrors output.gelf_extra.
type Encoder struct {
	Extra map[string]string
}

func New() Encoder { return Encoder{} }

func NewWithExtra(extra map[string]string) Encoder { return Encoder{Extra: extra} }

func (e Encoder) Encode(r record.Record) ([]byte, error) {
	m := map[string]interface{}{
		"version":   "1.1",
		"timestamp": r.TS,
	}

	if r.Hostname == "" {
		m["host"] = "unknown"
	} else {
		m["host"] = r.Hostname
	}

	if r.Msg != nil {
		m["short_message"] = *r.Msg
	} else {
		m["short_message"] = "-"
	}

	if r.Severity != nil {
		m["level"] = uint64(*r.Severity)
	}
	if r.FullMsg != nil {
		m["full_message"] = *r.FullMsg
	}
	if r.AppName != nil {
		m["application_name"] = *r.AppName
	}
	if r.ProcID != nil {
		m["process_id"] = *r.ProcID
	}

	for _, sd := range r.SD {
		if sd.SDID != nil {
			m["sd_id"] = *sd.SDID
		}
		for _, p := range sd.Pairs {
			m[p.Name] = sdValue(p.Value)
		}
	}

	for k, v := range e.Extra {
		m[k] = v
	}

	return json.Marshal(m)
}

func sdValue(v record.SDValue) interface{} {
	switch v.Kind {
	case record.KindString:
		return v.Str
	case record.KindBool:
		return v.Bool
	case record.KindF64:
		return v.F64
	case record.KindI64:
		return v.I64
	case record.KindU64:
		return v.U64
	default:
		return nil
	}
}
