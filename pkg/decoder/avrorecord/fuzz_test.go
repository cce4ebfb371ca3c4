package avrorecord

import (
	"testing"

	"github.com/flowgger-go/flowgger/pkg/encoder/avrorecord"
	"github.com/flowgger-go/flowgger/pkg/record"
)

func FuzzDecode(f *testing.F) {
	severity := uint8(1)
	framed, err := avrorecord.New().Encode(record.Record{
		Hostname: "example.org",
		Severity: &severity,
		Msg:      record.Str("a message"),
	})
	if err == nil && len(framed) > 4 {
		f.Add(framed[4:])
	}
	f.Add([]byte(""))
	f.Add([]byte("not avro at all"))

	d := New()
	f.Fuzz(func(t *testing.T, raw []byte) {
		_, _ = d.Decode(raw)
	})
}
