package avrorecord

import (
	"encoding/binary"
	"testing"

	"github.com/flowgger-go/flowgger/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unwrapUnion pulls the branch value out of goavro's decoded union shape
// (map[string]interface{}{"string": v}), or returns nil for a null branch.
func unwrapUnion(v interface{}) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}
	for _, branch := range m {
		return branch
	}
	return nil
}

func decodeFrame(t *testing.T, e Encoder, out []byte) map[string]interface{} {
	t.Helper()
	require.Greater(t, len(out), 4)
	length := binary.BigEndian.Uint32(out[:4])
	assert.EqualValues(t, len(out)-4, length)

	native, _, err := e.codec.NativeFromBinary(out[4:])
	require.NoError(t, err)
	m, ok := native.(map[string]interface{})
	require.True(t, ok)
	return m
}

func TestEncodeRoundTrip(t *testing.T) {
	severity := uint8(1)
	r := record.Record{
		TS:       1385053862.3072,
		Hostname: "example.org",
		Severity: &severity,
		AppName:  record.Str("appname"),
		ProcID:   record.Str("44"),
		Msg:      record.Str("A short message that helps you identify what is going on"),
		FullMsg:  record.Str("Backtrace here\n\nmore stuff"),
		SD: []record.StructuredData{{
			SDID:  record.Str("someid"),
			Pairs: []record.SDPair{{Name: "_some_info", Value: record.String("foo")}},
		}},
	}

	e := New()
	out, err := e.Encode(r)
	require.NoError(t, err)

	m := decodeFrame(t, e, out)
	assert.InDelta(t, 1385053862.3072, m["ts"], 1e-4)
	assert.Equal(t, "example.org", m["hostname"])
	assert.EqualValues(t, FacilityMissing, m["facility"])
	assert.EqualValues(t, 1, m["severity"])
}

func TestEncodeMissingFacilitySeverityUsesSentinel(t *testing.T) {
	e := New()
	out, err := e.Encode(record.Record{Hostname: "h"})
	require.NoError(t, err)

	m := decodeFrame(t, e, out)
	assert.EqualValues(t, FacilityMissing, m["facility"])
	assert.EqualValues(t, SeverityMissing, m["severity"])
}

func TestEncodeFlattensAllSDPairsUnderFirstSDID(t *testing.T) {
	r := record.Record{
		Hostname: "h",
		SD: []record.StructuredData{
			{SDID: record.Str("first"), Pairs: []record.SDPair{{Name: "a", Value: record.String("b")}}},
			{SDID: record.Str("second"), Pairs: []record.SDPair{{Name: "c", Value: record.String("d")}}},
		},
	}

	e := New()
	out, err := e.Encode(r)
	require.NoError(t, err)

	m := decodeFrame(t, e, out)
	assert.Equal(t, "first", unwrapUnion(m["sd_id"]))

	pairs, ok := m["pairs"].([]interface{})
	require.True(t, ok)
	require.Len(t, pairs, 2)

	names := make([]string, len(pairs))
	for i, p := range pairs {
		pm := p.(map[string]interface{})
		names[i] = pm["key"].(string)
	}
	assert.Equal(t, []string{"a", "c"}, names)
}

func TestEncodeWritesExtra(t *testing.T) {
	e := NewWithExtra(map[string]string{"x-header1": "header1 value"})
	out, err := e.Encode(record.Record{Hostname: "h"})
	require.NoError(t, err)

	m := decodeFrame(t, e, out)
	extra, ok := m["extra"].([]interface{})
	require.True(t, ok)
	require.Len(t, extra, 1)
}
