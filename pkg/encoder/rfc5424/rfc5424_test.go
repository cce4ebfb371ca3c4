package rfc5424

import (
	"testing"
	"time"

	"github.com/flowgger-go/flowgger/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeMinimal(t *testing.T) {
	ts := record.TSFromTime(time.Date(2015, time.August, 6, 11, 15, 24, 638000000, time.UTC))
	r := record.Record{
		TS:       ts,
		Hostname: "testhostname",
		Msg:      record.Str("some test message"),
	}

	out, err := New().Encode(r)
	require.NoError(t, err)
	assert.Equal(t, `<13>1 2015-08-06T11:15:24.638Z testhostname - - - some test message`, string(out))
}

func TestEncodeFull(t *testing.T) {
	ts := record.TSFromTime(time.Date(2015, time.August, 5, 15, 53, 45, 382000000, time.UTC))
	facility := uint8(3)
	severity := uint8(1)
	r := record.Record{
		TS:       ts,
		Hostname: "testhostname",
		Facility: &facility,
		Severity: &severity,
		AppName:  record.Str("appname"),
		ProcID:   record.Str("69"),
		MsgID:    record.Str("42"),
		Msg:      record.Str("test message"),
		SD: []record.StructuredData{{
			SDID: record.Str("origin@123"),
			Pairs: []record.SDPair{
				{Name: "_software", Value: record.String(`test sc\"ript`)},
				{Name: "_swVersion", Value: record.String("0.0.1")},
			},
		}},
	}

	out, err := New().Encode(r)
	require.NoError(t, err)
	assert.Equal(t,
		`<25>1 2015-08-05T15:53:45.382Z testhostname appname 69 42 [origin@123 software="test sc\"ript" swVersion="0.0.1"] test message`,
		string(out))
}

func TestEncodeMissingAppNameKeepsProcIDAndMsgIDTokens(t *testing.T) {
	r := record.Record{
		TS:       1,
		Hostname: "h",
		ProcID:   record.Str("69"),
		Msg:      record.Str("x"),
	}
	out, err := New().Encode(r)
	require.NoError(t, err)
	assert.Equal(t, `<13>1 1970-01-01T00:00:01.000Z h - 69 - - x`, string(out))
}

func TestEncodeMultipleSDConcatenated(t *testing.T) {
	r := record.Record{
		TS:       1,
		Hostname: "h",
		SD: []record.StructuredData{
			{SDID: record.Str("a@1"), Pairs: []record.SDPair{{Name: "k", Value: record.String("v")}}},
			{SDID: record.Str("b@2"), Pairs: []record.SDPair{{Name: "k2", Value: record.String("v2")}}},
		},
	}
	out, err := New().Encode(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), `[a@1 k="v"][b@2 k2="v2"]`)
}
