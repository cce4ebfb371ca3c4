package rfc3164

import (
	"testing"
	"time"

	"github.com/flowgger-go/flowgger/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeNoPRI(t *testing.T) {
	ts := record.TSFromTime(time.Date(0, time.August, 6, 11, 15, 24, 0, time.UTC))
	r := record.Record{
		TS:       ts,
		Hostname: "testhostname",
		Msg:      record.Str(`appname 69 42 [origin@123 software="te\st sc\"ript" swVersion="0.0.1"] test message`),
	}

	out, err := New("").Encode(r)
	require.NoError(t, err)
	assert.Equal(t,
		`Aug  6 11:15:24 testhostname appname 69 42 [origin@123 software="te\st sc\"ript" swVersion="0.0.1"] test message`,
		string(out))
}

func TestEncodeWithPRI(t *testing.T) {
	ts := record.TSFromTime(time.Date(0, time.August, 6, 11, 15, 24, 0, time.UTC))
	facility := uint8(2)
	severity := uint8(7)
	r := record.Record{
		TS:       ts,
		Hostname: "testhostname",
		Facility: &facility,
		Severity: &severity,
		Msg:      record.Str("test message"),
	}

	out, err := New("").Encode(r)
	require.NoError(t, err)
	assert.Equal(t, `<23>Aug  6 11:15:24 testhostname test message`, string(out))
}

func TestEncodeFull(t *testing.T) {
	ts := record.TSFromTime(time.Date(0, time.August, 6, 11, 15, 24, 0, time.UTC))
	facility := uint8(2)
	severity := uint8(7)
	r := record.Record{
		TS:       ts,
		Hostname: "testhostname",
		Facility: &facility,
		Severity: &severity,
		AppName:  record.Str("appname"),
		ProcID:   record.Str("69"),
		MsgID:    record.Str("42"),
		Msg:      record.Str("some test message"),
		SD: []record.StructuredData{{
			SDID: record.Str("someid"),
			Pairs: []record.SDPair{
				{Name: "a", Value: record.String("b")},
				{Name: "c", Value: record.U64(123456)},
			},
		}},
	}

	out, err := New("").Encode(r)
	require.NoError(t, err)
	assert.Equal(t,
		`<23>Aug  6 11:15:24 testhostname appname[69]: 42 [someid a="b" c="123456"] some test message`,
		string(out))
}

func TestEncodeMultipleSD(t *testing.T) {
	ts := record.TSFromTime(time.Date(0, time.August, 6, 11, 15, 24, 0, time.UTC))
	r := record.Record{
		TS:       ts,
		Hostname: "testhostname",
		AppName:  record.Str("appname"),
		ProcID:   record.Str("69"),
		MsgID:    record.Str("42"),
		Msg:      record.Str("some test message"),
		SD: []record.StructuredData{
			{SDID: record.Str("someid"), Pairs: []record.SDPair{{Name: "a", Value: record.String("b")}}},
			{SDID: record.Str("someid2"), Pairs: []record.SDPair{{Name: "a2", Value: record.String("b2")}}},
		},
	}

	out, err := New("").Encode(r)
	require.NoError(t, err)
	assert.Equal(t,
		`Aug  6 11:15:24 testhostname appname[69]: 42 [someid a="b"][someid2 a2="b2"] some test message`,
		string(out))
}

func TestEncodePrependsTimestamp(t *testing.T) {
	ts := record.TSFromTime(time.Date(0, time.August, 6, 11, 15, 24, 0, time.UTC))
	r := record.Record{
		TS:       ts,
		Hostname: "testhostname",
		Msg:      record.Str("m"),
	}

	out, err := New("2006-01-02T15:04Z").Encode(r)
	require.NoError(t, err)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}ZAug  6 11:15:24 testhostname m$`, string(out))
}
