package passthrough

import (
	"testing"
	"time"

	"github.com/flowgger-go/flowgger/pkg/encoder"
	"github.com/flowgger-go/flowgger/pkg/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f fakeClock) NowUTC() time.Time { return f.t }

func TestEncodeEmitsFullMsg(t *testing.T) {
	r := record.Record{FullMsg: record.Str("<13>1 raw original line")}
	out, err := New().Encode(r)
	require.NoError(t, err)
	assert.Equal(t, "<13>1 raw original line", string(out))
}

func TestEncodeErrorsWithoutFullMsg(t *testing.T) {
	_, err := New().Encode(record.Record{})
	assert.ErrorIs(t, err, encoder.ErrMissingFullMsg)
}

func TestEncodePrependsTimestampWhenConfigured(t *testing.T) {
	e := NewWithPrepend("2006-01-02T15:04:05 ")
	e.clock = fakeClock{t: time.Date(2015, time.August, 6, 11, 15, 24, 0, time.UTC)}

	r := record.Record{FullMsg: record.Str("raw line")}
	out, err := e.Encode(r)
	require.NoError(t, err)
	assert.Equal(t, "2015-08-06T11:15:24 raw line", string(out))
}
