package rfc3164

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSpecExample(t *testing.T) {
	old := Now
	Now = func() time.Time { return time.Date(2015, time.August, 6, 0, 0, 0, 0, time.UTC) }
	defer func() { Now = old }()

	input := `<13>Aug  6 11:15:24 testhostname appname 69 42 [origin@123 …] test message`
	r, err := New().Decode([]byte(input))
	require.NoError(t, err)

	require.NotNil(t, r.Facility)
	require.NotNil(t, r.Severity)
	assert.Equal(t, uint8(1), *r.Facility)
	assert.Equal(t, uint8(5), *r.Severity)
	assert.Equal(t, "testhostname", r.Hostname)
	require.NotNil(t, r.Msg)
	assert.True(t, strings.HasPrefix(*r.Msg, "appname 69 42"))
	require.NotNil(t, r.FullMsg)
	assert.Equal(t, input, *r.FullMsg)
}

func TestDecodeCustomShapeWithYearAndTZ(t *testing.T) {
	input := `myhost: 2020 Aug 6 11:15:24 UTC: test message`
	r, err := New().Decode([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "myhost", r.Hostname)
	require.NotNil(t, r.Msg)
	assert.Equal(t, "test message", *r.Msg)

	want := time.Date(2020, time.August, 6, 11, 15, 24, 0, time.UTC)
	assert.Equal(t, want.Unix(), int64(r.TS))
}

func TestDecodeNoPRI(t *testing.T) {
	old := Now
	Now = func() time.Time { return time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC) }
	defer func() { Now = old }()

	input := `Aug  6 11:15:24 myhost something happened`
	r, err := New().Decode([]byte(input))
	require.NoError(t, err)
	assert.Nil(t, r.Facility)
	assert.Nil(t, r.Severity)
	assert.Equal(t, "myhost", r.Hostname)
}
