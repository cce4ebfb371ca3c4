package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgger-go/flowgger/internal/config"
	decltsv "github.com/flowgger-go/flowgger/pkg/decoder/ltsv"
	decrfc5424 "github.com/flowgger-go/flowgger/pkg/decoder/rfc5424"
	encrfc3164 "github.com/flowgger-go/flowgger/pkg/encoder/rfc3164"
	"github.com/flowgger-go/flowgger/pkg/output/file"
	"github.com/flowgger-go/flowgger/pkg/output/tls"
	splitline "github.com/flowgger-go/flowgger/pkg/splitter/line"
)

func TestBuildDecoderResolvesEachFormat(t *testing.T) {
	d, err := BuildDecoder(&config.InputConfig{Format: "rfc5424"})
	require.NoError(t, err)
	assert.IsType(t, decrfc5424.Decoder{}, d)

	d, err = BuildDecoder(&config.InputConfig{
		Format:       "ltsv",
		LTSVSchema:   map[string]string{"counter": "u64"},
		LTSVSuffixes: map[string]string{"u64": "_u64"},
	})
	require.NoError(t, err)
	ltsvDec, ok := d.(decltsv.Decoder)
	require.True(t, ok)
	assert.Equal(t, decltsv.TypeU64, ltsvDec.Schema["counter"])
}

func TestBuildDecoderRejectsUnknownFormat(t *testing.T) {
	_, err := BuildDecoder(&config.InputConfig{Format: "xml"})
	assert.Error(t, err)
}

func TestBuildEncoderResolvesRFC3164WithPrepend(t *testing.T) {
	e, err := BuildEncoder(&config.OutputConfig{Format: "rfc3164", SyslogPrependTimestamp: "Jan 2 15:04:05"})
	require.NoError(t, err)
	enc, ok := e.(encrfc3164.Encoder)
	require.True(t, ok)
	assert.Equal(t, "Jan 2 15:04:05", enc.PrependTimeFormat)
}

func TestBuildSplitterAndMergerRejectUnknown(t *testing.T) {
	_, err := BuildSplitter("bogus")
	assert.Error(t, err)
	_, err = BuildMerger("bogus")
	assert.Error(t, err)
}

func TestBuildSplitterLine(t *testing.T) {
	s, err := BuildSplitter("line")
	require.NoError(t, err)
	assert.IsType(t, splitline.Splitter{}, s)
}

func TestBuildTLSConfigSelectsCipherTable(t *testing.T) {
	tc, err := BuildTLSConfig(config.TLSConfig{CompatibilityLevel: "intermediate"})
	require.NoError(t, err)
	assert.Equal(t, config.CipherSuites["intermediate"], tc.CipherSuites)
}

func TestBuildTLSConfigRejectsUnknownCompatibilityLevel(t *testing.T) {
	_, err := BuildTLSConfig(config.TLSConfig{CompatibilityLevel: "ancient"})
	assert.Error(t, err)
}

func TestBuildOutputFile(t *testing.T) {
	o, err := BuildOutput(&config.Config{Output: config.OutputConfig{
		Type:                 "file",
		FilePath:             "/tmp/relay.log",
		FileRotationSize:     1024,
		FileRotationMaxFiles: 3,
	}})
	require.NoError(t, err)
	out, ok := o.(*file.Output)
	require.True(t, ok)
	assert.Equal(t, int64(1024), out.MaxSizeBytes)
	assert.Equal(t, 3, out.MaxFiles)
}

func TestBuildOutputTLSAppliesRecoveryOverrides(t *testing.T) {
	o, err := BuildOutput(&config.Config{Output: config.OutputConfig{
		Type:    "tls",
		Connect: []string{"peer1:6514", "peer2:6514"},
		TLS: config.TLSConfig{
			RecoveryDelayInit: 100,
			RecoveryDelayMax:  5000,
		},
	}})
	require.NoError(t, err)
	out, ok := o.(*tls.Output)
	require.True(t, ok)
	assert.Equal(t, 100*1000*1000, int(out.RecoveryDelayInit))
}

func TestBuildOutputRejectsUnknownType(t *testing.T) {
	_, err := BuildOutput(&config.Config{Output: config.OutputConfig{Type: "carrier-pigeon"}})
	assert.Error(t, err)
}
