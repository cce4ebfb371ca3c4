package stdin

import (
	"context"
	"strings"
	"testing"

	"github.com/flowgger-go/flowgger/pkg/encoder/passthrough"
	"github.com/flowgger-go/flowgger/pkg/input"
	"github.com/flowgger-go/flowgger/pkg/queue"
	"github.com/flowgger-go/flowgger/pkg/record"
	"github.com/flowgger-go/flowgger/pkg/splitter/line"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoDecoder struct{}

func (echoDecoder) Decode(raw []byte) (record.Record, error) {
	return record.Record{Hostname: "h", FullMsg: record.Str(string(raw))}, nil
}

func TestRunDecodesUntilEOF(t *testing.T) {
	q := queue.New(8)
	p := input.Pipeline{Decoder: echoDecoder{}, Encoder: passthrough.New(), Queue: q}

	in := &Input{Reader: strings.NewReader("one\ntwo\n"), Splitter: line.New(nil), Pipeline: p}
	in.Run(context.Background())

	v1, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "one", string(v1))

	v2, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "two", string(v2))
}
