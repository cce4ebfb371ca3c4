package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgger-go/flowgger/pkg/encoder/passthrough"
	"github.com/flowgger-go/flowgger/pkg/input"
	flowgstdin "github.com/flowgger-go/flowgger/pkg/input/stdin"
	"github.com/flowgger-go/flowgger/pkg/merger/line"
	"github.com/flowgger-go/flowgger/pkg/output/debug"
	"github.com/flowgger-go/flowgger/pkg/record"
	splitline "github.com/flowgger-go/flowgger/pkg/splitter/line"
)

type echoDecoder struct{}

func (echoDecoder) Decode(raw []byte) (record.Record, error) {
	return record.Record{Hostname: "h", FullMsg: record.Str(string(raw))}, nil
}

func TestRunDeliversInputToOutput(t *testing.T) {
	q := newBoundPipeline(t)

	var buf bytes.Buffer
	out := debug.New()
	out.Writer = &buf

	p := input.Pipeline{Decoder: echoDecoder{}, Encoder: passthrough.New(), Queue: q.Queue}
	in := flowgstdin.New(splitline.New(nil), p)
	in.Reader = strings.NewReader("alpha\nbeta\n")

	q.Inputs = []input.Input{in}
	q.Outputs = []OutputBinding{{Output: out, Merger: line.New()}}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline did not shut down")
	}

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "alpha") && strings.Contains(buf.String(), "beta")
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "alpha\nbeta\n", buf.String())
}

func newBoundPipeline(t *testing.T) *Pipeline {
	t.Helper()
	return New(8, nil, nil)
}
