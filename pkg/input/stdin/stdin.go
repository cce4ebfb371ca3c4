// Package stdin implements the stdin input: a single buffered reader over
// os.Stdin driven through the configured splitter until EOF or shutdown.
package stdin

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/flowgger-go/flowgger/pkg/input"
	"github.com/flowgger-go/flowgger/pkg/log"
	"github.com/flowgger-go/flowgger/pkg/splitter"
)

type Input struct {
	Reader   io.Reader
	Splitter splitter.Splitter
	Pipeline input.Pipeline
}

func New(sp splitter.Splitter, p input.Pipeline) *Input {
	return &Input{Reader: os.Stdin, Splitter: sp, Pipeline: p}
}

func (i *Input) Run(ctx context.Context) {
	r := bufio.NewReader(i.Reader)
	for {
		frame, err := i.Splitter.Next(r)
		if len(frame) > 0 {
			if procErr := i.Pipeline.Handle(frame); procErr != nil {
				log.DecodeError(input.ErrKind(procErr), frame)
			}
		}

		if err != nil {
			if err == io.EOF {
				return
			}
			log.Warnf("stdin input: %v", err)
			return
		}

		if ctx.Err() != nil {
			return
		}
	}
}
