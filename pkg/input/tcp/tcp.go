// Package tcp implements the plain-TCP input: bind, accept loop, one
// handler goroutine per connection driving the configured splitter.
package tcp

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"

	"github.com/flowgger-go/flowgger/pkg/input"
	"github.com/flowgger-go/flowgger/pkg/log"
	"github.com/flowgger-go/flowgger/pkg/splitter"
)

type Input struct {
	Listen   string
	Timeout  time.Duration
	Splitter splitter.Splitter
	Pipeline input.Pipeline
}

func New(listen string, sp splitter.Splitter, p input.Pipeline) *Input {
	return &Input{Listen: listen, Timeout: 3600 * time.Second, Splitter: sp, Pipeline: p}
}

// Run binds the listener and accepts connections until ctx is cancelled.
func (i *Input) Run(ctx context.Context) {
	ln, err := net.Listen("tcp", i.Listen)
	if err != nil {
		log.Errorf("tcp input: listen on %s: %v", i.Listen, err)
		return
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warnf("tcp input: accept on %s: %v", i.Listen, err)
			continue
		}
		go i.handle(ctx, conn)
	}
}

func (i *Input) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)

	for {
		if i.Timeout > 0 {
			conn.SetReadDeadline(time.Now().Add(i.Timeout))
		}

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
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return
			}
			if ctx.Err() != nil {
				return
			}
			log.Warnf("tcp input: %s: %v", conn.RemoteAddr(), err)
			return
		}

		if ctx.Err() != nil {
			return
		}
	}
}
