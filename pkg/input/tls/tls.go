// Package tls implements the TLS-wrapped input: identical accept loop to
// plain TCP, but each accepted socket is wrapped in a server-side TLS
// handshake using a preconfigured context before the splitter runs over
// it.
package tls

import (
	"bufio"
	"context"
	"crypto/tls"
	"io"
	"net"
	"time"

	"github.com/flowgger-go/flowgger/pkg/input"
	"github.com/flowgger-go/flowgger/pkg/log"
	"github.com/flowgger-go/flowgger/pkg/splitter"
)

type Input struct {
	Listen    string
	Timeout   time.Duration
	TLSConfig *tls.Config
	Splitter  splitter.Splitter
	Pipeline  input.Pipeline
}

func New(listen string, tlsConfig *tls.Config, sp splitter.Splitter, p input.Pipeline) *Input {
	return &Input{Listen: listen, Timeout: 3600 * time.Second, TLSConfig: tlsConfig, Splitter: sp, Pipeline: p}
}

func (i *Input) Run(ctx context.Context) {
	ln, err := tls.Listen("tcp", i.Listen, i.TLSConfig)
	if err != nil {
		log.Errorf("tls input: listen on %s: %v", i.Listen, err)
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
			log.Warnf("tls input: accept on %s: %v", i.Listen, err)
			continue
		}
		go i.handle(ctx, conn)
	}
}

func (i *Input) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	tc, ok := conn.(*tls.Conn)
	if ok {
		hctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := tc.HandshakeContext(hctx); err != nil {
			log.Warnf("tls input: handshake with %s: %v", conn.RemoteAddr(), err)
			return
		}
	}

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
			log.Warnf("tls input: %s: %v", conn.RemoteAddr(), err)
			return
		}

		if ctx.Err() != nil {
			return
		}
	}
}
