// Package udp implements the UDP input: a single socket receiving
// datagrams up to 65527 bytes, each optionally zlib- or gzip-compressed,
// each treated as exactly one decode -> encode -> enqueue unit.
package udp

import (
	"bytes"
	"context"
	"io"
	"net"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"github.com/flowgger-go/flowgger/pkg/input"
	"github.com/flowgger-go/flowgger/pkg/log"
)

const (
	maxDatagram   = 65527
	expansionCap  = 5
)

type Input struct {
	Listen   string
	Pipeline input.Pipeline
}

func New(listen string, p input.Pipeline) *Input {
	return &Input{Listen: listen, Pipeline: p}
}

func (i *Input) Run(ctx context.Context) {
	conn, err := net.ListenPacket("udp", i.Listen)
	if err != nil {
		log.Errorf("udp input: listen on %s: %v", i.Listen, err)
		return
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, maxDatagram)
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warnf("udp input: read on %s: %v", i.Listen, err)
			return
		}

		payload := decompress(buf[:n])
		if procErr := i.Pipeline.Handle(payload); procErr != nil {
			log.DecodeError(input.ErrKind(procErr), payload)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

// decompress sniffs the zlib/gzip magic bytes and inflates the datagram,
// capping expansion at 5x the wire size; anything else passes through
// unchanged. No trailer/checksum validation is performed — a fast-path
// choice carried over from the format this relay is compatible with.
func decompress(raw []byte) []byte {
	limit := int64(len(raw)) * expansionCap

	switch {
	case looksLikeZlib(raw):
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return raw
		}
		defer zr.Close()
		out, err := io.ReadAll(io.LimitReader(zr, limit))
		if err != nil && len(out) == 0 {
			return raw
		}
		return out
	case looksLikeGzip(raw):
		gr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return raw
		}
		defer gr.Close()
		out, err := io.ReadAll(io.LimitReader(gr, limit))
		if err != nil && len(out) == 0 {
			return raw
		}
		return out
	default:
		return raw
	}
}

func looksLikeZlib(raw []byte) bool {
	if len(raw) < 8 {
		return false
	}
	if raw[0] != 0x78 {
		return false
	}
	switch raw[1] {
	case 0x01, 0x9C, 0xDA:
		return true
	default:
		return false
	}
}

func looksLikeGzip(raw []byte) bool {
	return len(raw) >= 24 && raw[0] == 0x1F && raw[1] == 0x8B && raw[2] == 0x08
}
