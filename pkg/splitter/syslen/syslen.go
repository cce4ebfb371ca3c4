// Package syslen implements the octet-counting splitter (RFC 6587 style):
// an ASCII decimal length, a space, then exactly that many bytes.
package syslen

import (
	"bufio"
	"io"
	"strconv"

	"github.com/flowgger-go/flowgger/pkg/splitter"
)

type Splitter struct{}

func New() Splitter { return Splitter{} }

func (Splitter) Next(r *bufio.Reader) ([]byte, error) {
	lenField, err := r.ReadBytes(' ')
	if err != nil {
		if len(lenField) == 0 {
			return nil, err
		}
		return nil, splitter.ErrMalformedLength
	}
	lenField = lenField[:len(lenField)-1]

	n, convErr := strconv.Atoi(string(lenField))
	if convErr != nil || n < 0 {
		return nil, splitter.ErrMalformedLength
	}

	frame := make([]byte, n)
	if _, err := io.ReadFull(r, frame); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, splitter.ErrMalformedLength
		}
		return nil, err
	}
	return frame, nil
}
