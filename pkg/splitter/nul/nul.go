// Package nul implements the NUL-delimited splitter.
package nul

import "bufio"

// Splitter reads frames terminated by NUL (0x00); the terminator is
// stripped. Empty frames are silently dropped.
type Splitter struct{}

func New() Splitter { return Splitter{} }

func (Splitter) Next(r *bufio.Reader) ([]byte, error) {
	for {
		raw, err := r.ReadBytes(0x00)
		frame := raw
		if n := len(frame); n > 0 && frame[n-1] == 0x00 {
			frame = frame[:n-1]
		}
		if len(frame) == 0 {
			if err != nil {
				return nil, err
			}
			continue
		}
		return frame, err
	}
}
