// Package line implements the newline-delimited splitter.
package line

import (
	"bufio"
	"unicode/utf8"

	"github.com/flowgger-go/flowgger/pkg/splitter"
)

// Splitter reads frames terminated by LF (0x0A); the terminator is
// stripped. A frame that is not valid UTF-8 is skipped rather than
// returned — the loop keeps reading until a valid frame or a real I/O
// error occurs.
type Splitter struct {
	OnSkip splitter.SkipFunc
}

func New(onSkip splitter.SkipFunc) Splitter { return Splitter{OnSkip: onSkip} }

func (s Splitter) Next(r *bufio.Reader) ([]byte, error) {
	for {
		raw, err := r.ReadBytes('\n')
		if len(raw) > 0 {
			frame := raw
			if frame[len(frame)-1] == '\n' {
				frame = frame[:len(frame)-1]
			}
			if !utf8.Valid(frame) {
				if s.OnSkip != nil {
					s.OnSkip("invalid_utf8", frame)
				}
				if err != nil {
					return nil, err
				}
				continue
			}
			return frame, err
		}
		if err != nil {
			return nil, err
		}
	}
}
