// Package noop implements the identity merger for sinks that need no
// per-record framing (e.g. a raw TLS byte stream with its own delimiter
// already embedded by the encoder).
package noop

type Merger struct{}

func New() Merger { return Merger{} }

func (Merger) Merge(encoded []byte) []byte { return encoded }
