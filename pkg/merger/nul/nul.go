// Package nul appends a NUL frame terminator.
package nul

type Merger struct{}

func New() Merger { return Merger{} }

func (Merger) Merge(encoded []byte) []byte {
	return append(encoded, 0x00)
}
