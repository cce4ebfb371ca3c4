// Package syslen prepends an octet-counting length prefix and appends LF.
package syslen

import "strconv"

type Merger struct{}

func New() Merger { return Merger{} }

func (Merger) Merge(encoded []byte) []byte {
	prefix := strconv.Itoa(len(encoded)+1) + " "
	out := make([]byte, 0, len(prefix)+len(encoded)+1)
	out = append(out, prefix...)
	out = append(out, encoded...)
	out = append(out, '\n')
	return out
}
