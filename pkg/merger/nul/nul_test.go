package nul

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeAppendsNUL(t *testing.T) {
	assert.Equal(t, []byte("hello\x00"), New().Merge([]byte("hello")))
}
