package noop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeIsIdentity(t *testing.T) {
	assert.Equal(t, []byte("hello"), New().Merge([]byte("hello")))
}
