package line

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeAppendsLF(t *testing.T) {
	assert.Equal(t, []byte("hello\n"), New().Merge([]byte("hello")))
}
