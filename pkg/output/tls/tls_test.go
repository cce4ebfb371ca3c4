package tls

import (
	"crypto/tls"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeerCursorWrapsAndReshuffles(t *testing.T) {
	c := &peerCursor{peers: []string{"a:1", "b:2", "c:3"}}
	seen := map[string]bool{}
	for i := 0; i < 6; i++ {
		seen[c.next()] = true
	}
	assert.Len(t, seen, 3)
}

func TestWorkersDefaultsToOne(t *testing.T) {
	o := New([]string{"a:1"}, &tls.Config{})
	assert.Equal(t, 1, o.Workers())

	o.WorkerCount = 4
	assert.Equal(t, 4, o.Workers())
}

func TestClassifyRecognizesCommonReasons(t *testing.T) {
	assert.Equal(t, reasonRefused, classify(errors.New("dial tcp: connection refused")))
	assert.Equal(t, reasonReset, classify(errors.New("write: connection reset by peer")))
	assert.Equal(t, reasonAborted, classify(errors.New("use of closed network connection")))
	assert.Equal(t, reasonOther, classify(errors.New("something else")))
}
