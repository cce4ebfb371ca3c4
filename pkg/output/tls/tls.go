// Package tls implements the TLS output sink: delivery to one of a
// cluster of peers with shuffled failover and bounded exponential-backoff
// reconnect. This is the hardest sink in the relay: ordering is only
// guaranteed within one connection, and at-least-once delivery is not
// provided across reconnects.
package tls

import (
	"bufio"
	"context"
	"crypto/tls"
	"math/rand"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/jpillora/backoff"

	"github.com/flowgger-go/flowgger/pkg/log"
	"github.com/flowgger-go/flowgger/pkg/merger"
	"github.com/flowgger-go/flowgger/pkg/queue"
)

// Output delivers records to a shuffled, failed-over cluster of TLS
// peers. All fields are read-only after New; the peer index is the only
// mutable shared state, guarded by its own mutex so every worker can
// advance it independently.
type Output struct {
	TLSConfig         *tls.Config
	AsyncFlush        bool
	RecoveryDelayInit time.Duration
	RecoveryDelayMax  time.Duration
	RecoveryProbeTime time.Duration
	WorkerCount       int

	peers *peerCursor
}

// New builds a TLS output over peers (host:port). The peer list is
// shuffled once here, matching the "shuffle at startup" step of the
// reconnect algorithm.
func New(peers []string, tlsConfig *tls.Config) *Output {
	shuffled := append([]string(nil), peers...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	return &Output{
		TLSConfig:         tlsConfig,
		RecoveryDelayInit: 500 * time.Millisecond,
		RecoveryDelayMax:  30 * time.Second,
		RecoveryProbeTime: 60 * time.Second,
		WorkerCount:       1,
		peers:             &peerCursor{peers: shuffled},
	}
}

func (o *Output) Workers() int {
	if o.WorkerCount <= 0 {
		return 1
	}
	return o.WorkerCount
}

// peerCursor is the shared mutable state every worker goroutine advances:
// a mutex-guarded index into the peer list, reshuffled each time it wraps.
type peerCursor struct {
	mu    sync.Mutex
	peers []string
	idx   int
}

func (c *peerCursor) next() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	peer := c.peers[c.idx]
	c.idx++
	if c.idx >= len(c.peers) {
		rand.Shuffle(len(c.peers), func(i, j int) { c.peers[i], c.peers[j] = c.peers[j], c.peers[i] })
		c.idx = 0
	}
	return peer
}

func (o *Output) Run(ctx context.Context, q *queue.Queue, m merger.Merger) {
	b := &backoff.Backoff{Min: o.RecoveryDelayInit, Max: o.RecoveryDelayMax, Factor: 2, Jitter: true}

	for {
		if ctx.Err() != nil {
			return
		}

		peer := o.peers.next()
		conn, err := o.dial(ctx, peer)
		if err != nil {
			log.Warnf("tls output: connect to %s failed: %v", peer, err)
			if !sleepFor(ctx, b.Duration()) {
				return
			}
			continue
		}

		lastRecovery := time.Now()
		b.Reset()

		reason := o.drive(ctx, conn, q, m)
		conn.Close()
		log.Notef("tls output: session with %s ended: %s", peer, reason)

		if reason == reasonQueueClosed {
			return
		}

		if time.Since(lastRecovery) > o.RecoveryProbeTime {
			b.Reset()
		}
		if !sleepFor(ctx, b.Duration()) {
			return
		}
	}
}

func (o *Output) dial(ctx context.Context, peer string) (*tls.Conn, error) {
	host := peer
	if i := strings.LastIndex(peer, ":"); i >= 0 {
		host = peer[:i]
	}

	d := &net.Dialer{}
	raw, err := d.DialContext(ctx, "tcp", peer)
	if err != nil {
		return nil, err
	}

	cfg := o.TLSConfig.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}

	conn := tls.Client(raw, cfg)
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, err
	}
	return conn, nil
}

type sessionEndReason string

const (
	reasonQueueClosed sessionEndReason = "queue closed"
	reasonRefused     sessionEndReason = "connection refused"
	reasonAborted     sessionEndReason = "connection aborted"
	reasonReset       sessionEndReason = "connection reset"
	reasonOther       sessionEndReason = "io error"
)

func (o *Output) drive(ctx context.Context, conn *tls.Conn, q *queue.Queue, m merger.Merger) sessionEndReason {
	w := bufio.NewWriter(conn)
	for {
		v, ok := q.Dequeue()
		if !ok {
			w.Flush()
			return reasonQueueClosed
		}

		if _, err := w.Write(m.Merge(v)); err != nil {
			return classify(err)
		}
		if !o.AsyncFlush {
			if err := w.Flush(); err != nil {
				return classify(err)
			}
		}

		if ctx.Err() != nil {
			w.Flush()
			return reasonQueueClosed
		}
	}
}

func classify(err error) sessionEndReason {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return reasonOther
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "refused"):
		return reasonRefused
	case strings.Contains(msg, "reset"):
		return reasonReset
	case strings.Contains(msg, "aborted"), strings.Contains(msg, "closed"):
		return reasonAborted
	default:
		return reasonOther
	}
}

// sleepFor waits d or returns false early if ctx is cancelled.
func sleepFor(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
