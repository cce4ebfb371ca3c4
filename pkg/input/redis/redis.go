// Package redis implements the Redis list input: BRPOPLPUSH moves one
// item at a time from the shared queue key into a per-worker temporary
// list, the item is processed, then removed from the temporary list. On
// startup any items left in the temporary list from a prior, interrupted
// run are drained back onto the shared queue before the loop starts.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"github.com/flowgger-go/flowgger/pkg/input"
	"github.com/flowgger-go/flowgger/pkg/log"
)

const defaultBlockTimeout = 5 * time.Second

type Input struct {
	Client       *goredis.Client
	QueueKey     string
	WorkerID     int
	BlockTimeout time.Duration
	Pipeline     input.Pipeline
}

func New(client *goredis.Client, queueKey string, workerID int, p input.Pipeline) *Input {
	return &Input{
		Client:       client,
		QueueKey:     queueKey,
		WorkerID:     workerID,
		BlockTimeout: defaultBlockTimeout,
		Pipeline:     p,
	}
}

func (i *Input) tmpKey() string {
	return fmt.Sprintf("%s.tmp.%d", i.QueueKey, i.WorkerID)
}

func (i *Input) Run(ctx context.Context) {
	tmp := i.tmpKey()
	i.drain(ctx, tmp)

	timeout := i.BlockTimeout
	if timeout <= 0 {
		timeout = defaultBlockTimeout
	}

	for {
		if ctx.Err() != nil {
			return
		}

		val, err := i.Client.BRPopLPush(ctx, i.QueueKey, tmp, timeout).Result()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			log.Errorf("redis input: brpoplpush %s: %v", i.QueueKey, err)
			return
		}

		raw := []byte(val)
		if procErr := i.Pipeline.Handle(raw); procErr != nil {
			log.DecodeError(input.ErrKind(procErr), raw)
		}

		if err := i.Client.LRem(ctx, tmp, 1, val).Err(); err != nil {
			log.Warnf("redis input: lrem %s: %v", tmp, err)
		}
	}
}

// drain recovers items left in the per-worker temporary list by a prior
// run that was interrupted mid-item, pushing them back onto the shared
// queue so no item already moved out of queueKey is lost.
func (i *Input) drain(ctx context.Context, tmp string) {
	for {
		_, err := i.Client.RPopLPush(ctx, tmp, i.QueueKey).Result()
		if err != nil {
			if !errors.Is(err, goredis.Nil) {
				log.Warnf("redis input: drain %s: %v", tmp, err)
			}
			return
		}
	}
}
