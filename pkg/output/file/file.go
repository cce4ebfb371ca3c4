// Package file implements the rotating file output sink: a single writer
// goroutine appends encoded records to a file, rotating by size and/or
// elapsed wall time with a bounded number of retained files.
package file

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/flowgger-go/flowgger/pkg/log"
	"github.com/flowgger-go/flowgger/pkg/merger"
	"github.com/flowgger-go/flowgger/pkg/queue"
	"github.com/flowgger-go/flowgger/pkg/record"
)

// Output appends to BasePath, rotating according to MaxSizeBytes and/or
// MaxTime. Both zero means a single appending writer with no rotation.
type Output struct {
	BasePath     string
	MaxSizeBytes int64
	MaxTime      time.Duration
	MaxFiles     int
	TimeFormat   string
	BufferSize   int

	clock record.Clock
}

func New(basePath string) *Output {
	return &Output{BasePath: basePath, MaxFiles: 10, TimeFormat: "20060102T150405", clock: record.SystemClock{}}
}

// Workers is always 1: the file handle is owned by exactly one writer
// goroutine per sink. In time-rotation mode the scheduled idle check also
// rotates it, holding the same mutex as the writer.
func (*Output) Workers() int { return 1 }

func (o *Output) sizeMode() bool { return o.MaxSizeBytes > 0 && o.MaxTime == 0 }
func (o *Output) timeMode() bool { return o.MaxTime > 0 }

func (o *Output) Run(ctx context.Context, q *queue.Queue, m merger.Merger) {
	clock := o.clock
	if clock == nil {
		clock = record.SystemClock{}
	}

	w, err := o.open(clock)
	if err != nil {
		log.Errorf("file output: %v", err)
		return
	}
	defer w.close()

	// A cron-scheduled poll drives time-based rotation even during a lull
	// with no incoming records, so a sink that has gone idle still rotates
	// on schedule instead of only when the next write arrives.
	var mu sync.Mutex
	var sched *cron.Cron
	if o.timeMode() {
		sched = cron.New()
		sched.AddFunc("@every 30s", func() {
			mu.Lock()
			defer mu.Unlock()
			if clock.NowUTC().Sub(w.openedAt) >= o.MaxTime {
				if err := w.rotateTime(o, clock); err != nil {
					log.Errorf("file output: scheduled rotation: %v", err)
				}
			}
		})
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	for {
		v, ok := q.Dequeue()
		if !ok {
			return
		}
		data := m.Merge(v)

		mu.Lock()
		if o.sizeMode() && w.size+int64(len(data)) > o.MaxSizeBytes {
			if err := w.rotateSize(o); err != nil {
				mu.Unlock()
				log.Errorf("file output: rotate: %v", err)
				return
			}
		} else if o.timeMode() {
			needRotate := clock.NowUTC().Sub(w.openedAt) >= o.MaxTime
			if !needRotate && o.MaxSizeBytes > 0 && w.size+int64(len(data)) > o.MaxSizeBytes {
				needRotate = true
			}
			if needRotate {
				if err := w.rotateTime(o, clock); err != nil {
					mu.Unlock()
					log.Errorf("file output: rotate: %v", err)
					return
				}
			}
		}

		n, err := w.write(data)
		if err != nil {
			mu.Unlock()
			log.Errorf("file output: write: %v", err)
			return
		}
		w.size += int64(n)
		mu.Unlock()

		if ctx.Err() != nil {
			return
		}
	}
}

type fileWriter struct {
	f        *os.File
	buf      *bufio.Writer
	path     string
	size     int64
	openedAt time.Time
}

func (o *Output) open(clock record.Clock) (*fileWriter, error) {
	path := o.BasePath
	if o.timeMode() {
		path = timestampedPath(o.BasePath, o.TimeFormat, clock.NowUTC())
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	w := &fileWriter{f: f, path: path, size: info.Size(), openedAt: clock.NowUTC()}
	if o.BufferSize > 0 && !o.sizeMode() && !o.timeMode() {
		w.buf = bufio.NewWriterSize(f, o.BufferSize)
	}
	return w, nil
}

func (w *fileWriter) write(data []byte) (int, error) {
	if w.buf != nil {
		n, err := w.buf.Write(data)
		if err == nil {
			err = w.buf.Flush()
		}
		return n, err
	}
	return w.f.Write(data)
}

func (w *fileWriter) close() {
	if w.buf != nil {
		w.buf.Flush()
	}
	w.f.Close()
}

// rotateSize implements the size-mode rename chain: base.{n} -> base.{n+1}
// for n from max_files-2 down to 0, then base -> base.0, then a fresh base
// is opened. The oldest retained file is overwritten.
func (w *fileWriter) rotateSize(o *Output) error {
	w.close()

	maxFiles := o.MaxFiles
	if maxFiles < 1 {
		maxFiles = 1
	}
	for n := maxFiles - 2; n >= 0; n-- {
		src := fmt.Sprintf("%s.%d", o.BasePath, n)
		dst := fmt.Sprintf("%s.%d", o.BasePath, n+1)
		if _, err := os.Stat(src); err == nil {
			os.Rename(src, dst)
		}
	}
	if _, err := os.Stat(o.BasePath); err == nil {
		if err := os.Rename(o.BasePath, o.BasePath+".0"); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(o.BasePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.f = f
	w.path = o.BasePath
	w.size = 0
	w.openedAt = time.Now().UTC()
	return nil
}

// rotateTime closes the current timestamped file and opens a new one;
// historical files are left untouched (max_files does not apply here).
func (w *fileWriter) rotateTime(o *Output, clock record.Clock) error {
	w.close()

	now := clock.NowUTC()
	path := timestampedPath(o.BasePath, o.TimeFormat, now)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w.f = f
	w.path = path
	w.size = 0
	w.openedAt = now
	return nil
}

func timestampedPath(base, timeFormat string, t time.Time) string {
	dir := filepath.Dir(base)
	name := filepath.Base(base)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	stamped := fmt.Sprintf("%s-%s%s", stem, t.Format(timeFormat), ext)
	return filepath.Join(dir, stamped)
}
