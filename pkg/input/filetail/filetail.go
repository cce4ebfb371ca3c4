// Package filetail implements the file-tail input: a glob pattern seeds
// tailers over the files that already exist (started from the current end
// of file), and a directory watcher spawns a tailer for every new file
// that later matches the pattern. Each tailer reopens its path when the
// underlying file is removed or renamed out from under it, the shape
// log rotation takes.
package filetail

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/flowgger-go/flowgger/pkg/input"
	"github.com/flowgger-go/flowgger/pkg/log"
	"github.com/flowgger-go/flowgger/pkg/splitter"
)

const defaultPollInterval = 500 * time.Millisecond

type Input struct {
	Pattern      string
	Splitter     splitter.Splitter
	Pipeline     input.Pipeline
	PollInterval time.Duration

	mu      sync.Mutex
	tailing map[string]bool
}

func New(pattern string, sp splitter.Splitter, p input.Pipeline) *Input {
	return &Input{
		Pattern:      pattern,
		Splitter:     sp,
		Pipeline:     p,
		PollInterval: defaultPollInterval,
		tailing:      make(map[string]bool),
	}
}

func (i *Input) Run(ctx context.Context) {
	dir := filepath.Dir(i.Pattern)

	existing, err := filepath.Glob(i.Pattern)
	if err != nil {
		log.Errorf("filetail input: glob %s: %v", i.Pattern, err)
		return
	}

	var wg sync.WaitGroup
	for _, path := range existing {
		i.startTailing(ctx, &wg, path, true)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Errorf("filetail input: watcher: %v", err)
		wg.Wait()
		return
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		log.Errorf("filetail input: watch %s: %v", dir, err)
		wg.Wait()
		return
	}

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				wg.Wait()
				return
			}
			if ev.Op&fsnotify.Create == 0 {
				continue
			}
			if matched, _ := filepath.Match(i.Pattern, ev.Name); !matched {
				continue
			}
			i.startTailing(ctx, &wg, ev.Name, false)
		case werr, ok := <-watcher.Errors:
			if !ok {
				wg.Wait()
				return
			}
			log.Warnf("filetail input: watcher: %v", werr)
		}
	}
}

func (i *Input) startTailing(ctx context.Context, wg *sync.WaitGroup, path string, fromEnd bool) {
	i.mu.Lock()
	if i.tailing[path] {
		i.mu.Unlock()
		return
	}
	i.tailing[path] = true
	i.mu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		i.tail(ctx, path, fromEnd)
	}()
}

func (i *Input) tail(ctx context.Context, path string, fromEnd bool) {
	interval := i.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	f, r, err := openTail(path, fromEnd)
	if err != nil {
		log.Errorf("filetail input: open %s: %v", path, err)
		return
	}
	defer f.Close()

	for {
		frame, err := i.Splitter.Next(r)
		if len(frame) > 0 {
			if procErr := i.Pipeline.Handle(frame); procErr != nil {
				log.DecodeError(input.ErrKind(procErr), frame)
			}
		}

		if ctx.Err() != nil {
			return
		}

		if err == nil {
			continue
		}
		if !errors.Is(err, io.EOF) {
			log.Warnf("filetail input: %s: %v", path, err)
			return
		}

		if removed(path) {
			f.Close()
			newF, newR, reopenErr := waitReopen(ctx, path, interval)
			if reopenErr != nil {
				return
			}
			f, r = newF, newR
			continue
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return
		}
	}
}

func openTail(path string, fromEnd bool) (*os.File, *bufio.Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if fromEnd {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			f.Close()
			return nil, nil, err
		}
	}
	return f, bufio.NewReader(f), nil
}

func removed(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, os.ErrNotExist)
}

// waitReopen polls for path to reappear, the way a rotated log file does
// once the writer recreates it, and opens the fresh file from its start.
func waitReopen(ctx context.Context, path string, interval time.Duration) (*os.File, *bufio.Reader, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(interval):
		}

		f, r, err := openTail(path, false)
		if err == nil {
			return f, r, nil
		}
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
	}
}
