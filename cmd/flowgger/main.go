// Command flowgger runs a relay process: one configured input leg decodes
// and re-encodes records onto a bounded queue, and one configured output
// leg drains that queue to a sink. See internal/config for the recognized
// configuration keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/flowgger-go/flowgger/internal/config"
	"github.com/flowgger-go/flowgger/internal/factory"
	"github.com/flowgger-go/flowgger/internal/statusserver"
	"github.com/flowgger-go/flowgger/pkg/input"
	"github.com/flowgger-go/flowgger/pkg/log"
	"github.com/flowgger-go/flowgger/pkg/pipeline"
	"github.com/flowgger-go/flowgger/pkg/queue"
)

func main() {
	configFile := "flowgger.toml"
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}

	if err := config.Load(configFile); err != nil {
		fmt.Fprintf(os.Stderr, "flowgger: %s\n", err)
		os.Exit(1)
	}

	log.SetLevel(config.Keys.LogLevel)
	log.SetDateTime(config.Keys.LogDate)

	if err := run(config.Keys); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config) error {
	splitter, err := factory.BuildSplitter(cfg.Input.Framing)
	if err != nil {
		return fmt.Errorf("build splitter: %w", err)
	}
	decoder, err := factory.BuildDecoder(&cfg.Input)
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	encoder, err := factory.BuildEncoder(&cfg.Output)
	if err != nil {
		return fmt.Errorf("build encoder: %w", err)
	}
	merger, err := factory.BuildMerger(cfg.Output.Framing)
	if err != nil {
		return fmt.Errorf("build merger: %w", err)
	}
	out, err := factory.BuildOutput(&cfg)
	if err != nil {
		return fmt.Errorf("build output: %w", err)
	}

	q := queue.New(cfg.Input.QueueSize)
	counters := &statusserver.Counters{}
	pl := input.Pipeline{
		Decoder:   decoder,
		Encoder:   encoder,
		Queue:     q,
		OnDecoded: counters.OnDecoded,
		OnEncoded: counters.OnEncoded,
		OnDropped: counters.OnDropped,
	}

	in, err := factory.BuildInput(&cfg, splitter, pl)
	if err != nil {
		return fmt.Errorf("build input: %w", err)
	}

	p := &pipeline.Pipeline{
		Queue:   q,
		Inputs:  []input.Input{in},
		Outputs: []pipeline.OutputBinding{{Output: out, Merger: merger}},
	}

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup

	if cfg.Status.Enabled {
		status := statusserver.New(cfg.Status.Listen, counters, p.Queue)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := status.Run(ctx); err != nil {
				log.Errorf("status server: %s", err)
			}
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("shutting down")
		cancel()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Run(ctx)
	}()

	wg.Wait()
	log.Info("shutdown complete")
	return nil
}
