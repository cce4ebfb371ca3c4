// Package factory builds the concrete Input/Output/Decoder/Encoder/
// Splitter/Merger instances a configuration describes, the same role the
// teacher's cmd/cc-backend server-wiring code plays for its own
// resolvers and middleware.
package factory

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/nats-io/nats.go"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/flowgger-go/flowgger/internal/config"
	"github.com/flowgger-go/flowgger/pkg/decoder"
	decgelf "github.com/flowgger-go/flowgger/pkg/decoder/gelf"
	decltsv "github.com/flowgger-go/flowgger/pkg/decoder/ltsv"
	decrfc3164 "github.com/flowgger-go/flowgger/pkg/decoder/rfc3164"
	decrfc5424 "github.com/flowgger-go/flowgger/pkg/decoder/rfc5424"
	"github.com/flowgger-go/flowgger/pkg/decoder/avrorecord"
	"github.com/flowgger-go/flowgger/pkg/encoder"
	encgelf "github.com/flowgger-go/flowgger/pkg/encoder/gelf"
	encltsv "github.com/flowgger-go/flowgger/pkg/encoder/ltsv"
	encrfc3164 "github.com/flowgger-go/flowgger/pkg/encoder/rfc3164"
	encrfc5424 "github.com/flowgger-go/flowgger/pkg/encoder/rfc5424"
	encavro "github.com/flowgger-go/flowgger/pkg/encoder/avrorecord"
	"github.com/flowgger-go/flowgger/pkg/encoder/passthrough"
	"github.com/flowgger-go/flowgger/pkg/input"
	"github.com/flowgger-go/flowgger/pkg/input/filetail"
	inputnats "github.com/flowgger-go/flowgger/pkg/input/nats"
	"github.com/flowgger-go/flowgger/pkg/input/redis"
	"github.com/flowgger-go/flowgger/pkg/input/stdin"
	"github.com/flowgger-go/flowgger/pkg/input/tcp"
	inputtls "github.com/flowgger-go/flowgger/pkg/input/tls"
	"github.com/flowgger-go/flowgger/pkg/input/udp"
	"github.com/flowgger-go/flowgger/pkg/merger"
	mergerline "github.com/flowgger-go/flowgger/pkg/merger/line"
	mergernoop "github.com/flowgger-go/flowgger/pkg/merger/noop"
	mergernul "github.com/flowgger-go/flowgger/pkg/merger/nul"
	mergersyslen "github.com/flowgger-go/flowgger/pkg/merger/syslen"
	"github.com/flowgger-go/flowgger/pkg/output"
	"github.com/flowgger-go/flowgger/pkg/output/debug"
	"github.com/flowgger-go/flowgger/pkg/output/file"
	"github.com/flowgger-go/flowgger/pkg/output/kafka"
	outputnats "github.com/flowgger-go/flowgger/pkg/output/nats"
	outputtls "github.com/flowgger-go/flowgger/pkg/output/tls"
	"github.com/flowgger-go/flowgger/pkg/splitter"
	splitline "github.com/flowgger-go/flowgger/pkg/splitter/line"
	splitnul "github.com/flowgger-go/flowgger/pkg/splitter/nul"
	splitavro "github.com/flowgger-go/flowgger/pkg/splitter/avrorecord"
	splitsyslen "github.com/flowgger-go/flowgger/pkg/splitter/syslen"
)

// BuildDecoder resolves input.format to a concrete decoder.
func BuildDecoder(c *config.InputConfig) (decoder.Decoder, error) {
	switch c.Format {
	case "rfc5424":
		return decrfc5424.New(), nil
	case "rfc3164":
		return decrfc3164.New(), nil
	case "gelf":
		return decgelf.New(), nil
	case "ltsv":
		schema := make(decltsv.Schema, len(c.LTSVSchema))
		for k, v := range c.LTSVSchema {
			schema[k] = decltsv.FieldType(v)
		}
		suffixes := make(decltsv.Suffixes, len(c.LTSVSuffixes))
		for k, v := range c.LTSVSuffixes {
			suffixes[decltsv.FieldType(k)] = v
		}
		return decltsv.New(schema, suffixes), nil
	case "capnp":
		return avrorecord.New(), nil
	default:
		return nil, fmt.Errorf("factory: unrecognized input.format %q", c.Format)
	}
}

// BuildEncoder resolves output.format to a concrete encoder.
func BuildEncoder(c *config.OutputConfig) (encoder.Encoder, error) {
	switch c.Format {
	case "rfc5424":
		return encrfc5424.New(), nil
	case "rfc3164":
		return encrfc3164.New(c.SyslogPrependTimestamp), nil
	case "gelf", "json":
		return encgelf.NewWithExtra(c.GELFExtra), nil
	case "ltsv":
		return encltsv.NewWithExtra(c.LTSVExtra), nil
	case "capnp":
		return encavro.NewWithExtra(c.CapnpExtra), nil
	case "passthrough":
		return passthrough.NewWithPrepend(c.SyslogPrependTimestamp), nil
	default:
		return nil, fmt.Errorf("factory: unrecognized output.format %q", c.Format)
	}
}

// BuildSplitter resolves input.framing to a concrete splitter.
func BuildSplitter(framing string) (splitter.Splitter, error) {
	switch framing {
	case "line":
		return splitline.New(nil), nil
	case "nul":
		return splitnul.New(), nil
	case "syslen":
		return splitsyslen.New(), nil
	case "capnp":
		return splitavro.New(), nil
	default:
		return nil, fmt.Errorf("factory: unrecognized input.framing %q", framing)
	}
}

// BuildMerger resolves output.framing to a concrete merger.
func BuildMerger(framing string) (merger.Merger, error) {
	switch framing {
	case "noop", "capnp":
		// capnp output is self-framed, so it gets no delimiter.
		return mergernoop.New(), nil
	case "line":
		return mergerline.New(), nil
	case "nul":
		return mergernul.New(), nil
	case "syslen":
		return mergersyslen.New(), nil
	default:
		return nil, fmt.Errorf("factory: unrecognized output.framing %q", framing)
	}
}

// BuildTLSConfig turns a config.TLSConfig into a *tls.Config, loading the
// optional client cert/key and CA bundle and selecting the named cipher
// table for the requested compatibility level.
func BuildTLSConfig(c config.TLSConfig) (*tls.Config, error) {
	tc := &tls.Config{MinVersion: tls.VersionTLS12}

	if c.CompatibilityLevel != "" {
		suites, ok := config.CipherSuites[c.CompatibilityLevel]
		if !ok {
			return nil, fmt.Errorf("factory: unrecognized tls.compatibility_level %q", c.CompatibilityLevel)
		}
		tc.CipherSuites = suites
	}

	if c.CertFile != "" && c.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("factory: load tls keypair: %w", err)
		}
		tc.Certificates = []tls.Certificate{cert}
	}

	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("factory: read ca file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("factory: no certificates found in %s", c.CAFile)
		}
		tc.RootCAs = pool
		tc.ClientCAs = pool
	}

	if c.VerifyPeer {
		tc.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return tc, nil
}

// BuildInput constructs the configured input, wired to p.
func BuildInput(c *config.Config, sp splitter.Splitter, p input.Pipeline) (input.Input, error) {
	switch c.Input.Type {
	case "tcp":
		in := tcp.New(c.Input.Listen, sp, p)
		if c.Input.Timeout > 0 {
			in.Timeout = secondsToDuration(c.Input.Timeout)
		}
		return in, nil
	case "tls":
		tc, err := BuildTLSConfig(c.Input.TLS)
		if err != nil {
			return nil, err
		}
		in := inputtls.New(c.Input.Listen, tc, sp, p)
		if c.Input.Timeout > 0 {
			in.Timeout = secondsToDuration(c.Input.Timeout)
		}
		return in, nil
	case "udp":
		return udp.New(c.Input.Listen, p), nil
	case "stdin":
		return stdin.New(sp, p), nil
	case "file":
		return filetail.New(c.Input.FileTailGlob, sp, p), nil
	case "redis":
		addr := c.Input.RedisAddr
		if addr == "" {
			addr = "127.0.0.1:6379"
		}
		client := goredis.NewClient(&goredis.Options{Addr: addr})
		return redis.New(client, c.Input.RedisQueueKey, c.Input.RedisWorkerID, p), nil
	case "nats":
		conn, err := nats.Connect(c.Input.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("factory: connect nats: %w", err)
		}
		return inputnats.New(conn, c.Input.NATSSubject, p), nil
	default:
		return nil, fmt.Errorf("factory: unrecognized input.type %q", c.Input.Type)
	}
}

// BuildOutput constructs the configured output sink.
func BuildOutput(c *config.Config) (output.Output, error) {
	switch c.Output.Type {
	case "tls":
		tc, err := BuildTLSConfig(c.Output.TLS)
		if err != nil {
			return nil, err
		}
		out := outputtls.New(c.Output.Connect, tc)
		out.AsyncFlush = c.Output.TLS.Async
		if c.Output.TLS.RecoveryDelayInit > 0 {
			out.RecoveryDelayInit = msToDuration(c.Output.TLS.RecoveryDelayInit)
		}
		if c.Output.TLS.RecoveryDelayMax > 0 {
			out.RecoveryDelayMax = msToDuration(c.Output.TLS.RecoveryDelayMax)
		}
		if c.Output.TLS.RecoveryProbeTime > 0 {
			out.RecoveryProbeTime = msToDuration(c.Output.TLS.RecoveryProbeTime)
		}
		if c.Output.TLS.Threads > 0 {
			out.WorkerCount = c.Output.TLS.Threads
		}
		return out, nil
	case "file":
		out := file.New(c.Output.FilePath)
		if c.Output.FileRotationSize > 0 {
			out.MaxSizeBytes = c.Output.FileRotationSize
		}
		if c.Output.FileRotationTime > 0 {
			out.MaxTime = minutesToDuration(c.Output.FileRotationTime)
		}
		if c.Output.FileRotationMaxFiles > 0 {
			out.MaxFiles = c.Output.FileRotationMaxFiles
		}
		if c.Output.FileBufferSize > 0 {
			out.BufferSize = c.Output.FileBufferSize
		}
		return out, nil
	case "kafka":
		client, err := kgo.NewClient(kgo.SeedBrokers(c.Output.KafkaBrokers...))
		if err != nil {
			return nil, fmt.Errorf("factory: kafka client: %w", err)
		}
		return kafka.New(client, c.Output.KafkaTopic), nil
	case "nats":
		conn, err := nats.Connect(c.Output.NATSURL)
		if err != nil {
			return nil, fmt.Errorf("factory: connect nats: %w", err)
		}
		return outputnats.New(conn, c.Output.NATSSubject), nil
	case "debug":
		return debug.New(), nil
	default:
		return nil, fmt.Errorf("factory: unrecognized output.type %q", c.Output.Type)
	}
}

func secondsToDuration(n int) time.Duration { return time.Duration(n) * time.Second }
func msToDuration(n int) time.Duration      { return time.Duration(n) * time.Millisecond }
func minutesToDuration(n int) time.Duration { return time.Duration(n) * time.Minute }
