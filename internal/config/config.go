// Package config loads and validates the TOML configuration file that
// describes one input leg and one output leg of a relay process. It
// follows the teacher's decode-then-validate, fatal-on-error shape: a
// package-level Keys struct is seeded with defaults, Load decodes the
// file on top of it, and Validate rejects anything the decode step's
// zero-value defaulting can't catch on its own (missing required fields,
// out-of-range enums).
package config

import (
	"crypto/tls"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// CipherSuites maps a compatibility_level name to its cipher-suite table,
// matching the two Mozilla-style profiles (intermediate, modern) the
// original relay hardcoded.
var CipherSuites = map[string][]uint16{
	"intermediate": {
		tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
		tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
		tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
		tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
	},
	"modern": {
		tls.TLS_AES_128_GCM_SHA256,
		tls.TLS_AES_256_GCM_SHA384,
		tls.TLS_CHACHA20_POLY1305_SHA256,
	},
}

// TLSConfig holds one leg's TLS settings, shared by both legs since the
// shape is symmetric. The keys are read from the leg's nested tls table
// ([input.tls], [output.tls]); flat tls_-prefixed keys directly under
// [input] or [output] are not recognized.
type TLSConfig struct {
	CertFile           string   `toml:"cert_file"`
	KeyFile            string   `toml:"key_file"`
	CAFile             string   `toml:"ca_file"`
	Ciphers            []string `toml:"ciphers"`
	VerifyPeer         bool     `toml:"verify_peer"`
	Compression        bool     `toml:"compression"`
	CompatibilityLevel string   `toml:"compatibility_level"`
	Threads            int      `toml:"threads"`

	Async             bool `toml:"async"`
	RecoveryDelayInit int  `toml:"recovery_delay_init"`
	RecoveryDelayMax  int  `toml:"recovery_delay_max"`
	RecoveryProbeTime int  `toml:"recovery_probe_time"`
}

type InputConfig struct {
	Type      string `toml:"type"`
	Format    string `toml:"format"`
	Framing   string `toml:"framing"`
	Listen    string `toml:"listen"`
	Timeout   int    `toml:"timeout"`
	QueueSize int    `toml:"queuesize"`

	TLS TLSConfig `toml:"tls"`

	LTSVSchema   map[string]string `toml:"ltsv_schema"`
	LTSVSuffixes map[string]string `toml:"ltsv_suffixes"`

	RedisAddr     string `toml:"redis_addr"`
	RedisQueueKey string `toml:"redis_queue_key"`
	RedisWorkerID int    `toml:"redis_worker_id"`

	FileTailGlob string `toml:"file_tail_glob"`

	NATSURL     string `toml:"nats_url"`
	NATSSubject string `toml:"nats_subject"`
}

type OutputConfig struct {
	Type    string   `toml:"type"`
	Format  string   `toml:"format"`
	Framing string   `toml:"framing"`
	Connect []string `toml:"connect"`

	TLS TLSConfig `toml:"tls"`

	FilePath             string `toml:"file_path"`
	FileBufferSize       int    `toml:"file_buffer_size"`
	FileRotationSize     int64  `toml:"file_rotation_size"`
	FileRotationTime     int    `toml:"file_rotation_time"`
	FileRotationMaxFiles int    `toml:"file_rotation_maxfiles"`

	KafkaBrokers []string `toml:"kafka_brokers"`
	KafkaTopic   string   `toml:"kafka_topic"`

	NATSURL     string `toml:"nats_url"`
	NATSSubject string `toml:"nats_subject"`

	SyslogPrependTimestamp string            `toml:"syslog_prepend_timestamp"`
	GELFExtra              map[string]string `toml:"gelf_extra"`
	LTSVExtra              map[string]string `toml:"ltsv_extra"`
	CapnpExtra             map[string]string `toml:"capnp_extra"`
}

type StatusConfig struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

type Config struct {
	LogLevel string       `toml:"loglevel"`
	LogDate  bool         `toml:"logdate"`
	Input    InputConfig  `toml:"input"`
	Output   OutputConfig `toml:"output"`
	Status   StatusConfig `toml:"status"`
}

// Keys holds the active configuration, seeded with the defaults spec.md
// §6 documents for an unconfigured relay.
var Keys = Config{
	LogLevel: "info",
	Input: InputConfig{
		Type:      "tcp",
		Format:    "rfc5424",
		Framing:   "line",
		Listen:    "0.0.0.0:6514",
		Timeout:   3600,
		QueueSize: 10_000_000,
	},
	Output: OutputConfig{
		Type:    "debug",
		Format:  "rfc5424",
		Framing: "noop",
	},
	Status: StatusConfig{
		Enabled: false,
		Listen:  "127.0.0.1:8514",
	},
}

// Load decodes path on top of Keys's defaults and validates the result.
// Unknown keys are rejected the way the teacher's json.Decoder catches
// config typos.
func Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	md, err := toml.NewDecoder(f).Decode(&Keys)
	if err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("decode config: unknown key %q", undecoded[0].String())
	}

	return Validate(&Keys)
}

var validInputTypes = map[string]bool{
	"tcp": true, "tls": true, "udp": true, "stdin": true,
	"file": true, "redis": true, "nats": true,
}

var validInputFormats = map[string]bool{
	"rfc5424": true, "rfc3164": true, "gelf": true, "ltsv": true, "capnp": true,
}

var validFramings = map[string]bool{
	"line": true, "nul": true, "syslen": true, "capnp": true,
}

var validOutputTypes = map[string]bool{
	"tls": true, "file": true, "kafka": true, "debug": true, "nats": true,
}

var validOutputFormats = map[string]bool{
	"rfc5424": true, "rfc3164": true, "gelf": true, "json": true,
	"ltsv": true, "capnp": true, "passthrough": true,
}

var validOutputFramings = map[string]bool{
	"noop": true, "line": true, "nul": true, "syslen": true, "capnp": true,
}

// Validate checks the enum and required-field constraints Load's decode
// step can't enforce on its own.
func Validate(c *Config) error {
	if !validInputTypes[c.Input.Type] {
		return fmt.Errorf("input.type: unrecognized value %q", c.Input.Type)
	}
	if !validInputFormats[c.Input.Format] {
		return fmt.Errorf("input.format: unrecognized value %q", c.Input.Format)
	}
	if !validFramings[c.Input.Framing] {
		return fmt.Errorf("input.framing: unrecognized value %q", c.Input.Framing)
	}
	if !validOutputTypes[c.Output.Type] {
		return fmt.Errorf("output.type: unrecognized value %q", c.Output.Type)
	}
	if !validOutputFormats[c.Output.Format] {
		return fmt.Errorf("output.format: unrecognized value %q", c.Output.Format)
	}
	if !validOutputFramings[c.Output.Framing] {
		return fmt.Errorf("output.framing: unrecognized value %q", c.Output.Framing)
	}

	switch c.Input.Type {
	case "tcp", "tls", "udp":
		if c.Input.Listen == "" {
			return fmt.Errorf("input.listen: required for input.type=%s", c.Input.Type)
		}
	case "redis":
		if c.Input.RedisQueueKey == "" {
			return fmt.Errorf("input.redis_queue_key: required for input.type=redis")
		}
	case "file":
		if c.Input.FileTailGlob == "" {
			return fmt.Errorf("input.file_tail_glob: required for input.type=file")
		}
	case "nats":
		if c.Input.NATSURL == "" || c.Input.NATSSubject == "" {
			return fmt.Errorf("input.nats_url and input.nats_subject: required for input.type=nats")
		}
	}

	switch c.Output.Type {
	case "tls":
		if len(c.Output.Connect) == 0 {
			return fmt.Errorf("output.connect: required for output.type=tls")
		}
	case "file":
		if c.Output.FilePath == "" {
			return fmt.Errorf("output.file_path: required for output.type=file")
		}
	case "kafka":
		if len(c.Output.KafkaBrokers) == 0 || c.Output.KafkaTopic == "" {
			return fmt.Errorf("output.kafka_brokers and output.kafka_topic: required for output.type=kafka")
		}
	case "nats":
		if c.Output.NATSURL == "" || c.Output.NATSSubject == "" {
			return fmt.Errorf("output.nats_url and output.nats_subject: required for output.type=nats")
		}
	}

	return nil
}
