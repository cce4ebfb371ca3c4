// Package rfc5424 decodes RFC 5424 syslog messages
// ("<PRI>1 TIMESTAMP HOSTNAME APPNAME PROCID MSGID SD [MSG]") into Records.
package rfc5424

import (
	"strconv"
	"strings"
	"time"

	"github.com/flowgger-go/flowgger/pkg/decoder"
	"github.com/flowgger-go/flowgger/pkg/record"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Decoder is immutable and safe for concurrent, repeated use.
type Decoder struct{}

func New() Decoder { return Decoder{} }

func (Decoder) Decode(raw []byte) (record.Record, error) {
	var r record.Record

	if len(raw) >= len(bom) && string(raw[:len(bom)]) == string(bom) {
		raw = raw[len(bom):]
	}

	s := string(raw)
	if len(s) == 0 || s[0] != '<' {
		return r, decoder.ErrMalformed("missing leading '<'")
	}

	closeIdx := strings.IndexByte(s, '>')
	if closeIdx < 2 || closeIdx > 5 {
		return r, decoder.ErrMalformed("missing or oversized PRI")
	}
	priStr := s[1:closeIdx]
	pri, err := strconv.Atoi(priStr)
	if err != nil || pri < 0 || pri > 191 {
		return r, decoder.ErrMalformed("invalid PRI " + priStr)
	}
	facility := uint8(pri / 8)
	severity := uint8(pri % 8)
	r.Facility = &facility
	r.Severity = &severity

	rest := s[closeIdx+1:]

	field, rest, ok := nextField(rest)
	if !ok || field != "1" {
		return r, decoder.ErrUnsupportedVersion(field)
	}

	tsField, rest, ok := nextField(rest)
	if !ok {
		return r, decoder.ErrMissingField("timestamp")
	}
	ts, err := parseTimestamp(tsField)
	if err != nil {
		return r, decoder.ErrInvalidTimestamp(err.Error())
	}
	r.TS = ts

	hostField, rest, ok := nextField(rest)
	if !ok || hostField == "" {
		return r, decoder.ErrMissingField("hostname")
	}
	if hostField == "-" {
		return r, decoder.ErrMissingField("hostname")
	}
	r.Hostname = hostField

	appField, rest, ok := nextField(rest)
	if !ok {
		return r, decoder.ErrMissingField("appname")
	}
	if appField != "-" {
		r.AppName = record.Str(appField)
	}

	procField, rest, ok := nextField(rest)
	if !ok {
		return r, decoder.ErrMissingField("procid")
	}
	if procField != "-" {
		r.ProcID = record.Str(procField)
	}

	msgidField, rest, ok := nextField(rest)
	if !ok {
		return r, decoder.ErrMissingField("msgid")
	}
	if msgidField != "-" {
		r.MsgID = record.Str(msgidField)
	}

	sd, remainder, err := parseSD(rest)
	if err != nil {
		return r, err
	}
	r.SD = sd

	remainder = strings.TrimPrefix(remainder, " ")
	if remainder != "" {
		r.Msg = record.Str(remainder)
	}

	return r, nil
}

// nextField splits off the next space-delimited token. ok is false only
// when rest is empty and no field could be read at all.
func nextField(rest string) (field, remainder string, ok bool) {
	if rest == "" {
		return "", "", false
	}
	rest = strings.TrimPrefix(rest, " ")
	idx := strings.IndexByte(rest, ' ')
	if idx < 0 {
		return rest, "", true
	}
	return rest[:idx], rest[idx+1:], true
}

func parseTimestamp(s string) (float64, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, err
	}
	return record.TSFromTime(t), nil
}

// sdState is the explicit per-character state machine for the SD grammar,
// per the design note: outside a block, reading a name, just after a name
// (expecting '='), inside a quoted value, and mid value-escape.
type sdState int

const (
	stOutside sdState = iota
	stInName
	stAfterName
	stInValue
	stEscaped
)

func isNameChar(b byte) bool {
	if b < 33 || b > 126 {
		return false
	}
	switch b {
	case ' ', '"', '=', ']':
		return false
	}
	return true
}

// parseSD parses either "-" (no SD) or one-or-more consecutive "[...]"
// blocks, returning the parsed blocks and whatever text follows the last
// one (the message, still possibly prefixed with a space).
func parseSD(s string) ([]record.StructuredData, string, error) {
	if strings.HasPrefix(s, "-") {
		return nil, s[1:], nil
	}

	var blocks []record.StructuredData
	for strings.HasPrefix(s, "[") {
		block, remainder, err := parseOneSD(s)
		if err != nil {
			return nil, "", err
		}
		blocks = append(blocks, block)
		s = remainder
	}
	return blocks, s, nil
}

func parseOneSD(s string) (record.StructuredData, string, error) {
	var block record.StructuredData
	i := 1 // skip '['
	n := len(s)

	start := i
	for i < n && isNameChar(s[i]) {
		i++
	}
	if i == start {
		return block, "", decoder.ErrMalformed("empty sd-id")
	}
	sdID := s[start:i]
	block.SDID = record.Str(sdID)

	state := stOutside
	var name strings.Builder
	var value strings.Builder

	for i < n {
		c := s[i]
		switch state {
		case stOutside:
			if c == ']' {
				i++
				return block, s[i:], nil
			}
			if c == ' ' {
				i++
				continue
			}
			if isNameChar(c) {
				state = stInName
				name.Reset()
				name.WriteByte(c)
				i++
				continue
			}
			return block, "", decoder.ErrMalformed("unexpected byte in sd block")
		case stInName:
			if isNameChar(c) {
				name.WriteByte(c)
				i++
				continue
			}
			if c == '=' {
				state = stAfterName
				i++
				continue
			}
			return block, "", decoder.ErrMalformed("malformed sd-name")
		case stAfterName:
			if c != '"' {
				return block, "", decoder.ErrMalformed("expected quoted value")
			}
			state = stInValue
			value.Reset()
			i++
			continue
		case stInValue:
			switch c {
			case '\\':
				state = stEscaped
				i++
			case '"':
				block.Pairs = append(block.Pairs, record.SDPair{
					Name:  "_" + name.String(),
					Value: record.String(value.String()),
				})
				state = stOutside
				i++
			default:
				value.WriteByte(c)
				i++
			}
		case stEscaped:
			switch c {
			case '\\', '"', ']':
				value.WriteByte(c)
			default:
				value.WriteByte('\\')
				value.WriteByte(c)
			}
			state = stInValue
			i++
		}
	}

	return block, "", decoder.ErrMalformed("unterminated sd block")
}
