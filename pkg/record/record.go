// Package record defines the canonical in-memory event that every decoder
// produces and every encoder consumes. A Record is built once by a decoder,
// handed to exactly one encoder, and never mutated in between.
package record

import "math"

// Record is the canonical syslog-ish event flowing through the relay.
type Record struct {
	// TS is Unix seconds with sub-second precision (nanoseconds
	// representable as a fractional part). Must be > 0 and finite.
	TS float64

	// Hostname is required and must be non-empty.
	Hostname string

	Facility *uint8 // 0..31
	Severity *uint8 // 0..7

	AppName *string
	ProcID  *string
	MsgID   *string

	Msg     *string
	FullMsg *string

	// SD keeps the block and key order the decoder produced; encoders
	// reproduce it verbatim. Keys are not deduplicated. The GELF decoder
	// does not keep the source object's key order.
	SD []StructuredData
}

// StructuredData is one RFC 5424-style bracketed block.
type StructuredData struct {
	SDID  *string
	Pairs []SDPair
}

// SDPair is one ordered (name, value) entry within a StructuredData block.
type SDPair struct {
	Name  string
	Value SDValue
}

// Kind discriminates the SDValue union.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindF64
	KindI64
	KindU64
)

// SDValue is a tagged union over the value types a structured-data pair, or
// a GELF/LTSV extension field, may carry on the wire.
type SDValue struct {
	Kind Kind
	Str  string
	Bool bool
	F64  float64
	I64  int64
	U64  uint64
}

func Null() SDValue               { return SDValue{Kind: KindNull} }
func String(s string) SDValue     { return SDValue{Kind: KindString, Str: s} }
func Bool(b bool) SDValue         { return SDValue{Kind: KindBool, Bool: b} }
func F64(f float64) SDValue       { return SDValue{Kind: KindF64, F64: f} }
func I64(i int64) SDValue         { return SDValue{Kind: KindI64, I64: i} }
func U64(u uint64) SDValue        { return SDValue{Kind: KindU64, U64: u} }

// Valid reports whether the invariants from the data model hold: severity
// <= 7 and facility <= 31 whenever set, ts finite and positive, hostname
// non-empty.
func (r *Record) Valid() bool {
	if r.Hostname == "" {
		return false
	}
	if r.TS <= 0 || math.IsNaN(r.TS) || math.IsInf(r.TS, 0) {
		return false
	}
	if r.Severity != nil && *r.Severity > 7 {
		return false
	}
	if r.Facility != nil && *r.Facility > 31 {
		return false
	}
	return true
}

// PRI computes facility*8+severity when both are present, false otherwise.
func (r *Record) PRI() (uint8, bool) {
	if r.Facility == nil || r.Severity == nil {
		return 0, false
	}
	return *r.Facility*8 + *r.Severity, true
}

func U8(v uint8) *uint8    { return &v }
func Str(v string) *string { return &v }
