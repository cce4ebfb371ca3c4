// Package rfc3164 decodes BSD syslog (RFC 3164) messages. Two shapes are
// accepted: the standard "MMM dd HH:MM:SS HOSTNAME MSG" wire form, and a
// custom "HOSTNAME: [YYYY ]MMM dd HH:MM:SS[ TZ]: MSG" form seen from some
// appliances that put the hostname first. appname/procid/msgid are not
// part of RFC 3164 and are never populated.
package rfc3164

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/flowgger-go/flowgger/pkg/decoder"
	"github.com/flowgger-go/flowgger/pkg/log"
	"github.com/flowgger-go/flowgger/pkg/record"
)

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

var priRe = regexp.MustCompile(`^<(\d{1,3})>`)

var standardRe = regexp.MustCompile(
	`^([A-Za-z]{3})\s+(\d{1,2})\s+(\d{2}):(\d{2}):(\d{2})\s+(\S+)\s(.*)$`)

var customRe = regexp.MustCompile(
	`^(\S+):\s+(?:(\d{4})\s+)?([A-Za-z]{3})\s+(\d{1,2})\s+(\d{2}):(\d{2}):(\d{2})(?:\s+([A-Za-z_/]+))?:\s*(.*)$`)

// Now is overridable in tests; defaults to the wall clock for year
// inference when the wire form omits a year.
var Now = func() time.Time { return time.Now().UTC() }

type Decoder struct{}

func New() Decoder { return Decoder{} }

func (Decoder) Decode(raw []byte) (record.Record, error) {
	var r record.Record
	full := strings.TrimRight(string(raw), "\r\n")
	r.FullMsg = record.Str(full)

	s := full
	if m := priRe.FindStringSubmatch(s); m != nil {
		pri, err := strconv.Atoi(m[1])
		if err != nil || pri < 0 || pri > 191 {
			return r, decoder.ErrMalformed("invalid PRI " + m[1])
		}
		facility := uint8(pri / 8)
		severity := uint8(pri % 8)
		r.Facility = &facility
		r.Severity = &severity
		s = s[len(m[0]):]
	}

	if m := standardRe.FindStringSubmatch(s); m != nil {
		if mon, ok := months[m[1]]; ok {
			ts, err := buildTimestamp(mon, m[2], m[3], m[4], m[5], "")
			if err != nil {
				return r, decoder.ErrInvalidTimestamp(err.Error())
			}
			r.TS = ts
			r.Hostname = m[6]
			if r.Hostname == "" {
				return r, decoder.ErrMissingField("hostname")
			}
			r.Msg = record.Str(m[7])
			return r, nil
		}
	}

	if m := customRe.FindStringSubmatch(s); m != nil {
		if mon, ok := months[m[3]]; ok {
			hostname := m[1]
			if hostname == "" {
				return r, decoder.ErrMissingField("hostname")
			}
			ts, err := buildTimestampYear(mon, m[2], m[4], m[5], m[6], m[7])
			if err != nil {
				return r, decoder.ErrInvalidTimestamp(err.Error())
			}
			r.TS = ts
			r.Hostname = hostname
			r.Msg = record.Str(m[9])
			return r, nil
		}
	}

	return r, decoder.ErrMalformed("unrecognized rfc3164 framing")
}

func buildTimestamp(mon time.Month, day, hh, mm, ss, tz string) (float64, error) {
	return buildTimestampYear(mon, "", day, hh, mm, ss, tz)
}

// buildTimestampYear builds the canonical ts from the decoded components.
// An empty year string means "infer the current UTC year". An unrecognized
// or empty tz is treated as UTC: the original tolerates an unknown zone
// name by falling back to UTC with a logged warning rather than failing
// the decode.
func buildTimestampYear(mon time.Month, yearStr, dayStr, hh, mm, ss string, args ...string) (float64, error) {
	var tz string
	if len(args) > 0 {
		tz = args[0]
	}
	day, err := strconv.Atoi(strings.TrimSpace(dayStr))
	if err != nil {
		return 0, err
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return 0, err
	}
	min, err := strconv.Atoi(mm)
	if err != nil {
		return 0, err
	}
	sec, err := strconv.Atoi(ss)
	if err != nil {
		return 0, err
	}

	year := Now().Year()
	if yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			return 0, err
		}
		year = y
	}

	loc := time.UTC
	if tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		} else {
			// unrecognized zone: fall back to UTC rather than failing decode
			log.Warnf("rfc3164: unknown time zone %q, using UTC", tz)
		}
	}

	t := time.Date(year, mon, day, hour, min, sec, 0, loc).UTC()
	return record.TSFromTime(t), nil
}
