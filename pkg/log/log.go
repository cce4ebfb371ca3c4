// Package log provides a leveled logger that writes to stderr with
// syslog-style numeric prefixes, the way a relay process that itself speaks
// syslog ought to report its own diagnostics.
//
// There is no timestamp by default: a process supervisor (systemd, a
// container runtime) usually stamps its own, and duplicating that here only
// clutters stderr. Set logdate = true in the config to enable it anyway.
package log

import (
	"fmt"
	"io"
	"os"
	stdlog "log"
)

var logDateTime bool

var (
	DebugWriter io.Writer = os.Stderr
	NoteWriter  io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrWriter   io.Writer = os.Stderr
	CritWriter  io.Writer = os.Stderr
)

var (
	DebugPrefix string = "<7>[DEBUG]    "
	InfoPrefix  string = "<6>[INFO]     "
	NotePrefix  string = "<5>[NOTICE]   "
	WarnPrefix  string = "<4>[WARNING]  "
	ErrPrefix   string = "<3>[ERROR]    "
	CritPrefix  string = "<2>[CRITICAL] "
)

var (
	debugLog *stdlog.Logger = stdlog.New(DebugWriter, DebugPrefix, 0)
	infoLog  *stdlog.Logger = stdlog.New(InfoWriter, InfoPrefix, 0)
	noteLog  *stdlog.Logger = stdlog.New(NoteWriter, NotePrefix, stdlog.Lshortfile)
	warnLog  *stdlog.Logger = stdlog.New(WarnWriter, WarnPrefix, stdlog.Lshortfile)
	errLog   *stdlog.Logger = stdlog.New(ErrWriter, ErrPrefix, stdlog.Llongfile)
	critLog  *stdlog.Logger = stdlog.New(CritWriter, CritPrefix, stdlog.Llongfile)

	debugTimeLog *stdlog.Logger = stdlog.New(DebugWriter, DebugPrefix, stdlog.LstdFlags)
	infoTimeLog  *stdlog.Logger = stdlog.New(InfoWriter, InfoPrefix, stdlog.LstdFlags)
	noteTimeLog  *stdlog.Logger = stdlog.New(NoteWriter, NotePrefix, stdlog.LstdFlags|stdlog.Lshortfile)
	warnTimeLog  *stdlog.Logger = stdlog.New(WarnWriter, WarnPrefix, stdlog.LstdFlags|stdlog.Lshortfile)
	errTimeLog   *stdlog.Logger = stdlog.New(ErrWriter, ErrPrefix, stdlog.LstdFlags|stdlog.Llongfile)
	critTimeLog  *stdlog.Logger = stdlog.New(CritWriter, CritPrefix, stdlog.LstdFlags|stdlog.Llongfile)
)

// SetLevel discards everything below lvl. Levels, loudest to quietest:
// debug, info, notice, warn, err, crit.
func SetLevel(lvl string) {
	switch lvl {
	case "crit":
		ErrWriter = io.Discard
		fallthrough
	case "err", "error":
		WarnWriter = io.Discard
		fallthrough
	case "warn", "warning":
		NoteWriter = io.Discard
		fallthrough
	case "notice", "note":
		InfoWriter = io.Discard
		fallthrough
	case "info":
		DebugWriter = io.Discard
	case "debug":
		// nothing discarded
	default:
		fmt.Fprintf(os.Stderr, "log: invalid loglevel %q, defaulting to debug\n", lvl)
		SetLevel("debug")
	}
}

// SetDateTime toggles timestamp prefixes on every subsequent log line.
func SetDateTime(enabled bool) {
	logDateTime = enabled
}

func output(discard io.Writer, timeLog, plainLog *stdlog.Logger, s string) {
	if discard == io.Discard {
		return
	}
	if logDateTime {
		timeLog.Output(3, s)
	} else {
		plainLog.Output(3, s)
	}
}

func Debug(v ...interface{})                 { output(DebugWriter, debugTimeLog, debugLog, fmt.Sprint(v...)) }
func Info(v ...interface{})                  { output(InfoWriter, infoTimeLog, infoLog, fmt.Sprint(v...)) }
func Note(v ...interface{})                  { output(NoteWriter, noteTimeLog, noteLog, fmt.Sprint(v...)) }
func Warn(v ...interface{})                  { output(WarnWriter, warnTimeLog, warnLog, fmt.Sprint(v...)) }
func Error(v ...interface{})                 { output(ErrWriter, errTimeLog, errLog, fmt.Sprint(v...)) }
func Crit(v ...interface{})                  { output(CritWriter, critTimeLog, critLog, fmt.Sprint(v...)) }
func Debugf(f string, v ...interface{})      { output(DebugWriter, debugTimeLog, debugLog, fmt.Sprintf(f, v...)) }
func Infof(f string, v ...interface{})       { output(InfoWriter, infoTimeLog, infoLog, fmt.Sprintf(f, v...)) }
func Notef(f string, v ...interface{})       { output(NoteWriter, noteTimeLog, noteLog, fmt.Sprintf(f, v...)) }
func Warnf(f string, v ...interface{})       { output(WarnWriter, warnTimeLog, warnLog, fmt.Sprintf(f, v...)) }
func Errorf(f string, v ...interface{})      { output(ErrWriter, errTimeLog, errLog, fmt.Sprintf(f, v...)) }
func Critf(f string, v ...interface{})       { output(CritWriter, critTimeLog, critLog, fmt.Sprintf(f, v...)) }

// Fatal logs at error level and terminates the process; used only for
// startup-time fatal errors per the error-handling design (missing config,
// bind failure, ...), never for per-record or per-connection failures.
func Fatal(v ...interface{}) {
	Error(v...)
	os.Exit(1)
}

func Fatalf(f string, v ...interface{}) {
	Errorf(f, v...)
	os.Exit(1)
}

// DecodeError logs a dropped record the way the relay's decode path is
// specified to: "<kind>: [<trimmed input>]", then returns to let the caller
// continue the splitter loop. raw is trimmed to at most 256 bytes so one
// oversized line can't flood stderr.
func DecodeError(kind string, raw []byte) {
	const maxEcho = 256
	trimmed := raw
	suffix := ""
	if len(trimmed) > maxEcho {
		trimmed = trimmed[:maxEcho]
		suffix = "..."
	}
	Errorf("%s: [%s%s]", kind, trimmed, suffix)
}
