package logging

import (
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	Process   = "process"
	File      = "file"
	Dir       = "dir"
	Database  = "database"
	Suite     = "suite"
	Case      = "case"
	HostType  = "host_type"
	Recipeset = "recipeset"
	Tree      = "tree"
	Arch      = "arch"
	Location  = "location"
	Sources   = "sources"
	Count     = "count"
	Duration  = "duration"
)

const (
	// DebugLevel is the verbosity of messages useful when debugging a
	// database.
	DebugLevel = 1
	// TraceLevel is the verbosity of dumps of whole data structures.
	TraceLevel = 2
)

// Format is a log output encoding.
type Format string

const (
	JSON    = Format("json")
	Console = Format("console")
)

// New returns a logger writing to w. With verbosity zero only warnings and
// errors are logged, each increment enables one more level.
func New(w io.Writer, format Format, verbosity int) logr.Logger {
	sink := zapcore.AddSync(w)
	encCfg := zap.NewProductionEncoderConfig()
	var enc zapcore.Encoder
	if format == Console {
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}
	lvl := zap.NewAtomicLevelAt(zapcore.WarnLevel - zapcore.Level(verbosity))
	zlog := zap.New(zapcore.NewCore(enc, sink, lvl),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.ErrorOutput(sink),
	)
	return zapr.NewLogger(zlog).WithValues(Process, "kpet")
}
