// Package logging builds the zap-backed logr.Logger used by the gitcgi
// binaries. Library packages only ever see the logr.Logger interface.
package logging

import (
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	verbosityFlagName      = "verbosity"
	verbosityFlagShortName = "v"
)

// Verbosity controls the console log level: each count above zero enables
// one more logr V level.
type Verbosity struct {
	count int
	level zap.AtomicLevel
}

// RegisterFlag wires the verbosity flag into the given flag set.
func (v *Verbosity) RegisterFlag(flags *pflag.FlagSet) {
	flags.CountVarP(&v.count, verbosityFlagName, verbosityFlagShortName,
		"increase log verbosity (repeatable)")
}

// Apply pushes the parsed flag value into the logger level. zapr maps
// logr V(n) onto zap level -n, so the count becomes a negative zap level.
func (v *Verbosity) Apply() {
	v.level.SetLevel(zapcore.Level(-v.count))
}

// New creates a console logger writing human-readable output to stderr and
// returns it with a flush function to be called before process exit.
func New(name string) (logr.Logger, *Verbosity, func()) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	atomicLevel := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), atomicLevel)

	zapLogger := zap.New(core)
	log := zapr.NewLogger(zapLogger).WithName(name)

	verbosity := &Verbosity{level: atomicLevel}

	return log, verbosity, func() { _ = zapLogger.Sync() }
}
