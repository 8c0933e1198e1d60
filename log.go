package zkterm

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the diagnostic sink for everything this package calls "verbose
// mode". No logging call site may influence control flow: deleting every
// call to Logger would change nothing but the amount of output.
type Logger interface {
	Info(v ...interface{})
	Infof(format string, v ...interface{})
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})
	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// zapLogger adapts a zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l *zapLogger) Info(v ...interface{})                  { l.s.Info(v...) }
func (l *zapLogger) Infof(format string, v ...interface{})  { l.s.Infof(format, v...) }
func (l *zapLogger) Debug(v ...interface{})                 { l.s.Debug(v...) }
func (l *zapLogger) Debugf(format string, v ...interface{}) { l.s.Debugf(format, v...) }
func (l *zapLogger) Error(v ...interface{})                  { l.s.Error(v...) }
func (l *zapLogger) Errorf(format string, v ...interface{})  { l.s.Errorf(format, v...) }

// LogFileConfig rotates the log file through lumberjack, mirroring the
// zap+lumberjack pairing used elsewhere for this terminal-management stack.
type LogFileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// newDefaultLogger builds the package's default logger: info level, or
// debug when verbose is requested, writing to stderr unless a rotating
// file is configured.
func newDefaultLogger(verbose bool, fileCfg *LogFileConfig) Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encCfg)

	var sink zapcore.WriteSyncer
	if fileCfg != nil && fileCfg.Path != "" {
		rotator := &lumberjack.Logger{
			Filename:   fileCfg.Path,
			MaxSize:    fileCfg.MaxSizeMB,
			MaxBackups: fileCfg.MaxBackups,
			MaxAge:     fileCfg.MaxAgeDays,
			Compress:   fileCfg.Compress,
		}
		sink = zapcore.AddSync(rotator)
	} else {
		sink = zapcore.AddSync(os.Stderr)
	}

	core := zapcore.NewCore(encoder, sink, level)
	return &zapLogger{s: zap.New(core).Sugar()}
}

// noopLogger discards everything. Tests install it directly on the client;
// WithLogger(nil) does not select it (a nil logger leaves the default zap
// logger in place).
type noopLogger struct{}

func (noopLogger) Info(v ...interface{})                  {}
func (noopLogger) Infof(format string, v ...interface{})  {}
func (noopLogger) Debug(v ...interface{})                 {}
func (noopLogger) Debugf(format string, v ...interface{}) {}
func (noopLogger) Error(v ...interface{})                 {}
func (noopLogger) Errorf(format string, v ...interface{}) {}
