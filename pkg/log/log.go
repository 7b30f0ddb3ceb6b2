package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level parses a log level name, falling back to info for anything zap does not understand.
func Level(name string) zap.AtomicLevel {
	lvl, err := zap.ParseAtomicLevel(name)
	if err != nil {
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return lvl
}

// InitLog builds the service logger. Logs go to stdout in console encoding.
func InitLog(lvl zap.AtomicLevel) *zap.Logger {
	return build(lvl, "console", []string{"stdout"})
}

// InitCLILog builds a logger for command line tools that keeps stdout free for command output.
func InitCLILog(lvl zap.AtomicLevel) *zap.Logger {
	return build(lvl, "console", []string{"stderr"})
}

func build(lvl zap.AtomicLevel, encoding string, outputs []string) *zap.Logger {
	loggerCfg := &zap.Config{
		Level:    lvl,
		Encoding: encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "severity",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeTime:     zapcore.RFC3339TimeEncoder,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}

	plain, err := loggerCfg.Build(zap.AddStacktrace(zap.DPanicLevel))
	if err != nil {
		panic(err)
	}

	return plain
}
