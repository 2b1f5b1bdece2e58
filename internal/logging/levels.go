package logging

import (
	"strings"

	"go.uber.org/zap/zapcore"
)

// TraceLevel is a custom level below Debug for ultra-verbose logging, such
// as raw KV entries received from the broker.
// Value: -2 (Debug is -1, Info is 0)
const TraceLevel = zapcore.Level(-2)

// LevelFromString parses a case-insensitive level name, supporting "trace".
// An empty string yields Info.
func LevelFromString(level string) (zapcore.Level, error) {
	lower := strings.ToLower(level)
	if lower == "trace" {
		return TraceLevel, nil
	}
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(lower)); err != nil {
		return zapcore.InfoLevel, err
	}
	return l, nil
}

// capitalLevelEncoder is zapcore.CapitalLevelEncoder with a name for
// TraceLevel.
func capitalLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString("TRACE")
		return
	}
	zapcore.CapitalLevelEncoder(l, enc)
}

// lowercaseLevelEncoder is zapcore.LowercaseLevelEncoder with a name for
// TraceLevel.
func lowercaseLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString("trace")
		return
	}
	zapcore.LowercaseLevelEncoder(l, enc)
}
