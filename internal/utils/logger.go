package utils

import (
	"fmt"
	"log"
	"strings"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	DebugMode      bool
	CurrentLevel   LogLevel = LevelWarn
	ShowRaylibInfo bool
)

const colorReset = "\033[0m"

// prefixes holds the colored tag written before each message, by level.
var prefixes = [...]struct{ name, color string }{
	LevelDebug: {"DEBUG", "\033[36m"},
	LevelInfo:  {"INFO", "\033[34m"},
	LevelWarn:  {"WARN", "\033[33m"},
	LevelError: {"ERROR", "\033[31m"},
}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(prefixes) {
		return "UNKNOWN"
	}
	return prefixes[l].name
}

// ParseLevel maps a config string ("debug", "info", "warn", "error") to a level.
func ParseLevel(s string) (LogLevel, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "" || name == "WARNING" {
		return LevelWarn, nil
	}
	for l, p := range prefixes {
		if p.name == name {
			return LogLevel(l), nil
		}
	}
	return LevelWarn, fmt.Errorf("unknown log level %q", s)
}

// SetDebug switches debug mode on and lowers the level to debug.
func SetDebug(on bool) {
	DebugMode = on
	if on {
		CurrentLevel = LevelDebug
	}
}

func emit(level LogLevel, tag, format string, v ...any) {
	p := prefixes[level]
	log.Printf(p.color+"["+p.name+"]"+colorReset+" "+tag+format, v...)
}

func logf(level LogLevel, format string, v ...any) {
	if level >= CurrentLevel {
		emit(level, "", format, v...)
	}
}

func Info(format string, v ...any)  { logf(LevelInfo, format, v...) }
func Debug(format string, v ...any) { logf(LevelDebug, format, v...) }
func Warn(format string, v ...any)  { logf(LevelWarn, format, v...) }
func Error(format string, v ...any) { logf(LevelError, format, v...) }

// raylibLevels maps raylib trace levels (LOG_TRACE..LOG_FATAL) to ours.
var raylibLevels = map[int]LogLevel{
	1: LevelDebug,
	2: LevelDebug,
	3: LevelInfo,
	4: LevelWarn,
	5: LevelError,
	6: LevelError,
}

const raylibTag = "\033[35m[RAYLIB]" + colorReset + " "

// RaylibLogCallback forwards raylib trace output; register it with
// rl.SetTraceLogCallback. ShowRaylibInfo lets info lines through at any level.
func RaylibLogCallback(level int, text string) {
	l, ok := raylibLevels[level]
	if !ok || (l < CurrentLevel && !(l == LevelInfo && ShowRaylibInfo)) {
		return
	}
	emit(l, raylibTag, "%s", text)
}
