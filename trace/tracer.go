// Package trace provides two things the engine needs per invocation: a
// slog-based ambient logger for call/return/exception/notify events
// (generalized from the teacher's bespoke Tracer), and the
// ScriptStackTrace the engine pushes and pops frames on (§4.7).
package trace

import (
	"log/slog"
	"path/filepath"

	"github.com/barnforge/scriptcore/types"
)

// Logger wraps a *slog.Logger with the teacher's per-call event shape
// (VerbCall/VerbReturn/Exception/Notify), filtered by verb-name glob
// patterns the way the teacher's Tracer filtered by pattern.
type Logger struct {
	log     *slog.Logger
	filters []string
}

// NewLogger creates a Logger. An empty filters list traces everything.
func NewLogger(log *slog.Logger, filters []string) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log, filters: filters}
}

func (l *Logger) matches(name string) bool {
	if len(l.filters) == 0 {
		return true
	}
	for _, pattern := range l.filters {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// VerbCall logs invocation of a verb.
func (l *Logger) VerbCall(objID types.ObjID, verbName string, args []types.Value, player, caller types.ObjID) {
	if !l.matches(verbName) {
		return
	}
	l.log.Debug("verb call", "object", objID.String(), "verb", verbName, "args", formatArgs(args),
		"player", player.String(), "caller", caller.String())
}

// VerbReturn logs a verb's return value.
func (l *Logger) VerbReturn(objID types.ObjID, verbName string, result types.Value) {
	if !l.matches(verbName) {
		return
	}
	l.log.Debug("verb return", "object", objID.String(), "verb", verbName, "result", result.String())
}

// Exception logs a failed invocation.
func (l *Logger) Exception(objID types.ObjID, name string, kind types.ErrorKind, message string) {
	if !l.matches(name) {
		return
	}
	l.log.Warn("script exception", "object", objID.String(), "name", name, "kind", kind.String(), "message", message)
}

// Notify logs a player-visible message dispatch.
func (l *Logger) Notify(player types.ObjID, message string) {
	if len(message) > 60 {
		message = message[:57] + "..."
	}
	l.log.Debug("notify", "player", player.String(), "message", message)
}

func formatArgs(args []types.Value) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a.String()
	}
	return out
}
