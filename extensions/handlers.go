package extensions

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// SilentHandler is a slog.Handler that discards all log output
// Useful for testing when you don't want log output
type SilentHandler struct{}

// NewSilentHandler creates a new silent log handler
func NewSilentHandler() *SilentHandler {
	return &SilentHandler{}
}

func (h *SilentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return false
}

func (h *SilentHandler) Handle(ctx context.Context, record slog.Record) error {
	return nil
}

func (h *SilentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *SilentHandler) WithGroup(name string) slog.Handler {
	return h
}

// HumanHandler is a slog.Handler that formats logs for human readability,
// one attribute per line. Build failures reported by GraphDebugExtension get
// a framed layout with the dependency graph.
type HumanHandler struct {
	writer io.Writer
	level  slog.Level
	attrs  []slog.Attr
}

// NewHumanHandler creates a new human-readable log handler
func NewHumanHandler(writer io.Writer, level slog.Level) *HumanHandler {
	return &HumanHandler{
		writer: writer,
		level:  level,
	}
}

func (h *HumanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *HumanHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Message == buildFailureMessage {
		return h.handleBuildFailure(record)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s\n", record.Level, record.Message)

	write := func(a slog.Attr) bool {
		fmt.Fprintf(&sb, "  %s: %v\n", a.Key, a.Value)
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	record.Attrs(write)

	_, err := io.WriteString(h.writer, sb.String())
	return err
}

func (h *HumanHandler) handleBuildFailure(record slog.Record) error {
	var provider, errorMsg, scope, graph string

	record.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "provider":
			provider = a.Value.String()
		case "error":
			errorMsg = a.Value.String()
		case "scope":
			scope = a.Value.String()
		case "dependency_graph":
			graph = a.Value.String()
		}
		return true
	})

	rule := strings.Repeat("=", 70)

	var sb strings.Builder
	fmt.Fprintln(&sb)
	fmt.Fprintln(&sb, rule)
	fmt.Fprintln(&sb, "[GraphDebug] Provider Build Error")
	fmt.Fprintln(&sb, rule)
	fmt.Fprintf(&sb, "\nFailed Provider: %s\n", provider)
	fmt.Fprintf(&sb, "Scope: %s\n", scope)
	fmt.Fprintf(&sb, "Error: %s\n", errorMsg)
	fmt.Fprintf(&sb, "\nDependency Graph:%s", graph)
	fmt.Fprintln(&sb, rule)
	fmt.Fprintln(&sb)

	_, err := io.WriteString(h.writer, sb.String())
	return err
}

func (h *HumanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *HumanHandler) WithGroup(name string) slog.Handler {
	return h
}
