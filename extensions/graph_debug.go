package extensions

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	scoped "github.com/pumped-fn/scoped-go"
)

const buildFailureMessage = "provider build failed"

// GraphDebugExtension logs the dependency graph when a provider fails to build.
//
// Usage:
//
//	// Human-readable formatted output (with line breaks)
//	handler := extensions.NewHumanHandler(os.Stdout, slog.LevelError)
//	ext := extensions.NewGraphDebugExtension(handler)
//
//	// Structured JSON logging (compact, machine-readable)
//	handler := slog.NewJSONHandler(os.Stdout, nil)
//	ext := extensions.NewGraphDebugExtension(handler)
type GraphDebugExtension struct {
	scoped.BaseExtension

	built  map[scoped.AnyProvider]bool
	failed map[scoped.AnyProvider]error
	logger *slog.Logger
}

// NewGraphDebugExtension creates a new graph debug extension.
func NewGraphDebugExtension(logHandler slog.Handler) *GraphDebugExtension {
	return &GraphDebugExtension{
		BaseExtension: scoped.NewBaseExtension("graph-debug"),
		built:         make(map[scoped.AnyProvider]bool),
		failed:        make(map[scoped.AnyProvider]error),
		logger:        slog.New(logHandler),
	}
}

// Wrap tracks build outcomes for the graph annotations
func (e *GraphDebugExtension) Wrap(ctx context.Context, next func(context.Context) (any, error), op *scoped.Operation) (any, error) {
	result, err := next(ctx)

	if op.Kind != scoped.OpBuild {
		return result, err
	}
	if err != nil {
		e.failed[op.Provider] = err
		delete(e.built, op.Provider)
	} else {
		e.built[op.Provider] = true
		delete(e.failed, op.Provider)
	}

	return result, err
}

// OnError logs the dependency graph when a build fails
func (e *GraphDebugExtension) OnError(err error, op *scoped.Operation) {
	if op.Kind != scoped.OpBuild {
		return
	}

	e.logger.Error(buildFailureMessage,
		"provider", op.Provider.String(),
		"scope", op.Owner.ID(),
		"error", err.Error(),
		"dependency_graph", e.formatDependencyGraph(op.Scope, op.Provider, err),
	)
}

func (e *GraphDebugExtension) formatDependencyGraph(scope *scoped.Scope, failedProvider scoped.AnyProvider, failedErr error) string {
	var sb strings.Builder
	sb.WriteString("\n")

	if deps := scope.Dependencies(failedProvider); len(deps) > 0 {
		fmt.Fprintf(&sb, "  %s read before failing:\n", failedProvider)
		for i, dep := range deps {
			writeBranch(&sb, i == len(deps)-1, e.status(dep, failedProvider))
		}
	}

	graph := scope.ExportDependencyGraph()
	if len(graph) == 0 {
		sb.WriteString("  (empty - no provider read another provider)\n")
		return sb.String()
	}

	// Stable output: sort dependencies by name
	deps := make([]scoped.AnyProvider, 0, len(graph))
	for dep := range graph {
		deps = append(deps, dep)
	}
	sort.Slice(deps, func(i, j int) bool {
		return deps[i].String() < deps[j].String()
	})

	for _, dep := range deps {
		fmt.Fprintf(&sb, "  %s\n", e.status(dep, failedProvider))
		readers := graph[dep]
		for i, reader := range readers {
			writeBranch(&sb, i == len(readers)-1, e.status(reader, failedProvider))
		}
	}

	if failedErr != nil {
		sb.WriteString("\nError Details:\n")
		fmt.Fprintf(&sb, "  Provider: %s\n", failedProvider)
		fmt.Fprintf(&sb, "  Error: %v\n", failedErr)
	}

	return sb.String()
}

func (e *GraphDebugExtension) status(p, failedProvider scoped.AnyProvider) string {
	switch {
	case p == failedProvider:
		return p.String() + " ❌ FAILED"
	case e.built[p]:
		return p.String() + " ✓"
	case e.failed[p] != nil:
		return fmt.Sprintf("%s ❌ (error: %v)", p, e.failed[p])
	default:
		return p.String() + " (pending)"
	}
}

func writeBranch(sb *strings.Builder, last bool, text string) {
	if last {
		fmt.Fprintf(sb, "    └─> %s\n", text)
		return
	}
	fmt.Fprintf(sb, "    ├─> %s\n", text)
}
