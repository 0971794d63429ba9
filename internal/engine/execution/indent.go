package execution

import (
	"context"
	"strings"

	"go.trai.ch/dbbm/internal/core/ports"
	"go.trai.ch/dbbm/internal/ui/style"
)

type depthKey struct{}

func withDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, depthKey{}, depth)
}

// Depth returns the nesting level of the step running in ctx.
func Depth(ctx context.Context) int {
	d, _ := ctx.Value(depthKey{}).(int)
	return d
}

// Logger returns l indented to the nesting level recorded in ctx.
func Logger(ctx context.Context, l ports.Logger) ports.Logger {
	return Indent(l, Depth(ctx))
}

// Indent returns a logger that prefixes Info and Warn messages by depth levels.
func Indent(l ports.Logger, depth int) ports.Logger {
	if depth <= 0 {
		return l
	}
	return indented{Logger: l, prefix: strings.Repeat(style.Indent, depth)}
}

type indented struct {
	ports.Logger
	prefix string
}

func (l indented) Info(msg string) { l.Logger.Info(l.prefix + msg) }
func (l indented) Warn(msg string) { l.Logger.Warn(l.prefix + msg) }

// Nested returns ctx one nesting level deeper.
func Nested(ctx context.Context) context.Context {
	return withDepth(ctx, Depth(ctx)+1)
}
