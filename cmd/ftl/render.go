package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/linuskmr/fortytwo-lang/internal/diagnostics"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
)

// renderer formats diagnostics in the long form:
//
//	error[T001] main.ftl:3:18: type mismatch: expected int, got str
//	    var x: int = "hi"
//	                 ^
type renderer struct {
	path  string
	lines []string
	color bool
}

func newRenderer(ctx *pipeline.Context, color bool) *renderer {
	return &renderer{
		path:  ctx.SourcePath,
		lines: strings.Split(ctx.Source, "\n"),
		color: color,
	}
}

func (r *renderer) render(w io.Writer, d *diagnostics.Diagnostic) {
	head := fmt.Sprintf("%s[%s]", d.Severity, d.Code)
	if r.color {
		head = severityColor(d.Severity) + ansiBold + head + ansiReset
	}
	fmt.Fprintf(w, "%s %s:%d:%d: %s\n", head, r.path, d.Token.Line, d.Token.Column, d.Message)

	// Diagnostics without a real position (e.g. manifest externs report at
	// 0:0) get no source excerpt.
	if d.Token.Line < 1 || d.Token.Line > len(r.lines) || d.Token.Column < 1 {
		return
	}
	line := strings.TrimRight(r.lines[d.Token.Line-1], "\r")
	fmt.Fprintf(w, "    %s\n", line)
	caret := "^"
	if r.color {
		caret = severityColor(d.Severity) + ansiBold + caret + ansiReset
	}
	fmt.Fprintf(w, "    %s%s\n", caretPrefix(line, d.Token.Column), caret)
}

// caretPrefix mirrors the line's runes before the column as blanks, keeping
// tabs as tabs so the caret lands under the right cell however the terminal
// expands them.
func caretPrefix(line string, column int) string {
	var b strings.Builder
	for i, r := range []rune(line) {
		if i >= column-1 {
			break
		}
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func severityColor(s diagnostics.Severity) string {
	if s == diagnostics.SeverityWarning {
		return ansiYellow
	}
	return ansiRed
}

// printDiagnostics renders every recorded diagnostic to stderr in source
// order.
func printDiagnostics(c *cli.Context, ctx *pipeline.Context) {
	if len(ctx.Diagnostics) == 0 {
		return
	}
	r := newRenderer(ctx, colorEnabled(c))
	for _, d := range ctx.SortedDiagnostics() {
		r.render(os.Stderr, d)
	}
}

// plainDiagnostics renders without color, the form stored in the build
// cache and replayed verbatim on a hit.
func plainDiagnostics(ctx *pipeline.Context) string {
	if len(ctx.Diagnostics) == 0 {
		return ""
	}
	var b strings.Builder
	r := newRenderer(ctx, false)
	for _, d := range ctx.SortedDiagnostics() {
		r.render(&b, d)
	}
	return b.String()
}

func colorEnabled(c *cli.Context) bool {
	if c.Bool("no-color") {
		return false
	}
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
