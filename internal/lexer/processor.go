package lexer

import (
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
)

// Processor adapts the lexer to the compilation pipeline. It tokenizes
// ctx.Source into ctx.Tokens and records lexing diagnostics.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

func (p *Processor) Name() string {
	return "lexer"
}

func (p *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	l := New(ctx.Source)
	stream := NewTokenStream(l)
	ctx.Tokens = stream.Tokens()
	for _, diag := range l.Diagnostics() {
		ctx.AddDiagnostic(diag)
	}
	return ctx
}
