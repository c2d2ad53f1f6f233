package parser

import (
	"github.com/linuskmr/fortytwo-lang/internal/lexer"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
)

// Processor adapts the parser to the compilation pipeline. It consumes
// ctx.Tokens and produces ctx.Program; syntax diagnostics land on the
// context as they are raised.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

func (p *Processor) Name() string {
	return "parser"
}

func (p *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	stream := lexer.FromTokens(ctx.Tokens)
	parser := New(stream, ctx)
	ctx.Program = parser.ParseProgram()
	ctx.Program.File = ctx.SourcePath
	return ctx
}
