package desugar

import (
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
)

// Processor adapts the desugarer to the pipeline.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

func (p *Processor) Name() string {
	return "desugar"
}

func (p *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Program == nil {
		return ctx
	}
	New(ctx).Run()
	return ctx
}
