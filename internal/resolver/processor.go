package resolver

import (
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
)

// Processor adapts the resolver to the pipeline.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

func (p *Processor) Name() string {
	return "resolver"
}

func (p *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	New(ctx).Run()
	return ctx
}
