package mono

import (
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
)

// Processor runs monomorphization as a pipeline stage.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

func (p *Processor) Name() string {
	return "mono"
}

func (p *Processor) Process(ctx *pipeline.Context) *pipeline.Context {
	if ctx.Program == nil {
		return ctx
	}
	New(ctx).Run()
	return ctx
}
