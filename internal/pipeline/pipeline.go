// Package pipeline wires the compilation stages together. Each stage is a
// Processor that reads the shared Context and writes its own artifact into
// it; the pipeline itself is a plain sequential loop over one translation
// unit.
package pipeline

// Processor is one compilation stage.
type Processor interface {
	Name() string
	Process(ctx *Context) *Context
}

// Pipeline is a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the stages in order. It continues past stages that record
// diagnostics so one run reports as many independent problems as possible;
// callers check HasErrors before handing the result to a backend.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
