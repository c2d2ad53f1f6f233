// Package targets holds the fuzz entry points. Fuzz input drives the
// program generator in ../generators, so the fuzzer explores the space of
// grammatical programs instead of drowning in lexer errors.
package targets

import (
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/tools/txtar"

	"github.com/linuskmr/fortytwo-lang/internal/lexer"
	"github.com/linuskmr/fortytwo-lang/internal/parser"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
	"github.com/linuskmr/fortytwo-lang/internal/prettyprinter"
	"github.com/linuskmr/fortytwo-lang/tests/fuzz/generators"
)

const (
	maxInputSize = 2000
	iterTimeout  = 500 * time.Millisecond
)

// format parses source and renders it back. ok is false when the source
// does not parse.
func format(source string) (string, bool) {
	ctx := pipeline.NewContext(source)
	ctx = pipeline.New(lexer.NewProcessor(), parser.NewProcessor()).Run(ctx)
	if ctx.HasErrors() || ctx.Program == nil {
		return "", false
	}
	return prettyprinter.Print(ctx.Program), true
}

// seedCorpus feeds the scenario programs in as seeds. Their bytes steer the
// generator, so the exact programs do not matter, only that the seeds are
// varied.
func seedCorpus(f *testing.F) {
	files, err := filepath.Glob(filepath.Join("..", "..", "testdata", "*.txt"))
	if err != nil {
		return
	}
	for _, file := range files {
		archive, err := txtar.ParseFile(file)
		if err != nil {
			continue
		}
		for _, part := range archive.Files {
			if part.Name == "main.ftl" {
				f.Add(part.Data)
			}
		}
	}
}

// FuzzFormatter checks that formatting is a fixed point: generated programs
// must parse after printing, and printing the reparsed tree must reproduce
// the first rendering byte for byte.
func FuzzFormatter(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{7, 3, 1, 0, 9, 2, 200, 41})
	f.Add([]byte("def main() {\n    print 42\n}\n"))
	seedCorpus(f)

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > maxInputSize {
			return
		}

		done := make(chan struct{})
		go func() {
			defer close(done)

			source := generators.NewFromData(data).GenerateProgram()
			first, ok := format(source)
			if !ok {
				t.Errorf("generated program does not parse:\n%s", source)
				return
			}
			second, ok := format(first)
			if !ok {
				t.Errorf("formatted output does not parse:\n%s", first)
				return
			}
			if first != second {
				t.Errorf("formatting is not idempotent:\nfirst:\n%s\nsecond:\n%s", first, second)
			}
		}()

		select {
		case <-done:
		case <-time.After(iterTimeout):
			t.Fatalf("formatter timed out on %d input bytes", len(data))
		}
	})
}
