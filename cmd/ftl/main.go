package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/repr"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"

	"github.com/linuskmr/fortytwo-lang/internal/backend"
	"github.com/linuskmr/fortytwo-lang/internal/buildcache"
	"github.com/linuskmr/fortytwo-lang/internal/checker"
	"github.com/linuskmr/fortytwo-lang/internal/config"
	"github.com/linuskmr/fortytwo-lang/internal/desugar"
	"github.com/linuskmr/fortytwo-lang/internal/lexer"
	"github.com/linuskmr/fortytwo-lang/internal/mono"
	"github.com/linuskmr/fortytwo-lang/internal/parser"
	"github.com/linuskmr/fortytwo-lang/internal/pipeline"
	"github.com/linuskmr/fortytwo-lang/internal/prettyprinter"
	"github.com/linuskmr/fortytwo-lang/internal/project"
	"github.com/linuskmr/fortytwo-lang/internal/resolver"
)

func main() {
	log.SetFlags(0)          // no timestamps
	log.SetOutput(os.Stderr) // stdout carries command output only

	app := &cli.App{
		Name:  "ftl",
		Usage: "fortytwo-lang compiler",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "project",
				Usage: "path to ftl.yaml (default: search upward from the source file)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log pipeline stages and cache activity to stderr",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colored diagnostics",
			},
		},
		Commands: []*cli.Command{
			checkCommand(),
			fmtCommand(),
			astCommand(),
			compileCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		tracerr.PrintSourceColor(err)
		os.Exit(1)
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "run the full pipeline and report diagnostics",
		ArgsUsage: "<file.ftl>",
		Action: func(c *cli.Context) error {
			path, source, err := loadSource(c)
			if err != nil {
				return err
			}
			manifest, _, err := loadManifest(c, path)
			if err != nil {
				return err
			}
			ctx := runFrontEnd(c, path, source, manifest)
			printDiagnostics(c, ctx)
			if ctx.HasErrors() {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func fmtCommand() *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "format a source file",
		ArgsUsage: "<file.ftl>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "w",
				Usage: "write the result back instead of printing it",
			},
		},
		Action: func(c *cli.Context) error {
			path, source, err := loadSource(c)
			if err != nil {
				return err
			}
			// Formatting only needs the surface tree; a file that does
			// not parse is never rewritten.
			ctx := pipeline.NewContext(source)
			ctx.SourcePath = path
			ctx = pipeline.New(lexer.NewProcessor(), parser.NewProcessor()).Run(ctx)
			printDiagnostics(c, ctx)
			if ctx.HasErrors() {
				return cli.Exit("", 1)
			}
			formatted := prettyprinter.Print(ctx.Program)
			if c.Bool("w") {
				return os.WriteFile(path, []byte(formatted), 0o644)
			}
			fmt.Print(formatted)
			return nil
		},
	}
}

func astCommand() *cli.Command {
	return &cli.Command{
		Name:      "ast",
		Usage:     "dump the syntax tree",
		ArgsUsage: "<file.ftl>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "checked",
				Usage: "dump the tree after resolution, desugaring, checking and monomorphization",
			},
		},
		Action: func(c *cli.Context) error {
			path, source, err := loadSource(c)
			if err != nil {
				return err
			}
			var ctx *pipeline.Context
			if c.Bool("checked") {
				manifest, _, err := loadManifest(c, path)
				if err != nil {
					return err
				}
				ctx = runFrontEnd(c, path, source, manifest)
			} else {
				ctx = pipeline.NewContext(source)
				ctx.SourcePath = path
				ctx = pipeline.New(lexer.NewProcessor(), parser.NewProcessor()).Run(ctx)
			}
			printDiagnostics(c, ctx)
			// The partial tree is still printed: dumping what the parser
			// recovered is the point of the command.
			if ctx.Program != nil {
				repr.Println(ctx.Program)
			}
			if ctx.HasErrors() {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func compileCommand() *cli.Command {
	return &cli.Command{
		Name:      "compile",
		Usage:     "compile a source file to LLVM IR",
		ArgsUsage: "<file.ftl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output path (default: the source path with .ll)",
			},
		},
		Action: func(c *cli.Context) error {
			path, source, err := loadSource(c)
			if err != nil {
				return err
			}
			manifest, manifestDir, err := loadManifest(c, path)
			if err != nil {
				return err
			}
			outPath := c.String("output")
			if outPath == "" {
				outPath = strings.TrimSuffix(path, filepath.Ext(path)) + ".ll"
			}

			cache := openCache(c, manifest, manifestDir)
			if cache != nil {
				defer cache.Close()
			}
			hash := buildcache.HashSource(source)
			if done, err := replayCached(c, cache, path, hash, outPath); done {
				return err
			}

			ctx := runFrontEnd(c, path, source, manifest)
			printDiagnostics(c, ctx)
			if ctx.HasErrors() {
				storeOutcome(c, cache, path, hash, false, plainDiagnostics(ctx))
				return cli.Exit("", 1)
			}

			ir, err := backend.NewLLVM(manifest.Target).Emit(ctx)
			if err != nil {
				// Emit failing on a clean context is a compiler defect, not
				// a user error; keep the stack.
				return tracerr.Wrap(err)
			}
			if err := os.WriteFile(outPath, ir, 0o644); err != nil {
				return err
			}
			storeOutcome(c, cache, path, hash, true, plainDiagnostics(ctx))
			if c.Bool("verbose") {
				log.Printf("wrote %s (%d bytes)", outPath, len(ir))
			}
			return nil
		},
	}
}

// runFrontEnd pushes one translation unit through all six stages. The
// returned context carries the typed tree and every diagnostic.
func runFrontEnd(c *cli.Context, path, source string, manifest *project.Manifest) *pipeline.Context {
	ctx := pipeline.NewContext(source)
	ctx.SourcePath = path
	ctx.ManifestExterns = manifest.ExternSignatures()

	stages := []pipeline.Processor{
		lexer.NewProcessor(),
		parser.NewProcessor(),
		resolver.NewProcessor(),
		desugar.NewProcessor(),
		checker.NewProcessor(),
		mono.NewProcessor(),
	}
	if c.Bool("verbose") {
		for i, s := range stages {
			stages[i] = timed{s}
		}
	}
	return pipeline.New(stages...).Run(ctx)
}

// timed decorates a pipeline stage with duration and diagnostic-count
// logging for --verbose runs.
type timed struct {
	pipeline.Processor
}

func (t timed) Process(ctx *pipeline.Context) *pipeline.Context {
	start := time.Now()
	out := t.Processor.Process(ctx)
	log.Printf("%-12s %10s  %d diagnostics", t.Name(), time.Since(start).Round(time.Microsecond), len(out.Diagnostics))
	return out
}

// loadSource reads the translation unit named as the command's argument.
func loadSource(c *cli.Context) (path, source string, err error) {
	if c.NArg() == 0 {
		return "", "", fmt.Errorf("%s: no source file given", c.Command.Name)
	}
	if c.NArg() > 1 {
		return "", "", fmt.Errorf("%s: one source file per invocation", c.Command.Name)
	}
	path = c.Args().First()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	if !isSourceFile(path) {
		log.Printf("warning: %s does not end in %s", path, strings.Join(config.SourceFileExtensions, " or "))
	}
	return path, string(data), nil
}

// isSourceFile checks if a file has a recognized source extension.
func isSourceFile(path string) bool {
	for _, ext := range config.SourceFileExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// loadManifest locates and loads ftl.yaml. An explicit --project path must
// exist; otherwise the search walks up from the source file's directory and
// an absent manifest means defaults. The returned dir anchors relative
// manifest paths such as the cache database.
func loadManifest(c *cli.Context, sourcePath string) (*project.Manifest, string, error) {
	if path := c.String("project"); path != "" {
		m, err := project.LoadManifest(path)
		if err != nil {
			return nil, "", err
		}
		return m, filepath.Dir(path), nil
	}
	path, err := project.FindManifest(filepath.Dir(sourcePath))
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return project.Default(), filepath.Dir(sourcePath), nil
	}
	m, err := project.LoadManifest(path)
	if err != nil {
		return nil, "", err
	}
	if c.Bool("verbose") {
		log.Printf("using manifest %s", path)
	}
	return m, filepath.Dir(path), nil
}

// openCache opens the build cache when the manifest enables it. A cache
// that cannot be opened degrades to a miss so compilation always proceeds.
func openCache(c *cli.Context, manifest *project.Manifest, manifestDir string) *buildcache.Cache {
	if !manifest.Cache.Enabled {
		return nil
	}
	cache, err := buildcache.Open(manifest.CachePath(manifestDir))
	if err != nil {
		if c.Bool("verbose") {
			log.Printf("cache disabled: %v", err)
		}
		return nil
	}
	return cache
}

// replayCached serves a compile from the cache when possible. A recorded
// failure replays its diagnostics and fails again without re-running the
// pipeline; a recorded success is only trusted while the output artifact
// still exists, since the cache stores outcomes, not IR.
func replayCached(c *cli.Context, cache *buildcache.Cache, path, hash, outPath string) (bool, error) {
	if cache == nil {
		return false, nil
	}
	entry, err := cache.Lookup(path, hash)
	if err != nil {
		if c.Bool("verbose") {
			log.Printf("cache lookup failed: %v", err)
		}
		return false, nil
	}
	if entry == nil {
		return false, nil
	}
	if !entry.Success {
		fmt.Fprint(os.Stderr, entry.Diagnostics)
		return true, cli.Exit("", 1)
	}
	if _, err := os.Stat(outPath); err != nil {
		return false, nil // artifact gone, rebuild
	}
	fmt.Fprint(os.Stderr, entry.Diagnostics) // replay warnings, if any
	if c.Bool("verbose") {
		log.Printf("cache hit %s, %s is up to date", entry.ID, outPath)
	}
	return true, nil
}

// storeOutcome records a compile outcome, best effort. A failing store only
// costs the memo.
func storeOutcome(c *cli.Context, cache *buildcache.Cache, path, hash string, success bool, diags string) {
	if cache == nil {
		return
	}
	id, err := cache.Store(path, hash, success, diags)
	if err != nil {
		if c.Bool("verbose") {
			log.Printf("cache store failed: %v", err)
		}
		return
	}
	if c.Bool("verbose") {
		log.Printf("cached build %s", id)
	}
}
