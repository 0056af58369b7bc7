// Package driver runs the compilation pipeline for one project: parse
// every source file in parallel, then resolve generics, monomorphize,
// and generate IR in a single sequential pass.
package driver

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"paw/internal/ast"
	"paw/internal/diag"
	"paw/internal/diagfmt"
	"paw/internal/layout"
	"paw/internal/mir"
	"paw/internal/mono"
	"paw/internal/parser"
	"paw/internal/project"
	"paw/internal/source"
	"paw/internal/types"
)

// Options configures one Build run.
type Options struct {
	ManifestPath   string
	Jobs           int
	MaxDiagnostics int
	UseCache       bool

	// Progress receives pipeline events when non-nil.
	Progress ProgressSink
}

// Result carries everything a caller may want after a build.
type Result struct {
	Manifest project.Manifest
	FileSet  *source.FileSet
	Bag      *diag.Bag
	Types    *types.Interner
	Table    *mono.Table
	Module   *mir.Module
	IRText   string
	CacheHit bool
}

// Build compiles the project at opts.ManifestPath.
func Build(ctx context.Context, opts Options) (*Result, error) {
	manifest, err := project.Load(opts.ManifestPath)
	if err != nil {
		return nil, err
	}
	files, err := manifest.Sources()
	if err != nil {
		return nil, err
	}

	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 256
	}
	res := &Result{
		Manifest: manifest,
		FileSet:  source.NewFileSet(),
		Bag:      diag.NewBag(opts.MaxDiagnostics),
	}

	fileIDs := make([]source.FileID, len(files))
	for i, path := range files {
		id, err := res.FileSet.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		fileIDs[i] = id
	}

	emitQueued(opts.Progress, files)

	var cache *DiskCache
	if opts.UseCache && manifest.Cache {
		cache, _ = OpenDiskCache("pawc")
		if payload, ok := cacheLookup(cache, res.FileSet, fileIDs); ok {
			res.IRText = payload.IRText
			res.CacheHit = true
			emitStage(opts.Progress, files, StageEmit, StatusDone, 0)
			return res, nil
		}
	}

	programs, err := parseAll(ctx, res.FileSet, fileIDs, opts)
	if err != nil {
		return nil, err
	}
	for _, p := range programs {
		res.Bag.Merge(p.bag)
	}

	prog := mergePrograms(programs)
	res.compile(prog, files, opts.Progress)
	res.Bag.Sort()
	res.Bag.Dedup()

	if cache != nil && !res.Bag.HasErrors() {
		cacheStore(cache, res.FileSet, fileIDs, res.IRText)
	}
	return res, nil
}

type parsedFile struct {
	fileID  source.FileID
	program *ast.Program
	bag     *diag.Bag
}

// parseAll parses every file concurrently. Each file gets its own bag
// so no synchronization is needed on the diagnostics path.
func parseAll(ctx context.Context, fs *source.FileSet, fileIDs []source.FileID, opts Options) ([]parsedFile, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]parsedFile, len(fileIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(fileIDs)))
	for i, id := range fileIDs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			bag := diag.NewBag(opts.MaxDiagnostics)
			file, _ := fs.Get(id)
			emitFile(opts.Progress, file.Path, StageParse, StatusWorking, 0)
			start := time.Now()
			program := parser.ParseFile(file, &diag.BagReporter{Bag: bag})
			status := StatusDone
			if bag.HasErrors() {
				status = StatusError
			}
			emitFile(opts.Progress, file.Path, StageParse, status, time.Since(start))
			results[i] = parsedFile{fileID: id, program: program, bag: bag}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// mergePrograms concatenates per-file declaration lists in file order,
// which is already deterministic because sources are sorted.
func mergePrograms(parsed []parsedFile) *ast.Program {
	out := &ast.Program{}
	for _, p := range parsed {
		out.Decls = append(out.Decls, p.program.Decls...)
	}
	return out
}

// compile runs the sequential middle end: resolution, then lowering,
// then validation of the produced block graphs.
func (res *Result) compile(prog *ast.Program, files []string, sink ProgressSink) {
	reporter := &diag.BagReporter{Bag: res.Bag}

	emitStage(sink, files, StageResolve, StatusWorking, 0)
	start := time.Now()
	res.Types = types.NewInterner(source.NewInterner())
	res.Table = mono.NewTable(res.Types)
	resolver := mono.NewResolver(res.Types, res.Table, reporter)
	resolver.Run(prog)

	emitStage(sink, files, StageLower, StatusWorking, time.Since(start))
	layouts := layout.NewTable(res.Types, resolver)
	lowerer := mir.NewLowerer(res.Types, res.Table, resolver, layouts, reporter)
	res.Module = lowerer.LowerProgram(res.Manifest.Name, prog)

	emitStage(sink, files, StageEmit, StatusWorking, time.Since(start))
	if err := mir.Validate(res.Module); err != nil {
		diag.Error(reporter, diag.GenInvalidContext, source.Span{},
			fmt.Sprintf("internal error: invalid IR: %v", err))
		emitStage(sink, files, StageEmit, StatusError, time.Since(start))
		return
	}

	var sb strings.Builder
	mir.Print(&sb, res.Types, res.Module)
	res.IRText = sb.String()

	status := StatusDone
	if res.Bag.HasErrors() {
		status = StatusError
	}
	emitStage(sink, files, StageEmit, status, time.Since(start))
}

// RenderDiagnostics pretty-prints the bag against the file set.
func (res *Result) RenderDiagnostics(w io.Writer, useColor bool) {
	diagfmt.Pretty(w, res.Bag, res.FileSet, diagfmt.Options{Color: useColor, Context: true})
}
