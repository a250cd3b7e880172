package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZenLiuCN/symbaker/nro"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// strategy names reported by ExtractionFailedError
const (
	StrategyModuleImage = "nro"
	StrategyGoObject    = "goobj"
	StrategyNm          = "nm"
	StrategyObjdump     = "objdump"
	StrategyNative      = "native"
	StrategyRetry       = "nro-retry"
	StrategyCompanion   = "companion"
)

var (
	ErrNoSymbols       = errors.New("no exported symbols found")
	ErrToolUnavailable = errors.New("no tool available")
)

var (
	DefaultNmTools      = []string{"llvm-nm", "nm", "rust-nm", "aarch64-none-elf-nm"}
	DefaultNmFlags      = [][]string{{"-g", "--defined-only"}, {"-D", "--defined-only"}, {"-gD"}, {"-g"}}
	DefaultObjdumpTools = []string{"llvm-objdump", "objdump"}
)

type (
	// ObjectInspector lists the symbols of Go object files and archives.
	ObjectInspector interface {
		Symbols(path string) ([]string, error)
	}
	// Extractor runs the strategy chain. The zero value uses ExecRunner and the
	// default tool lists.
	Extractor struct {
		Runner       Runner
		NmTools      []string
		NmFlags      [][]string
		ObjdumpTools []string
		Objects      ObjectInspector // optional
		NoNative     bool            // skip the in-process reader
		Logger       *zap.Logger
	}
	// ExtractionFailedError reports an artifact no strategy found symbols in.
	ExtractionFailedError struct {
		Path      string
		Attempted []string
		Cause     error // failures of individual strategies, may be nil
	}
	// Result is the outcome for one artifact of ExtractAll.
	Result struct {
		Path    string
		Symbols []string
		Err     error
	}
)

func (e *ExtractionFailedError) Error() string {
	msg := fmt.Sprintf("extract %s: %v (tried %s)", e.Path, ErrNoSymbols, strings.Join(e.Attempted, ", "))
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ExtractionFailedError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrNoSymbols}
	}
	return []error{ErrNoSymbols, e.Cause}
}

// NewExtractor creates an extractor running tools through r.
func NewExtractor(r Runner, log *zap.Logger) *Extractor {
	return &Extractor{Runner: r, Logger: log}
}

func (e *Extractor) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Extractor) runner() Runner {
	if e.Runner == nil {
		return ExecRunner{}
	}
	return e.Runner
}

func orDefault[T any](v, def []T) []T {
	if len(v) == 0 {
		return def
	}
	return v
}

// Extract returns the exported names of the artifact at path, de-duplicated
// in order of first appearance. Tool failures only move the chain on; when
// every strategy comes up empty an *ExtractionFailedError is returned.
func (e *Extractor) Extract(ctx context.Context, path string) ([]string, error) {
	return e.extract(ctx, path, true)
}

func (e *Extractor) extract(ctx context.Context, path string, companion bool) (v []string, err error) {
	var (
		attempted []string
		causes    error
		format    = FormatOf(path)
		image     = format == FormatModuleImage
	)
	try := func(name string, f func() ([]string, error)) bool {
		attempted = append(attempted, name)
		syms, err := f()
		if err != nil {
			causes = multierr.Append(causes, fmt.Errorf("%s: %w", name, err))
			e.log().Debug("strategy failed", zap.String("path", path), zap.String("strategy", name), zap.Error(err))
			return false
		}
		if v = unique(syms); len(v) == 0 {
			return false
		}
		e.log().Debug("strategy succeeded", zap.String("path", path), zap.String("strategy", name), zap.Int("symbols", len(v)))
		return true
	}
	parseImage := func() ([]string, error) {
		syms, err := nro.ParseFile(path)
		return nro.Names(syms), err
	}
	if image && try(StrategyModuleImage, parseImage) {
		return
	}
	if format == FormatGoObject && e.Objects != nil && try(StrategyGoObject, func() ([]string, error) { return e.Objects.Symbols(path) }) {
		return
	}
	if try(StrategyNm, func() ([]string, error) { return e.nm(ctx, path) }) {
		return
	}
	if try(StrategyObjdump, func() ([]string, error) { return e.objdump(ctx, path) }) {
		return
	}
	if !e.NoNative && try(StrategyNative, func() ([]string, error) { return Native(path) }) {
		return
	}
	if image && try(StrategyRetry, parseImage) {
		return
	}
	if image && companion {
		if alt, ok := Companion(path); ok {
			if try(StrategyCompanion+" "+alt, func() ([]string, error) { return e.extract(ctx, alt, false) }) {
				return
			}
		}
	}
	return nil, &ExtractionFailedError{Path: path, Attempted: attempted, Cause: causes}
}

// pick returns the first tool the runner can start.
func (e *Extractor) pick(ctx context.Context, tools []string) (string, error) {
	for _, t := range tools {
		if e.runner().Available(ctx, t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrToolUnavailable, strings.Join(tools, ", "))
}

func (e *Extractor) nm(ctx context.Context, path string) ([]string, error) {
	tool, err := e.pick(ctx, orDefault(e.NmTools, DefaultNmTools))
	if err != nil {
		return nil, err
	}
	for _, flags := range orDefault(e.NmFlags, DefaultNmFlags) {
		out, err := e.runner().Run(ctx, tool, append(append([]string(nil), flags...), path)...)
		if err != nil {
			e.log().Debug("nm run failed", zap.Strings("flags", flags), zap.Error(err))
			continue
		}
		if v := ParseNm(out); len(v) > 0 {
			return v, nil
		}
	}
	return nil, nil
}

func (e *Extractor) objdump(ctx context.Context, path string) ([]string, error) {
	tool, err := e.pick(ctx, orDefault(e.ObjdumpTools, DefaultObjdumpTools))
	if err != nil {
		return nil, err
	}
	out, err := e.runner().Run(ctx, tool, "-p", path)
	if err != nil {
		return nil, err
	}
	return ParseObjdump(out), nil
}

// ExtractAll extracts paths with at most limit artifacts in flight; limit <= 0
// means no limit. Results keep the order of paths and carry their own
// errors; the returned error is only set when ctx ends first.
func (e *Extractor) ExtractAll(ctx context.Context, paths []string, limit int) ([]Result, error) {
	out := make([]Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			syms, err := e.Extract(ctx, p)
			out[i] = Result{Path: p, Symbols: syms, Err: err}
			return nil
		})
	}
	return out, g.Wait()
}
