package workspace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ezcompose/internal/config"
	"ezcompose/internal/diag"
)

// FilePlaceholder in a diagnostics command is replaced by the absolute path
// of the file being captured.
const FilePlaceholder = "{file}"

// Source collects diagnostics relevant to the file at path (absolute).
// Sources may report diagnostics for other files too; callers filter.
type Source interface {
	Collect(ctx context.Context, path string, rep diag.Reporter) error
}

// CommandSource runs a compiler or linter and parses its output.
type CommandSource struct {
	Argv    []string
	Dir     string
	Timeout time.Duration
	Paths   diag.PathFunc
}

func (s CommandSource) Collect(ctx context.Context, path string, rep diag.Reporter) error {
	if len(s.Argv) == 0 {
		return nil
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	argv := make([]string, len(s.Argv))
	for i, arg := range s.Argv {
		argv[i] = strings.ReplaceAll(arg, FilePlaceholder, path)
	}

	// #nosec G204 -- the command comes from the user's own config
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = s.Dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		// Linters exit non-zero when they find problems; their output is
		// still the result.
		if !errors.As(err, &exitErr) || ctx.Err() != nil {
			return fmt.Errorf("run %s: %w", argv[0], err)
		}
	}
	return diag.ParseCompilerOutput(&out, rep, s.Paths)
}

// ReportSource reads a JSON diagnostics report written by another tool.
// A missing report means no diagnostics.
type ReportSource struct {
	Path  string
	Paths diag.PathFunc
}

func (s ReportSource) Collect(ctx context.Context, _ string, rep diag.Reporter) error {
	if s.Path == "" {
		return nil
	}
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open diagnostics report: %w", err)
	}
	defer f.Close()
	if err := diag.DecodeReport(f, rep, s.Paths); err != nil {
		return fmt.Errorf("%s: %w", s.Path, err)
	}
	return nil
}

// MultiSource fans a collection out to every source. Every source runs even
// when an earlier one fails; failures are joined.
type MultiSource []Source

func (m MultiSource) Collect(ctx context.Context, path string, rep diag.Reporter) error {
	var errs []error
	for _, src := range m {
		if src == nil {
			continue
		}
		if err := src.Collect(ctx, path, rep); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type cached struct {
	diags []diag.Diagnostic
	err   error
}

// Prefetcher runs a Source ahead of time for a batch of files, in parallel.
// Each prefetched result is consumed by the next Collect for that path;
// later Collects hit the underlying source again.
type Prefetcher struct {
	next Source
	mu   sync.Mutex
	hits map[string]cached
}

func NewPrefetcher(next Source) *Prefetcher {
	return &Prefetcher{next: next, hits: make(map[string]cached)}
}

// Prefetch collects diagnostics for every path with at most jobs concurrent
// collections. Collection failures are kept and returned by Collect; only
// cancellation aborts the batch.
func (p *Prefetcher) Prefetch(ctx context.Context, paths []string, jobs int) error {
	if p.next == nil {
		return nil
	}
	if jobs <= 0 {
		jobs = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			bag := diag.NewBag(0)
			err := p.next.Collect(gctx, path, diag.BagReporter{Bag: bag})
			if cerr := gctx.Err(); cerr != nil {
				return cerr
			}
			p.mu.Lock()
			p.hits[path] = cached{diags: bag.Items(), err: err}
			p.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (p *Prefetcher) Collect(ctx context.Context, path string, rep diag.Reporter) error {
	p.mu.Lock()
	hit, ok := p.hits[path]
	delete(p.hits, path)
	p.mu.Unlock()

	if !ok {
		if p.next == nil {
			return nil
		}
		return p.next.Collect(ctx, path, rep)
	}
	for _, d := range hit.diags {
		rep.Report(d)
	}
	return hit.err
}

// FromConfig builds the configured diagnostics sources for a workspace
// rooted at root. It returns nil when nothing is configured.
func FromConfig(cfg config.DiagnosticsConfig, root string) Source {
	paths := ToolPaths(root)
	var srcs MultiSource
	if len(cfg.Command) > 0 {
		srcs = append(srcs, CommandSource{
			Argv:    cfg.Command,
			Dir:     root,
			Timeout: cfg.Timeout.Duration,
			Paths:   paths,
		})
	}
	if cfg.Report != "" {
		report := cfg.Report
		if !filepath.IsAbs(report) {
			report = filepath.Join(root, report)
		}
		srcs = append(srcs, ReportSource{Path: report, Paths: paths})
	}
	switch len(srcs) {
	case 0:
		return nil
	case 1:
		return srcs[0]
	}
	return srcs
}
