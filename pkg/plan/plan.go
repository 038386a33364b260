// Package plan orchestrates a resource generation run: it flattens the
// manifest, narrows it to installed platforms, scans for source images while
// preparing destination directories, resolves every asset and hands the
// resulting jobs to a Generator.
package plan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fulmenhq/resgen/pkg/configxml"
	"github.com/fulmenhq/resgen/pkg/dest"
	"github.com/fulmenhq/resgen/pkg/ignore"
	"github.com/fulmenhq/resgen/pkg/logger"
	"github.com/fulmenhq/resgen/pkg/manifest"
	"github.com/fulmenhq/resgen/pkg/platform"
	"github.com/fulmenhq/resgen/pkg/project"
	"github.com/fulmenhq/resgen/pkg/resolve"
	"github.com/fulmenhq/resgen/pkg/source"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// UnresolvedPolicy decides what happens when some assets have no source.
type UnresolvedPolicy string

const (
	// PolicyFail aborts the run with the *resolve.UnresolvedAssetsError.
	PolicyFail UnresolvedPolicy = "fail"
	// PolicySkip hands only resolved jobs to the generator.
	PolicySkip UnresolvedPolicy = "skip"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (UnresolvedPolicy, error) {
	switch UnresolvedPolicy(strings.ToLower(s)) {
	case PolicyFail, "":
		return PolicyFail, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown unresolved policy %q (expected fail|skip)", s)
	}
}

// DefaultCategories are generated when the caller requests none.
var DefaultCategories = []string{"icon", "splash"}

// Options configures an Engine run.
type Options struct {
	Categories  []string
	Unresolved  UnresolvedPolicy
	Exclude     []string
	Concurrency int
	// NoOp computes the plan without creating directories.
	NoOp bool
}

// Plan is the outcome of a run.
type Plan struct {
	Project     string                   `json:"project"`
	Platforms   []string                 `json:"platforms"`
	Categories  []string                 `json:"categories"`
	Orientation string                   `json:"orientation,omitempty"`
	Directories []string                 `json:"directories"`
	Candidates  []source.Candidate       `json:"candidates"`
	Jobs        []resolve.Job            `json:"jobs"`
	Unresolved  []manifest.RequiredAsset `json:"unresolved,omitempty"`
	NoOp        bool                     `json:"no_op,omitempty"`
}

// Resolved returns the jobs that have a source image.
func (p *Plan) Resolved() []resolve.Job {
	out := make([]resolve.Job, 0, len(p.Jobs))
	for _, j := range p.Jobs {
		if j.Resolved() {
			out = append(out, j)
		}
	}
	return out
}

// Generator receives the jobs of a completed plan. Producing image bytes and
// updating config.xml happen behind this interface.
type Generator interface {
	Generate(ctx context.Context, p *Plan, jobs []resolve.Job) error
}

// Engine computes plans for one project.
type Engine struct {
	fs       afero.Fs
	manifest *manifest.Manifest
	project  *project.Project
	opts     Options
}

// NewEngine creates an engine. Empty categories default to
// DefaultCategories; an empty policy defaults to PolicyFail.
func NewEngine(fsys afero.Fs, m *manifest.Manifest, proj *project.Project, opts Options) *Engine {
	if len(opts.Categories) == 0 {
		opts.Categories = DefaultCategories
	}
	if opts.Unresolved == "" {
		opts.Unresolved = PolicyFail
	}
	return &Engine{fs: fsys, manifest: m, project: proj, opts: opts}
}

// Plan runs every stage up to and including resolution. Under PolicyFail a
// non-nil plan is returned alongside the *resolve.UnresolvedAssetsError so
// callers can still report it.
func (e *Engine) Plan(ctx context.Context) (*Plan, error) {
	start := time.Now()

	assets, err := manifest.Flatten(e.manifest)
	if err != nil {
		return nil, err
	}

	active, err := platform.Active(e.manifest.PlatformNames(), e.project.Platforms)
	if err != nil {
		return nil, err
	}
	assets = platform.FilterAssets(assets, active, e.opts.Categories)
	logger.Debug("Required assets selected",
		logger.String("platforms", strings.Join(active, ",")),
		logger.Int("assets", len(assets)))

	resolver := resolve.New(e.project.ResourceDir)
	destinations := make([]string, 0, len(assets))
	for _, a := range assets {
		destinations = append(destinations, resolver.Destination(a))
	}

	p := &Plan{
		Project:     e.project.Root,
		Platforms:   active,
		Categories:  e.opts.Categories,
		Orientation: e.orientation(),
		NoOp:        e.opts.NoOp,
	}

	ignored, err := ignore.Load(e.fs, e.project.ResourceDir)
	if err != nil {
		return nil, &source.SourceScanError{Path: e.project.ResourceDir, Err: err}
	}
	if ignored.Len() > 0 {
		logger.Debug("Ignore patterns loaded", logger.Int("patterns", ignored.Len()))
	}

	scanner := source.NewScanner(e.fs, source.Options{
		ResourceDir: e.project.ResourceDir,
		Exclude:     e.opts.Exclude,
		Ignore:      ignored,
		Concurrency: e.opts.Concurrency,
	})
	preparer := dest.NewPreparer(e.fs, e.project.ResourceDir, e.opts.Concurrency)

	var scanErr, prepErr error
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p.Candidates, scanErr = scanner.Scan(gctx, active, e.opts.Categories)
		return scanErr
	})
	g.Go(func() error {
		if e.opts.NoOp {
			p.Directories, prepErr = preparer.Check(destinations)
			return prepErr
		}
		p.Directories, prepErr = preparer.Prepare(gctx, destinations)
		return prepErr
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// A failing stage cancels its sibling; that cancellation is not a
	// failure of its own.
	if err := errors.Join(ownFailure(scanErr), ownFailure(prepErr)); err != nil {
		return nil, err
	}

	jobs, err := resolver.Resolve(assets, p.Candidates)
	p.Jobs = jobs
	if err != nil {
		var unresolvedErr *resolve.UnresolvedAssetsError
		if !errors.As(err, &unresolvedErr) {
			return nil, err
		}
		p.Unresolved = unresolvedErr.Assets
		for _, a := range unresolvedErr.Assets {
			logger.Warn("No source image found", logger.String("asset", a.Key()))
		}
		if e.opts.Unresolved == PolicyFail {
			return p, err
		}
	}

	logger.Info(fmt.Sprintf("Planned %d jobs (%d unresolved) for %d platform(s) in %v",
		len(p.Jobs), len(p.Unresolved), len(active), time.Since(start).Round(time.Millisecond)))
	return p, nil
}

func ownFailure(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Run computes the plan and hands its resolved jobs to gen.
func (e *Engine) Run(ctx context.Context, gen Generator) (*Plan, error) {
	p, err := e.Plan(ctx)
	if err != nil {
		return p, err
	}
	if err := gen.Generate(ctx, p, p.Resolved()); err != nil {
		return p, fmt.Errorf("generate resources: %w", err)
	}
	return p, nil
}

// orientation reads config.xml for pass-through metadata. Failures only
// cost the metadata, so they are logged and ignored.
func (e *Engine) orientation() string {
	if e.project.ConfigXMLPath == "" {
		return ""
	}
	data, err := e.project.ReadConfigXML(e.fs)
	if err != nil {
		logger.Warn("Unable to read config.xml", logger.Err(err))
		return ""
	}
	orientation, err := configxml.Orientation(data)
	if err != nil {
		logger.Warn("Unable to read orientation from config.xml", logger.Err(err))
		return ""
	}
	return orientation
}
