package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-jobgen/pkg/jenkins"
	"github.com/goliatone/go-jobgen/pkg/metadata"
	"github.com/goliatone/go-jobgen/pkg/template"
	"github.com/goliatone/go-jobgen/pkg/timing"
)

const defaultPublisherName = "stdout"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom metadata loader.
func WithLoader(loader metadata.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithTemplate overrides the job template. The default is the embedded
// packaging CI definition.
func WithTemplate(tpl template.Template) Option {
	return func(o *Orchestrator) {
		o.tpl = tpl
		o.tplSpecified = true
	}
}

// WithRegistry injects a publisher registry.
func WithRegistry(registry *Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultPublisher overrides the publisher used when a request omits an
// explicit Publisher field.
func WithDefaultPublisher(name string) Option {
	return func(o *Orchestrator) {
		o.defaultPublisher = name
	}
}

// WithLogger injects a logger for pipeline progress reporting.
func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTimers records pipeline stage durations into the given set.
func WithTimers(timers *timing.Set) Option {
	return func(o *Orchestrator) {
		if timers != nil {
			o.timers = timers
		}
	}
}

// WithoutXMLValidation skips the well-formedness pass after rendering, for
// callers targeting non-XML schedulers with a custom template.
func WithoutXMLValidation() Option {
	return func(o *Orchestrator) {
		o.validateXML = false
	}
}

// Orchestrator coordinates the full pipeline from ci.conf metadata to
// published job definitions. It applies sensible defaults (embedded job
// template, stdout publisher) while remaining open to dependency injection.
type Orchestrator struct {
	loader           metadata.Loader
	tpl              template.Template
	tplSpecified     bool
	registry         *Registry
	defaultPublisher string
	logger           *log.Logger
	timers           *timing.Set
	validateXML      bool
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations so callers
// can start with a single constructor call.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultPublisher: defaultPublisherName,
		validateXML:      true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = metadata.NewLoader()
	}
	if !o.tplSpecified {
		o.tpl = jenkins.PackageCITemplate()
	}
	if o.registry == nil {
		o.registry = NewRegistry()
		o.registry.MustRegister(WriterPublisher{})
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if o.timers == nil {
		o.timers = timing.NewSet()
	}
}

// Request describes the inputs required to generate job definitions.
type Request struct {
	// Source identifies where the ci.conf metadata lives. Optional when
	// Repositories is supplied.
	Source metadata.Source

	// Repositories allows callers to bypass the loader when they already have
	// parsed metadata.
	Repositories []metadata.Repository

	// Publisher names the publisher to hand jobs to. If empty, Publish falls
	// back to the configured default.
	Publisher string
}

// Generate loads the metadata, expands it into per-release job parameters,
// renders each job, and validates the output. It returns one Job per
// repository and release pair.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]Job, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	repositories, err := o.resolveRepositories(ctx, req)
	if err != nil {
		return nil, err
	}

	defer o.timers.Track("render")()

	var jobs []Job
	for _, repo := range repositories {
		batch, err := o.renderRepository(repo)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, batch...)
	}

	o.logger.Info("generated job definitions", "jobs", len(jobs), "repositories", len(repositories))
	return jobs, nil
}

// Publish generates the jobs and hands each one to the named publisher.
func (o *Orchestrator) Publish(ctx context.Context, req Request) ([]Job, error) {
	jobs, err := o.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	publisher, err := o.publisherFor(req.Publisher)
	if err != nil {
		return nil, err
	}

	defer o.timers.Track("publish")()

	for _, job := range jobs {
		if err := publisher.Publish(ctx, job); err != nil {
			return nil, fmt.Errorf("orchestrator: publish job %q: %w", job.Name, err)
		}
		o.logger.Debug("published job", "job", job.Name, "publisher", publisher.Name())
	}
	return jobs, nil
}

// Timers exposes the stage timing set for reporting.
func (o *Orchestrator) Timers() *timing.Set {
	return o.timers
}

func (o *Orchestrator) resolveRepositories(ctx context.Context, req Request) ([]metadata.Repository, error) {
	if len(req.Repositories) > 0 {
		return req.Repositories, nil
	}
	if req.Source == nil {
		return nil, errors.New("orchestrator: source or repositories are required")
	}

	defer o.timers.Track("load-metadata")()

	repositories, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load metadata: %w", err)
	}
	return repositories, nil
}

func (o *Orchestrator) renderRepository(repo metadata.Repository) ([]Job, error) {
	team, ppa, err := jenkins.SplitPPATarget(repo.UploadTarget)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: repository %q: %w", repo.Name, err)
	}

	jobs := make([]Job, 0, len(repo.Releases))
	for _, release := range repo.Releases {
		params := jenkins.JobParams{
			Name:            repo.Name,
			Release:         release,
			PackagingURL:    repo.PackagingURL,
			PackagingBranch: repo.PackagingBranch,
			UpstreamURL:     repo.UpstreamURL,
			UpstreamBranch:  repo.UpstreamBranch,
			UploadTarget:    repo.UploadTarget,
			LPTeam:          team,
			LPPPA:           ppa,
		}
		if err := params.Validate(); err != nil {
			return nil, err
		}

		doc, err := o.tpl.Render(params.ParameterSet())
		if err != nil {
			return nil, fmt.Errorf("orchestrator: render job %q: %w", params.JobName(), err)
		}
		if leftovers := template.Unresolved(doc); len(leftovers) != 0 {
			return nil, fmt.Errorf("orchestrator: job %q has unresolved tokens: %v", params.JobName(), leftovers)
		}
		if o.validateXML {
			if err := template.ValidateXML(doc); err != nil {
				return nil, fmt.Errorf("orchestrator: job %q: %w", params.JobName(), err)
			}
		}

		jobs = append(jobs, Job{Name: params.JobName(), Config: doc})
	}
	return jobs, nil
}

func (o *Orchestrator) publisherFor(name string) (Publisher, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: publisher registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultPublisher
	}

	publisher, err := o.registry.Get(target)
	if err != nil {
		if name != "" {
			return nil, fmt.Errorf("orchestrator: publisher %q: %w", name, err)
		}
		return nil, err
	}
	return publisher, nil
}
