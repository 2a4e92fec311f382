package jobgen

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-jobgen/pkg/jenkins"
	"github.com/goliatone/go-jobgen/pkg/metadata"
	"github.com/goliatone/go-jobgen/pkg/orchestrator"
	"github.com/goliatone/go-jobgen/pkg/template"
)

// Job is a rendered job definition; alias exported via the root package for
// convenience.
type Job = orchestrator.Job

// Request describes the inputs required to generate job definitions.
type Request = orchestrator.Request

// JobParams carries the per-job values substituted into a job template.
type JobParams = jenkins.JobParams

// Repository describes one package under CI.
type Repository = metadata.Repository

// New exposes the orchestrator constructor from the top-level module.
func New(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateJobs loads ci.conf metadata from the source and renders one job
// definition per repository and release pair. It is the simplest entry point
// for callers that just want the documents.
func GenerateJobs(ctx context.Context, source metadata.Source, options ...orchestrator.Option) ([]Job, error) {
	gen := orchestrator.New(options...)
	return gen.Generate(ctx, orchestrator.Request{Source: source})
}

// RenderJob renders a single job definition from explicit params using the
// embedded packaging template, bypassing the metadata stage.
func RenderJob(params JobParams) (Job, error) {
	if err := params.Validate(); err != nil {
		return Job{}, err
	}
	doc, err := jenkins.PackageCITemplate().Render(params.ParameterSet())
	if err != nil {
		return Job{}, err
	}
	if err := template.ValidateXML(doc); err != nil {
		return Job{}, err
	}
	return Job{Name: params.JobName(), Config: doc}, nil
}

// WithLoader forwards a custom metadata loader to the orchestrator so
// callers can configure sources without importing the orchestrator package.
func WithLoader(loader metadata.Loader) orchestrator.Option {
	return orchestrator.WithLoader(loader)
}

// EmbeddedTemplates exposes the built-in job template bundle so callers can
// reuse or extend it without importing the jenkins package directly.
func EmbeddedTemplates() fs.FS {
	return jenkins.TemplatesFS()
}
