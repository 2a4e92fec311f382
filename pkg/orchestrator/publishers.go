package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goliatone/go-jobgen/pkg/jenkins"
)

// WriterPublisher streams rendered jobs to a writer, each preceded by a
// comment header naming the job. It is the default publisher.
type WriterPublisher struct {
	// Out receives the documents. Defaults to os.Stdout.
	Out io.Writer
}

func (p WriterPublisher) Name() string {
	return "stdout"
}

func (p WriterPublisher) Publish(_ context.Context, job Job) error {
	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	if _, err := fmt.Fprintf(out, "<!-- job: %s -->\n%s\n", job.Name, job.Config); err != nil {
		return fmt.Errorf("orchestrator: write job %q: %w", job.Name, err)
	}
	return nil
}

// DirPublisher writes each job to <Dir>/<job name>.xml, creating the
// directory on first use.
type DirPublisher struct {
	Dir string
}

func (p DirPublisher) Name() string {
	return "dir"
}

func (p DirPublisher) Publish(_ context.Context, job Job) error {
	if p.Dir == "" {
		return fmt.Errorf("orchestrator: dir publisher requires a directory")
	}
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("orchestrator: create %s: %w", p.Dir, err)
	}
	path := filepath.Join(p.Dir, job.Name+".xml")
	if err := os.WriteFile(path, []byte(job.Config), 0o644); err != nil {
		return fmt.Errorf("orchestrator: write %s: %w", path, err)
	}
	return nil
}

// JenkinsPublisher pushes each job to a Jenkins controller, creating the job
// when it does not exist and updating its config when it does.
type JenkinsPublisher struct {
	Client *jenkins.Client
}

func (p JenkinsPublisher) Name() string {
	return "jenkins"
}

func (p JenkinsPublisher) Publish(ctx context.Context, job Job) error {
	if p.Client == nil {
		return fmt.Errorf("orchestrator: jenkins publisher requires a client")
	}
	return p.Client.CreateOrUpdateJob(ctx, job.Name, job.Config)
}
