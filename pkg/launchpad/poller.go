package launchpad

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// DefaultInterval is the wait between verification rounds.
	DefaultInterval = 5 * time.Minute
	// DefaultAttempts caps polling at roughly two hours.
	DefaultAttempts = 24
)

// ErrTimedOut is returned when the attempt budget is exhausted while the
// archive is still churning.
var ErrTimedOut = errors.New("launchpad: timed out, contact Launchpad admins")

// PollerOption customises a Poller.
type PollerOption func(*Poller)

// WithInterval overrides the wait between verification rounds.
func WithInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithAttempts overrides the verification round budget.
func WithAttempts(attempts int) PollerOption {
	return func(p *Poller) {
		if attempts > 0 {
			p.attempts = attempts
		}
	}
}

// WithLogger injects a logger for progress reporting.
func WithLogger(logger *log.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Poller tracks a source package through a PPA: first until its source
// publication lands, then until every binary build has finished and
// published.
type Poller struct {
	client   *Client
	interval time.Duration
	attempts int
	logger   *log.Logger
}

// NewPoller wraps a Client with polling behaviour.
func NewPoller(client *Client, options ...PollerOption) *Poller {
	p := &Poller{
		client:   client,
		interval: DefaultInterval,
		attempts: DefaultAttempts,
		logger:   log.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// WaitSourcePublished blocks until the source publication for the given
// package version reaches Published. A status other than Pending or Published
// is terminal; a missing publication record means Launchpad has not accepted
// the upload yet and the poller keeps waiting.
func (p *Poller) WaitSourcePublished(ctx context.Context, archive Archive, sourceName, version string) error {
	for attempt := 0; attempt < p.attempts; attempt++ {
		p.logger.Info("verifying source publication",
			"package", sourceName, "version", version,
			"elapsed", time.Duration(attempt)*p.interval)

		sources, err := p.client.PublishedSources(ctx, archive, sourceName, version)
		if err != nil {
			return err
		}

		if len(sources) > 0 {
			switch status := sources[0].Status; status {
			case StatusPublished:
				p.logger.Info("source published", "package", sourceName, "version", version)
				return nil
			case StatusPending:
				// Still moving through the publisher.
			default:
				return fmt.Errorf("launchpad: source package no longer exists (status %q)", status)
			}
		}

		if err := p.sleep(ctx); err != nil {
			return err
		}
	}
	return ErrTimedOut
}

// WaitBinariesPublished blocks until every binary build for the archive has
// built successfully and its publications have landed. The source publication
// is a prerequisite and is waited for first.
func (p *Poller) WaitBinariesPublished(ctx context.Context, archive Archive, sourceName, version string) error {
	if err := p.WaitSourcePublished(ctx, archive, sourceName, version); err != nil {
		return err
	}

	for attempt := 0; attempt < p.attempts; attempt++ {
		p.logger.Info("verifying binary publications",
			"package", sourceName,
			"elapsed", time.Duration(attempt)*p.interval)

		settled, err := p.binariesSettled(ctx, archive)
		if err != nil {
			return err
		}
		if settled {
			p.logger.Info("all builds have successfully published", "package", sourceName)
			return nil
		}

		if err := p.sleep(ctx); err != nil {
			return err
		}
	}
	return ErrTimedOut
}

func (p *Poller) binariesSettled(ctx context.Context, archive Archive) (bool, error) {
	builds, err := p.client.Builds(ctx, archive)
	if err != nil {
		return false, err
	}
	if len(builds) == 0 {
		// Builds have not been dispatched yet.
		return false, nil
	}

	waiting := false
	for _, build := range builds {
		switch build.BuildState {
		case BuildStateNeedsBuilding, BuildStateCurrentlyBuilding, BuildStateUploading:
			p.logger.Debug("still building", "arch", build.ArchTag, "state", build.BuildState)
			waiting = true
		case BuildStateSuccess:
			p.logger.Debug("successfully built", "arch", build.ArchTag)
		default:
			return false, fmt.Errorf("launchpad: build for %s failed (state %q)", build.ArchTag, build.BuildState)
		}
	}

	binaries, err := p.client.PublishedBinaries(ctx, archive)
	if err != nil {
		return false, err
	}
	for _, binary := range binaries {
		switch binary.Status {
		case StatusPending:
			p.logger.Debug("still publishing", "binary", binary.BinaryName)
			waiting = true
		case StatusPublished:
			p.logger.Debug("published", "binary", binary.BinaryName)
		default:
			return false, fmt.Errorf("launchpad: binary %s cannot publish (status %q)", binary.BinaryName, binary.Status)
		}
	}

	return !waiting, nil
}

func (p *Poller) sleep(ctx context.Context) error {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
