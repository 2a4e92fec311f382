package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/goliatone/go-jobgen/pkg/debian"
	"github.com/goliatone/go-jobgen/pkg/launchpad"
)

func main() {
	pkg := flag.String("package", "", "the source package name")
	version := flag.String("package-version", "", "the package version to wait for")
	changelog := flag.String("changelog", "", "read the version from this debian/changelog instead of -package-version")
	team := flag.String("lp-team", "", "Launchpad user or team owning the PPA")
	ppa := flag.String("ppa", "", "name of the Launchpad PPA")
	interval := flag.Duration("interval", launchpad.DefaultInterval, "wait between verification rounds")
	attempts := flag.Int("attempts", launchpad.DefaultAttempts, "verification rounds before giving up")
	sourceOnly := flag.Bool("source-only", false, "stop once the source publication lands, skip binary checks")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	if strings.TrimSpace(*pkg) == "" || strings.TrimSpace(*team) == "" || strings.TrimSpace(*ppa) == "" {
		logger.Fatal("-package, -lp-team, and -ppa are required")
	}

	target := strings.TrimSpace(*version)
	if target == "" && strings.TrimSpace(*changelog) != "" {
		entry, err := debian.ParseChangelogFile(*changelog)
		if err != nil {
			logger.Fatal("parse changelog", "err", err)
		}
		target = entry.Version
	}
	if target == "" {
		logger.Fatal("either -package-version or -changelog is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	poller := launchpad.NewPoller(launchpad.NewClient(),
		launchpad.WithInterval(*interval),
		launchpad.WithAttempts(*attempts),
		launchpad.WithLogger(logger),
	)

	archive := launchpad.Archive{Team: *team, PPA: *ppa}

	var err error
	if *sourceOnly {
		err = poller.WaitSourcePublished(ctx, archive, *pkg, target)
	} else {
		err = poller.WaitBinariesPublished(ctx, archive, *pkg, target)
	}
	if err != nil {
		logger.Fatal("launchpad verification failed", "package", *pkg, "version", target, "err", err)
	}

	logger.Info("launchpad verification complete", "package", *pkg, "version", target)
}
