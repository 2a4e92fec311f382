package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/log"

	"github.com/goliatone/go-jobgen/pkg/jenkins"
	"github.com/goliatone/go-jobgen/pkg/metadata"
	"github.com/goliatone/go-jobgen/pkg/orchestrator"
	"github.com/goliatone/go-jobgen/pkg/timing"
)

func main() {
	conf := flag.String("conf", metadata.DefaultConfigName, "ci.conf path, or git URL when -conf-branch is relevant")
	confBranch := flag.String("conf-branch", "", "branch to clone when -conf is a git URL")
	publisher := flag.String("publisher", "stdout", "where to hand rendered jobs: stdout, dir, or jenkins")
	output := flag.String("output", "jobs", "output directory for the dir publisher")
	jenkinsURL := flag.String("jenkins-url", "", "Jenkins controller URL for the jenkins publisher")
	jenkinsUser := flag.String("jenkins-user", "", "Jenkins user")
	jenkinsToken := flag.String("jenkins-token", "", "Jenkins API token (or JOBGEN_JENKINS_TOKEN)")
	yes := flag.Bool("yes", false, "skip the confirmation prompt before updating Jenkins")
	timings := flag.Bool("timings", false, "print a stage timing report on exit")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger := newLogger(*logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	timers := timing.NewSet()
	registry := orchestrator.NewRegistry()
	registry.MustRegister(orchestrator.WriterPublisher{Out: os.Stdout})
	registry.MustRegister(orchestrator.DirPublisher{Dir: *output})

	if *publisher == "jenkins" {
		token := *jenkinsToken
		if token == "" {
			token = os.Getenv("JOBGEN_JENKINS_TOKEN")
		}
		client, err := jenkins.NewClient(*jenkinsURL, jenkins.WithCredentials(*jenkinsUser, token))
		if err != nil {
			logger.Fatal("configure jenkins publisher", "err", err)
		}
		registry.MustRegister(orchestrator.JenkinsPublisher{Client: client})

		if !*yes && !confirm(fmt.Sprintf("Update job definitions on %s?", *jenkinsURL)) {
			logger.Info("aborted by operator")
			return
		}
	}

	gen := orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithLogger(logger),
		orchestrator.WithTimers(timers),
	)

	jobs, err := gen.Publish(ctx, orchestrator.Request{
		Source:    parseSource(*conf, *confBranch),
		Publisher: *publisher,
	})
	if err != nil {
		logger.Fatal("generate jobs", "err", err)
	}

	logger.Info("done", "jobs", len(jobs), "publisher", *publisher)
	if *timings {
		timers.Report(os.Stderr)
	}
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	switch strings.ToLower(level) {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

func parseSource(raw, branch string) metadata.Source {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return metadata.SourceFromGit(trimmed, branch)
	}
	return metadata.SourceFromFile(trimmed)
}

func confirm(message string) bool {
	answer := false
	prompt := &survey.Confirm{Message: message}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false
	}
	return answer
}
