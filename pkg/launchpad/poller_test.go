package launchpad

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fakeArchive serves canned Launchpad collection responses, switching the
// source status after a number of polls to exercise the waiting paths.
type fakeArchive struct {
	sourceStatuses []string // consumed one per getPublishedSources call
	sourceCalls    atomic.Int32
	builds         func(call int32) string
	buildCalls     atomic.Int32
	binaries       func(call int32) string
	binaryCalls    atomic.Int32
}

func (f *fakeArchive) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/~ci-team/+archive/ubuntu/unstable-ci-proposed") {
			t.Errorf("unexpected archive path %q", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		switch op := r.URL.Query().Get("ws.op"); op {
		case "getPublishedSources":
			call := f.sourceCalls.Add(1)
			index := int(call) - 1
			if index >= len(f.sourceStatuses) {
				index = len(f.sourceStatuses) - 1
			}
			status := f.sourceStatuses[index]
			if status == "" {
				fmt.Fprint(w, `{"entries": []}`)
				return
			}
			fmt.Fprintf(w, `{"entries": [{"source_package_name": "krita", "source_package_version": "1.0", "status": %q}]}`, status)
		case "getBuilds":
			fmt.Fprint(w, f.builds(f.buildCalls.Add(1)))
		case "getPublishedBinaries":
			fmt.Fprint(w, f.binaries(f.binaryCalls.Add(1)))
		default:
			t.Errorf("unexpected ws.op %q", op)
			http.NotFound(w, r)
		}
	})
}

func newTestPoller(t *testing.T, archive *fakeArchive, attempts int) *Poller {
	t.Helper()
	server := httptest.NewServer(archive.handler(t))
	t.Cleanup(server.Close)

	client := NewClient(WithAPIRoot(server.URL))
	return NewPoller(client,
		WithInterval(time.Millisecond),
		WithAttempts(attempts),
	)
}

var testArchive = Archive{Team: "ci-team", PPA: "unstable-ci-proposed"}

func buildsPayload(states ...string) string {
	entries := make([]string, 0, len(states))
	for i, state := range states {
		entries = append(entries, fmt.Sprintf(`{"arch_tag": "arch%d", "buildstate": %q}`, i, state))
	}
	return `{"entries": [` + strings.Join(entries, ",") + `]}`
}

func TestPoller_SourcePendingThenPublished(t *testing.T) {
	archive := &fakeArchive{sourceStatuses: []string{StatusPending, StatusPublished}}
	poller := newTestPoller(t, archive, 5)

	if err := poller.WaitSourcePublished(context.Background(), testArchive, "krita", "1.0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if archive.sourceCalls.Load() != 2 {
		t.Fatalf("expected 2 polls, got %d", archive.sourceCalls.Load())
	}
}

func TestPoller_SourceMissingRecordKeepsWaiting(t *testing.T) {
	archive := &fakeArchive{sourceStatuses: []string{"", "", StatusPublished}}
	poller := newTestPoller(t, archive, 5)

	if err := poller.WaitSourcePublished(context.Background(), testArchive, "krita", "1.0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPoller_SourceDeletedIsTerminal(t *testing.T) {
	archive := &fakeArchive{sourceStatuses: []string{"Deleted"}}
	poller := newTestPoller(t, archive, 5)

	err := poller.WaitSourcePublished(context.Background(), testArchive, "krita", "1.0")
	if err == nil || !strings.Contains(err.Error(), "no longer exists") {
		t.Fatalf("expected terminal error, got %v", err)
	}
	if archive.sourceCalls.Load() != 1 {
		t.Fatalf("terminal status must not be retried, got %d polls", archive.sourceCalls.Load())
	}
}

func TestPoller_SourceTimeout(t *testing.T) {
	archive := &fakeArchive{sourceStatuses: []string{StatusPending}}
	poller := newTestPoller(t, archive, 3)

	err := poller.WaitSourcePublished(context.Background(), testArchive, "krita", "1.0")
	if !errors.Is(err, ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
	if archive.sourceCalls.Load() != 3 {
		t.Fatalf("expected 3 polls before timeout, got %d", archive.sourceCalls.Load())
	}
}

func TestPoller_BinariesBuildThenPublish(t *testing.T) {
	archive := &fakeArchive{
		sourceStatuses: []string{StatusPublished},
		builds: func(call int32) string {
			if call == 1 {
				return buildsPayload(BuildStateCurrentlyBuilding, BuildStateSuccess)
			}
			return buildsPayload(BuildStateSuccess, BuildStateSuccess)
		},
		binaries: func(call int32) string {
			if call <= 2 {
				return `{"entries": [{"binary_package_name": "krita", "status": "Pending"}]}`
			}
			return `{"entries": [{"binary_package_name": "krita", "status": "Published"}]}`
		},
	}
	poller := newTestPoller(t, archive, 10)

	if err := poller.WaitBinariesPublished(context.Background(), testArchive, "krita", "1.0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPoller_BuildFailureIsTerminal(t *testing.T) {
	archive := &fakeArchive{
		sourceStatuses: []string{StatusPublished},
		builds: func(int32) string {
			return buildsPayload("Failed to build")
		},
		binaries: func(int32) string { return `{"entries": []}` },
	}
	poller := newTestPoller(t, archive, 5)

	err := poller.WaitBinariesPublished(context.Background(), testArchive, "krita", "1.0")
	if err == nil || !strings.Contains(err.Error(), "failed") {
		t.Fatalf("expected build failure error, got %v", err)
	}
}

func TestPoller_ContextCancellationStopsWaiting(t *testing.T) {
	archive := &fakeArchive{sourceStatuses: []string{StatusPending}}
	server := httptest.NewServer(archive.handler(t))
	t.Cleanup(server.Close)

	poller := NewPoller(NewClient(WithAPIRoot(server.URL)),
		WithInterval(time.Hour),
		WithAttempts(5),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := poller.WaitSourcePublished(ctx, testArchive, "krita", "1.0")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context deadline error, got %v", err)
	}
}

func TestClient_RejectsBlankArchive(t *testing.T) {
	client := NewClient()
	if _, err := client.Builds(context.Background(), Archive{}); err == nil {
		t.Fatalf("expected error for blank archive")
	}
}
