package metadata

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

type stubCloner struct {
	conf      string
	confName  string
	gotURL    string
	gotBranch string
	err       error
}

func (s *stubCloner) Clone(_ context.Context, cloneURL, branch, dir string) error {
	s.gotURL = cloneURL
	s.gotBranch = branch
	if s.err != nil {
		return s.err
	}
	name := s.confName
	if name == "" {
		name = DefaultConfigName
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(s.conf), 0o644)
}

func TestLoader_LoadsFromFS(t *testing.T) {
	files := fstest.MapFS{
		"ci.conf": &fstest.MapFile{Data: []byte(sampleConf)},
	}
	loader := NewLoader(WithFileSystem(files))

	repositories, err := loader.Load(context.Background(), SourceFromFS("ci.conf"))
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(repositories) != 2 {
		t.Fatalf("expected 2 repositories, got %d", len(repositories))
	}
}

func TestLoader_LoadsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ci.conf")
	if err := os.WriteFile(path, []byte(sampleConf), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	repositories, err := NewLoader().Load(context.Background(), SourceFromFile(path))
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if repositories[0].Name != "krita" {
		t.Fatalf("unexpected first repository %q", repositories[0].Name)
	}
}

func TestLoader_LoadsFromGitAndDiscardsClone(t *testing.T) {
	cloner := &stubCloner{conf: sampleConf}
	loader := NewLoader(WithCloner(cloner))

	repositories, err := loader.Load(context.Background(), SourceFromGit("https://git.example.org/metadata.git", "main"))
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if len(repositories) != 2 {
		t.Fatalf("expected 2 repositories, got %d", len(repositories))
	}
	if cloner.gotURL != "https://git.example.org/metadata.git" || cloner.gotBranch != "main" {
		t.Fatalf("unexpected clone request: %q @ %q", cloner.gotURL, cloner.gotBranch)
	}
}

func TestLoader_ConfigNameOverride(t *testing.T) {
	cloner := &stubCloner{conf: sampleConf, confName: "ci.yaml"}
	loader := NewLoader(WithCloner(cloner), WithConfigName("ci.yaml"))

	if _, err := loader.Load(context.Background(), SourceFromGit("https://git.example.org/metadata.git", "")); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
}

func TestLoader_MissingConfInClone(t *testing.T) {
	cloner := &stubCloner{conf: sampleConf, confName: "elsewhere.conf"}
	loader := NewLoader(WithCloner(cloner))

	if _, err := loader.Load(context.Background(), SourceFromGit("https://git.example.org/metadata.git", "")); err == nil {
		t.Fatalf("expected error when ci.conf is absent from the clone")
	}
}

func TestLoader_FSNotConfigured(t *testing.T) {
	if _, err := NewLoader().Load(context.Background(), SourceFromFS("ci.conf")); err == nil {
		t.Fatalf("expected error for fs source without filesystem")
	}
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewLoader().Load(ctx, SourceFromFile("ci.conf")); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestSourceFromGit_PanicsOnInvalidURL(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for invalid URL")
		}
	}()
	SourceFromGit("not a url", "")
}
