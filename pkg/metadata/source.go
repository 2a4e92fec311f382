package metadata

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// SourceKind discriminates the supported metadata locations.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindGit  SourceKind = "git"
)

// Source identifies where a ci.conf metadata document lives.
type Source interface {
	Location() string
	Kind() SourceKind
}

// fileSource identifies on-disk metadata files.
type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

// fsSource references a path within an fs.FS.
type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

// gitSource references a repository to clone; the metadata file is read from
// its work tree and the clone is discarded afterwards.
type gitSource struct {
	cloneURL string
	branch   string
}

func (s gitSource) Location() string {
	return s.cloneURL
}

func (s gitSource) Kind() SourceKind {
	return SourceKindGit
}

// Branch returns the branch to check out; empty means the remote default.
func (s gitSource) Branch() string {
	return s.branch
}

// SourceFromGit returns a Source that clones the named repository. It panics
// on an empty or invalid clone URL to surface configuration mistakes early.
func SourceFromGit(cloneURL, branch string) Source {
	trimmed := strings.TrimSpace(cloneURL)
	if trimmed == "" {
		panic("metadata: empty git source URL")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		panic(fmt.Sprintf("metadata: invalid git URL %q: %v", cloneURL, err))
	}
	return gitSource{cloneURL: trimmed, branch: strings.TrimSpace(branch)}
}
