package metadata

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// DefaultConfigName is the metadata file jobs are generated from.
const DefaultConfigName = "ci.conf"

// Loader fetches and parses ci.conf metadata from different sources (file
// path, fs.FS, git clone).
type Loader interface {
	Load(ctx context.Context, src Source) ([]Repository, error)
}

// Cloner materialises a git work tree for a Source of kind git. The default
// implementation shallow-clones with go-git; tests inject stubs.
type Cloner interface {
	Clone(ctx context.Context, cloneURL, branch, dir string) error
}

type gitCloner struct{}

func (gitCloner) Clone(ctx context.Context, cloneURL, branch, dir string) error {
	options := &git.CloneOptions{
		URL:          cloneURL,
		Depth:        1,
		SingleBranch: true,
	}
	if branch != "" {
		options.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}
	_, err := git.PlainCloneContext(ctx, dir, false, options)
	if err != nil {
		return fmt.Errorf("metadata: clone %s: %w", cloneURL, err)
	}
	return nil
}

// LoaderOption configures the built-in loader.
type LoaderOption func(*loader)

// WithFileSystem injects an fs.FS used to resolve SourceKindFS locations.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(l *loader) {
		l.files = files
	}
}

// WithConfigName overrides the metadata file name read from git work trees.
func WithConfigName(name string) LoaderOption {
	return func(l *loader) {
		if name != "" {
			l.configName = name
		}
	}
}

// WithCloner injects a custom git cloner.
func WithCloner(cloner Cloner) LoaderOption {
	return func(l *loader) {
		if cloner != nil {
			l.cloner = cloner
		}
	}
}

type loader struct {
	files      fs.FS
	configName string
	cloner     Cloner
}

// NewLoader constructs the built-in loader.
func NewLoader(options ...LoaderOption) Loader {
	l := &loader{
		configName: DefaultConfigName,
		cloner:     gitCloner{},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

func (l *loader) Load(ctx context.Context, src Source) ([]Repository, error) {
	if ctx == nil {
		return nil, errors.New("metadata: context is required")
	}
	if src == nil {
		return nil, errors.New("metadata: source is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := l.read(ctx, src)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (l *loader) read(ctx context.Context, src Source) ([]byte, error) {
	switch src.Kind() {
	case SourceKindFile:
		data, err := os.ReadFile(src.Location())
		if err != nil {
			return nil, fmt.Errorf("metadata: read %s: %w", src.Location(), err)
		}
		return data, nil
	case SourceKindFS:
		if l.files == nil {
			return nil, errors.New("metadata: fs source requires WithFileSystem")
		}
		data, err := fs.ReadFile(l.files, src.Location())
		if err != nil {
			return nil, fmt.Errorf("metadata: read %s: %w", src.Location(), err)
		}
		return data, nil
	case SourceKindGit:
		return l.readGit(ctx, src)
	default:
		return nil, fmt.Errorf("metadata: unsupported source kind %q", src.Kind())
	}
}

// readGit clones into a throwaway directory, reads the metadata file, and
// removes the clone before returning.
func (l *loader) readGit(ctx context.Context, src Source) ([]byte, error) {
	branch := ""
	if gs, ok := src.(gitSource); ok {
		branch = gs.Branch()
	}

	dir, err := os.MkdirTemp("", "jobgen-metadata-")
	if err != nil {
		return nil, fmt.Errorf("metadata: create clone dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := l.cloner.Clone(ctx, src.Location(), branch, dir); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, l.configName))
	if err != nil {
		return nil, fmt.Errorf("metadata: read %s from clone of %s: %w", l.configName, src.Location(), err)
	}
	return data, nil
}
