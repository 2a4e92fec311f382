package metadata

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// requiredKeys must be present on every repository, directly or through the
// defaults block. optionalKeys may be omitted entirely and are never filled
// from defaults.
var (
	requiredKeys = []string{"name", "packaging_url", "packaging_branch", "upload_target", "releases"}
	optionalKeys = []string{"upstream_url", "upstream_branch"}
)

// Repository describes one package under CI: where its packaging and
// upstream sources live and which releases it builds for.
type Repository struct {
	Name            string
	PackagingURL    string
	PackagingBranch string
	UpstreamURL     string
	UpstreamBranch  string
	UploadTarget    string
	Releases        []string
}

// rawConfig mirrors the on-disk ci.conf shape before defaults are applied.
type rawConfig struct {
	Default      map[string]any   `yaml:"default"`
	Repositories []map[string]any `yaml:"repositories"`
}

// Parse decodes a ci.conf document and returns the repository list with the
// defaults block folded in. Required keys missing from a repository are
// filled from defaults; a key unknown to the schema is an error naming the
// key; a repository still missing a required key after defaults is an error.
func Parse(data []byte) ([]Repository, error) {
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("metadata: parse ci.conf: %w", err)
	}
	if len(raw.Repositories) == 0 {
		return nil, fmt.Errorf("metadata: ci.conf defines no repositories")
	}

	repositories := make([]Repository, 0, len(raw.Repositories))
	for index, entry := range raw.Repositories {
		if err := rejectUnknownKeys(entry); err != nil {
			return nil, err
		}

		// Defaults fill required keys only; the optional ones stay per-repo.
		for _, key := range requiredKeys {
			if _, ok := entry[key]; ok {
				continue
			}
			if value, ok := raw.Default[key]; ok {
				entry[key] = value
			}
		}

		repo, err := buildRepository(entry, index)
		if err != nil {
			return nil, err
		}
		repositories = append(repositories, repo)
	}
	return repositories, nil
}

func rejectUnknownKeys(entry map[string]any) error {
	known := make(map[string]struct{}, len(requiredKeys)+len(optionalKeys))
	for _, key := range requiredKeys {
		known[key] = struct{}{}
	}
	for _, key := range optionalKeys {
		known[key] = struct{}{}
	}

	var unknown []string
	for key := range entry {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("metadata: invalid key present: %s", strings.Join(unknown, ", "))
	}
	return nil
}

func buildRepository(entry map[string]any, index int) (Repository, error) {
	repo := Repository{}

	for _, field := range []struct {
		key  string
		dest *string
	}{
		{"name", &repo.Name},
		{"packaging_url", &repo.PackagingURL},
		{"packaging_branch", &repo.PackagingBranch},
		{"upstream_url", &repo.UpstreamURL},
		{"upstream_branch", &repo.UpstreamBranch},
		{"upload_target", &repo.UploadTarget},
	} {
		value, ok := entry[field.key]
		if !ok {
			continue
		}
		text, ok := value.(string)
		if !ok {
			return Repository{}, fmt.Errorf("metadata: repository %d: key %q must be a string", index, field.key)
		}
		*field.dest = strings.TrimSpace(text)
	}

	if value, ok := entry["releases"]; ok {
		releases, err := stringList(value)
		if err != nil {
			return Repository{}, fmt.Errorf("metadata: repository %d: %w", index, err)
		}
		repo.Releases = releases
	}

	for _, missing := range []struct {
		key   string
		value string
	}{
		{"name", repo.Name},
		{"packaging_url", repo.PackagingURL},
		{"packaging_branch", repo.PackagingBranch},
		{"upload_target", repo.UploadTarget},
	} {
		if missing.value == "" {
			return Repository{}, fmt.Errorf("metadata: repository %d (%s): required key %q is missing", index, repo.Name, missing.key)
		}
	}
	if len(repo.Releases) == 0 {
		return Repository{}, fmt.Errorf("metadata: repository %d (%s): required key %q is missing", index, repo.Name, "releases")
	}

	return repo, nil
}

func stringList(value any) ([]string, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("key %q must be a list of strings", "releases")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		text, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("key %q must be a list of strings", "releases")
		}
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("key %q must not be empty", "releases")
	}
	return out, nil
}
