// Package debian reads just enough of a debian/changelog to drive CI
// version computation.
package debian

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
)

// headerPattern matches a changelog entry header:
//
//	source (version) distribution; urgency=level
var headerPattern = regexp.MustCompile(`^(\S+) \(([^()\s]+)\) ([^;]+);`)

// Entry is the header of one changelog entry.
type Entry struct {
	Source       string
	Version      string
	Distribution string
}

// ParseChangelog returns the first (most recent) entry of a changelog
// stream. Blank leading lines are tolerated; anything else that is not a
// well-formed header is an error.
func ParseChangelog(r io.Reader) (Entry, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		match := headerPattern.FindStringSubmatch(line)
		if match == nil {
			return Entry{}, fmt.Errorf("debian: malformed changelog header %q", line)
		}
		return Entry{
			Source:       match[1],
			Version:      match[2],
			Distribution: strings.TrimSpace(match[3]),
		}, nil
	}
	if err := scanner.Err(); err != nil {
		return Entry{}, fmt.Errorf("debian: read changelog: %w", err)
	}
	return Entry{}, fmt.Errorf("debian: changelog is empty")
}

// ParseChangelogFile reads the first entry from a changelog on disk.
func ParseChangelogFile(path string) (Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return Entry{}, fmt.Errorf("debian: open changelog: %w", err)
	}
	defer file.Close()
	return ParseChangelog(file)
}

// CIVersion combines a changelog version with a UTC timestamp, matching the
// upload version the generated jobs compute.
func CIVersion(version string, t time.Time) string {
	return fmt.Sprintf("%s+ci%s", version, t.UTC().Format("20060102150405"))
}
