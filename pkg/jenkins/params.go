package jenkins

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-jobgen/pkg/template"
)

// JobParams carries the per-job values substituted into a job template. One
// instance describes one package on one release.
type JobParams struct {
	Name            string
	Release         string
	PackagingURL    string
	PackagingBranch string
	UpstreamURL     string
	UpstreamBranch  string
	UploadTarget    string
	LPTeam          string
	LPPPA           string
}

// Validate rejects params with blank required fields so broken metadata is
// reported before any template work starts.
func (p JobParams) Validate() error {
	required := []struct {
		label string
		value string
	}{
		{"name", p.Name},
		{"release", p.Release},
		{"packaging url", p.PackagingURL},
		{"packaging branch", p.PackagingBranch},
		{"upload target", p.UploadTarget},
		{"launchpad team", p.LPTeam},
		{"launchpad ppa", p.LPPPA},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("jenkins: job params: %s is required", field.label)
		}
	}
	return nil
}

// JobName returns the scheduler-facing job identifier, which doubles as the
// PROJECT value in the completion webhook body.
func (p JobParams) JobName() string {
	return fmt.Sprintf("%s_stable_%s", p.Release, p.Name)
}

// ParameterSet flattens the params into the placeholder mapping consumed by
// the template renderer. An unset upstream branch falls back to the packaging
// branch so single-repo projects need no extra configuration.
func (p JobParams) ParameterSet() template.ParameterSet {
	upstreamBranch := p.UpstreamBranch
	if strings.TrimSpace(upstreamBranch) == "" {
		upstreamBranch = p.PackagingBranch
	}
	return template.ParameterSet{
		"NAME":             p.Name,
		"RELEASE":          p.Release,
		"PACKAGING_URL":    p.PackagingURL,
		"PACKAGING_BRANCH": p.PackagingBranch,
		"UPSTREAM_URL":     p.UpstreamURL,
		"UPSTREAM_BRANCH":  upstreamBranch,
		"UPLOAD_TARGET":    p.UploadTarget,
		"LP_TEAM":          p.LPTeam,
		"LP_PPA":           p.LPPPA,
	}
}

// SplitPPATarget derives the Launchpad team and PPA names from a dput target
// of the form ppa:<team>/<ppa>.
func SplitPPATarget(target string) (team, ppa string, err error) {
	trimmed := strings.TrimSpace(target)
	if !strings.HasPrefix(trimmed, "ppa:") {
		return "", "", fmt.Errorf("jenkins: upload target %q is not a ppa: target", target)
	}
	parts := strings.SplitN(strings.TrimPrefix(trimmed, "ppa:"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("jenkins: upload target %q must look like ppa:team/archive", target)
	}
	return parts[0], parts[1], nil
}
