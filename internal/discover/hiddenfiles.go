package discover

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"sort"

	"github.com/webrecon/webrecon/internal/model"
)

// sensitivityPatterns rank hidden-file paths; lower is more sensitive.
// The first matching pattern wins.
var sensitivityPatterns = []struct {
	re    *regexp.Regexp
	level int
}{
	{regexp.MustCompile(`(?i)\.env`), 1},
	{regexp.MustCompile(`(?i)\.git`), 1},
	{regexp.MustCompile(`(?i)\.ssh`), 1},
	{regexp.MustCompile(`(?i)config\.php`), 2},
	{regexp.MustCompile(`(?i)wp-config`), 2},
	{regexp.MustCompile(`(?i)backup`), 3},
	{regexp.MustCompile(`(?i)\.log`), 4},
	{regexp.MustCompile(`(?i)\.bak`), 4},
	{regexp.MustCompile(`(?i)\.old`), 4},
}

// defaultSensitivity is assigned when no pattern matches.
const defaultSensitivity = 5

// sensitivityLevel ranks a path from 1 (credentials, VCS metadata) to 5.
func sensitivityLevel(path string) int {
	for _, p := range sensitivityPatterns {
		if p.re.MatchString(path) {
			return p.level
		}
	}
	return defaultSensitivity
}

// HiddenFileScanner probes the target for exposed dotfiles, backups and
// other files that should never be web-reachable.
type HiddenFileScanner struct {
	base   *url.URL
	words  []string
	prober *prober
	logger *slog.Logger
}

// NewHiddenFileScanner creates a scanner rooted at base using the given
// wordlist.
func NewHiddenFileScanner(base *url.URL, words []string, opts ...GuesserOption) *HiddenFileScanner {
	s := applyGuesserOptions(opts)
	return &HiddenFileScanner{
		base:   base,
		words:  dedupeStrings(words),
		prober: newProber(s),
		logger: s.logger,
	}
}

// Name implements Discoverer.
func (h *HiddenFileScanner) Name() string {
	return "hidden-file-scan"
}

// Do probes every wordlist entry and records hits sorted by sensitivity,
// most sensitive first.
func (h *HiddenFileScanner) Do(ctx context.Context, report *model.CrawlReport) error {
	hits := h.prober.probeAll(ctx, h.base, h.words)

	findings := make([]model.ProbeFinding, 0, len(hits))
	for _, hit := range hits {
		findings = append(findings, model.ProbeFinding{
			Path:        hit.path,
			URL:         hit.url,
			StatusCode:  hit.statusCode,
			Method:      hit.method,
			ContentType: hit.contentType,
			Sensitivity: sensitivityLevel(hit.path),
		})
	}
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Sensitivity != findings[j].Sensitivity {
			return findings[i].Sensitivity < findings[j].Sensitivity
		}
		return findings[i].StatusCode < findings[j].StatusCode
	})

	report.HiddenFiles = append(report.HiddenFiles, findings...)
	report.Summary.HiddenFilesFound = len(report.HiddenFiles)

	h.logger.Info("hidden file scan finished",
		"base", h.base.String(),
		"tested", len(h.words),
		"found", len(findings),
	)
	return ctx.Err()
}
