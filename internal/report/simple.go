package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/webrecon/webrecon/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no findings are shown.
	showEmpty bool

	// verbose enables per-page detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with per-page detail.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeSummary(&sb, report)
	w.writeRobots(&sb, report)
	w.writeForms(&sb, report)
	w.writeEndpoints(&sb, report)
	w.writeJSFiles(&sb, report)
	w.writeWebSockets(&sb, report)
	w.writeSubdomains(&sb, report)
	w.writeProbes(&sb, "GUESSED ENDPOINTS", report.GuessedEndpoints)
	w.writeProbes(&sb, "HIDDEN FILES", report.HiddenFiles)
	w.writeFailures(&sb, report)
	w.writeDenials(&sb, report)
	w.writeWarnings(&sb, report)
	if w.verbose {
		w.writePages(&sb, report)
	}

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) section(sb *strings.Builder, title string) {
	fmt.Fprintf(sb, "\n--- %s ---\n", title)
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(sb, "Crawl Report: %s\n", report.Summary.SeedURL)
	fmt.Fprintf(sb, "Started:  %s\n", report.Summary.StartedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Finished: %s\n", report.Summary.FinishedAt.Format("2006-01-02 15:04:05 MST"))
	if report.Summary.Cancelled {
		sb.WriteString("Status:   CANCELLED (partial results)\n")
	} else {
		sb.WriteString("Status:   complete\n")
	}
	sb.WriteString(strings.Repeat("=", 60) + "\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.CrawlReport) {
	s := report.Summary
	w.section(sb, "SUMMARY")
	fmt.Fprintf(sb, "Pages crawled:     %d\n", s.PagesCrawled)
	fmt.Fprintf(sb, "Max depth reached: %d\n", s.MaxDepthReached)
	fmt.Fprintf(sb, "Forms found:       %d\n", s.FormsFound)
	fmt.Fprintf(sb, "API endpoints:     %d\n", s.EndpointsFound)
	fmt.Fprintf(sb, "JS files:          %d\n", s.JSFilesFound)
	fmt.Fprintf(sb, "Subdomains:        %d\n", s.SubdomainsFound)
	fmt.Fprintf(sb, "Hidden files:      %d\n", s.HiddenFilesFound)
	fmt.Fprintf(sb, "Fetch failures:    %d\n", s.FetchFailures)
	fmt.Fprintf(sb, "Policy denials:    %d\n", s.PolicyDenials)
}

func (w *SimpleWriter) writeRobots(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Robots) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "ROBOTS.TXT")
	for _, obs := range report.Robots {
		if obs.Unreachable {
			fmt.Fprintf(sb, "%s: unreachable (treated as empty)\n", obs.Host)
			continue
		}
		fmt.Fprintf(sb, "%s: %d disallow, %d allow", obs.Host, len(obs.Disallow), len(obs.Allow))
		if obs.CrawlDelay > 0 {
			fmt.Fprintf(sb, ", crawl-delay %.1fs", obs.CrawlDelay)
		}
		sb.WriteByte('\n')
	}
}

func (w *SimpleWriter) writeForms(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Forms) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "FORMS")
	byMethod := report.FormsByMethod()
	methods := make([]string, 0, len(byMethod))
	for m := range byMethod {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	for _, method := range methods {
		for _, form := range byMethod[method] {
			fmt.Fprintf(sb, "[%s] %s (%d fields", method, form.Action, len(form.Fields))
			var hidden, csrf int
			for _, f := range form.Fields {
				if f.Hidden {
					hidden++
				}
				if f.CSRF {
					csrf++
				}
			}
			if hidden > 0 {
				fmt.Fprintf(sb, ", %d hidden", hidden)
			}
			if csrf > 0 {
				fmt.Fprintf(sb, ", %d csrf", csrf)
			}
			sb.WriteString(")\n")
		}
	}
}

func (w *SimpleWriter) writeEndpoints(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Endpoints) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "API ENDPOINTS")
	byType := report.EndpointsByType()
	for _, typ := range []string{"api", "rest", "versioned", "other"} {
		endpoints := byType[typ]
		if len(endpoints) == 0 {
			continue
		}
		fmt.Fprintf(sb, "%s (%d):\n", typ, len(endpoints))
		for _, ep := range endpoints {
			fmt.Fprintf(sb, "  %s", ep.URL)
			if ep.MethodGuess != "" {
				fmt.Fprintf(sb, " [%s]", ep.MethodGuess)
			}
			fmt.Fprintf(sb, " (%s)\n", ep.Source)
		}
	}
}

func (w *SimpleWriter) writeJSFiles(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.JSFiles) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "JAVASCRIPT FILES")
	for _, js := range report.SortedJSFiles() {
		fmt.Fprintf(sb, "%s\n", js)
	}
}

func (w *SimpleWriter) writeWebSockets(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.WebSocketURLs) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "WEBSOCKET URLS")
	for _, ws := range report.WebSocketURLs {
		fmt.Fprintf(sb, "%s\n", ws)
	}
}

func (w *SimpleWriter) writeSubdomains(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Subdomains) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "SUBDOMAINS")
	for _, sd := range report.Subdomains {
		status := "unresolved"
		if sd.Resolved {
			status = "resolved"
		}
		if sd.Reachable {
			fmt.Fprintf(sb, "%s (%s, %s, HTTP %d)\n", sd.Host, sd.Method, status, sd.StatusCode)
			continue
		}
		fmt.Fprintf(sb, "%s (%s, %s)\n", sd.Host, sd.Method, status)
	}
}

func (w *SimpleWriter) writeProbes(sb *strings.Builder, title string, findings []model.ProbeFinding) {
	if len(findings) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, title)
	for _, f := range findings {
		fmt.Fprintf(sb, "[%d] %s %s", f.StatusCode, f.Method, f.URL)
		if f.Sensitivity > 0 {
			fmt.Fprintf(sb, " (sensitivity %d)", f.Sensitivity)
		}
		sb.WriteByte('\n')
	}
}

func (w *SimpleWriter) writeFailures(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Failures) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "FETCH FAILURES")
	for _, f := range report.Failures {
		fmt.Fprintf(sb, "%s: %s", f.URL, f.Reason)
		if f.Retried {
			sb.WriteString(" (after retry)")
		}
		sb.WriteByte('\n')
	}
}

func (w *SimpleWriter) writeDenials(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Denials) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "ROBOTS DENIALS")
	for _, d := range report.Denials {
		fmt.Fprintf(sb, "%s (rule %q", d.URL, d.Rule)
		if d.Overridden {
			sb.WriteString(", fetched anyway")
		}
		sb.WriteString(")\n")
	}
}

func (w *SimpleWriter) writeWarnings(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Warnings) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "WARNINGS")
	for _, warning := range report.Warnings {
		fmt.Fprintf(sb, "%s\n", warning)
	}
}

func (w *SimpleWriter) writePages(sb *strings.Builder, report *model.CrawlReport) {
	if len(report.Pages) == 0 && !w.showEmpty {
		return
	}
	w.section(sb, "PAGES")
	for _, p := range report.Pages {
		fmt.Fprintf(sb, "[%d] depth=%d %s", p.StatusCode, p.Depth, p.URL)
		if p.Title != "" {
			fmt.Fprintf(sb, " %q", p.Title)
		}
		sb.WriteByte('\n')
	}
}
