package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/webrecon/webrecon/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeRobots(md, report)
	w.writeForms(md, report)
	w.writeEndpoints(md, report)
	w.writeJSFiles(md, report)
	w.writeSubdomains(md, report)
	w.writeProbes(md, "Guessed Endpoints", report.GuessedEndpoints)
	w.writeProbes(md, "Hidden Files", report.HiddenFiles)
	w.writeFailures(md, report)
	w.writeDenials(md, report)
	w.writeWarnings(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + report.Summary.SeedURL + "`"},
			{"Started", report.Summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Finished", report.Summary.FinishedAt.Format("2006-01-02 15:04:05 MST")},
			{"Status", w.statusText(report)},
		},
	})
	md.PlainText("")
}

// statusText returns the status cell based on report state.
func (w *MarkdownWriter) statusText(report *model.CrawlReport) string {
	if report.Summary.Cancelled {
		return "⚠️ Cancelled (partial results)"
	}
	return "✅ Complete"
}

// writeSummary writes the headline counters.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.CrawlReport) {
	s := report.Summary

	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages crawled", strconv.Itoa(s.PagesCrawled)},
			{"Max depth reached", strconv.Itoa(s.MaxDepthReached)},
			{"Forms", strconv.Itoa(s.FormsFound)},
			{"API endpoints", strconv.Itoa(s.EndpointsFound)},
			{"JavaScript files", strconv.Itoa(s.JSFilesFound)},
			{"Subdomains", strconv.Itoa(s.SubdomainsFound)},
			{"Hidden files", strconv.Itoa(s.HiddenFilesFound)},
			{"Fetch failures", strconv.Itoa(s.FetchFailures)},
			{"Policy denials", strconv.Itoa(s.PolicyDenials)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, report)
}

// writeAlert writes an appropriate alert based on findings.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.CrawlReport) {
	critical := 0
	for _, f := range report.HiddenFiles {
		if f.Sensitivity <= 2 {
			critical++
		}
	}

	switch {
	case critical > 0:
		md.Cautionf(
			"Sensitive files exposed! %d hidden file(s) with credential or VCS material are reachable.",
			critical,
		)
	case len(report.HiddenFiles) > 0:
		md.Warningf(
			"%d hidden file(s) responded to probing and should be reviewed.",
			len(report.HiddenFiles),
		)
	case len(report.Endpoints) > 0 || len(report.GuessedEndpoints) > 0:
		md.Note("API surface discovered. Review the endpoint tables below.")
	default:
		md.Tip("No notable exposure discovered beyond the crawled pages.")
	}
	md.PlainText("")
}

// writeRobots writes the per-host robots.txt observations.
func (w *MarkdownWriter) writeRobots(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Robots) == 0 {
		return
	}

	md.H2("Robots.txt")
	md.PlainText("")

	rows := make([][]string, len(report.Robots))
	for i, obs := range report.Robots {
		status := "fetched"
		if obs.Unreachable {
			status = "unreachable"
		}
		delay := "-"
		if obs.CrawlDelay > 0 {
			delay = strconv.FormatFloat(obs.CrawlDelay, 'f', 1, 64) + "s"
		}
		rows[i] = []string{
			obs.Host,
			status,
			strconv.Itoa(len(obs.Disallow)),
			strconv.Itoa(len(obs.Allow)),
			delay,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Host", "Status", "Disallow", "Allow", "Crawl-Delay"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeForms writes the deduplicated forms table.
func (w *MarkdownWriter) writeForms(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Forms) == 0 {
		return
	}

	md.H2("Forms")
	md.PlainText("")

	rows := make([][]string, len(report.Forms))
	for i, f := range report.Forms {
		var hidden, csrf int
		for _, field := range f.Fields {
			if field.Hidden {
				hidden++
			}
			if field.CSRF {
				csrf++
			}
		}
		rows[i] = []string{
			f.Method,
			truncateString(f.Action, 60),
			strconv.Itoa(len(f.Fields)),
			strconv.Itoa(hidden),
			strconv.Itoa(csrf),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Method", "Action", "Fields", "Hidden", "CSRF"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeEndpoints writes the API endpoint candidates grouped by type.
func (w *MarkdownWriter) writeEndpoints(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Endpoints) == 0 {
		return
	}

	md.H2("API Endpoints")
	md.PlainText("")

	byType := report.EndpointsByType()
	for _, typ := range []string{"api", "rest", "versioned", "other"} {
		endpoints := byType[typ]
		if len(endpoints) == 0 {
			continue
		}

		md.H3(typ)
		md.PlainText("")

		rows := make([][]string, len(endpoints))
		for i, ep := range endpoints {
			method := ep.MethodGuess
			if method == "" {
				method = "-"
			}
			rows[i] = []string{
				truncateString(ep.URL, 70),
				method,
				string(ep.Source),
			}
		}

		md.Table(markdown.TableSet{
			Header: []string{"URL", "Method", "Source"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeJSFiles writes the discovered script URLs.
func (w *MarkdownWriter) writeJSFiles(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.JSFiles) == 0 && len(report.WebSocketURLs) == 0 {
		return
	}

	md.H2("JavaScript")
	md.PlainText("")

	if len(report.JSFiles) > 0 {
		md.H3("External Scripts")
		md.PlainText("")
		md.BulletList(report.SortedJSFiles()...)
		md.PlainText("")
	}

	if len(report.WebSocketURLs) > 0 {
		md.H3("WebSocket URLs")
		md.PlainText("")
		md.BulletList(report.WebSocketURLs...)
		md.PlainText("")
	}
}

// writeSubdomains writes the subdomain enumeration findings.
func (w *MarkdownWriter) writeSubdomains(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Subdomains) == 0 {
		return
	}

	md.H2("Subdomains")
	md.PlainText("")

	rows := make([][]string, len(report.Subdomains))
	for i, sd := range report.Subdomains {
		resolved := "no"
		if sd.Resolved {
			resolved = "yes"
		}
		reachable := "-"
		if sd.Reachable {
			reachable = fmt.Sprintf("HTTP %d", sd.StatusCode)
		}
		rows[i] = []string{sd.Host, sd.Method, resolved, reachable}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Host", "Method", "Resolved", "Reachable"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeProbes writes a wordlist-probe findings table.
func (w *MarkdownWriter) writeProbes(md *markdown.Markdown, title string, findings []model.ProbeFinding) {
	if len(findings) == 0 {
		return
	}

	md.H2(title)
	md.PlainText("")

	rows := make([][]string, len(findings))
	for i, f := range findings {
		sensitivity := "-"
		if f.Sensitivity > 0 {
			sensitivity = strconv.Itoa(f.Sensitivity)
		}
		rows[i] = []string{
			truncateString(f.URL, 70),
			strconv.Itoa(f.StatusCode),
			f.Method,
			sensitivity,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Method", "Sensitivity"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailures writes the fetch failure table.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Failures) == 0 {
		return
	}

	md.H2("Fetch Failures")
	md.PlainText("")

	rows := make([][]string, len(report.Failures))
	for i, f := range report.Failures {
		retried := "no"
		if f.Retried {
			retried = "yes"
		}
		rows[i] = []string{
			truncateString(f.URL, 60),
			truncateString(f.Reason, 50),
			retried,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Reason", "Retried"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeDenials writes the robots.txt denial table.
func (w *MarkdownWriter) writeDenials(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Denials) == 0 {
		return
	}

	md.H2("Robots Denials")
	md.PlainText("")

	rows := make([][]string, len(report.Denials))
	for i, d := range report.Denials {
		overridden := "no"
		if d.Overridden {
			overridden = "yes"
		}
		rows[i] = []string{
			truncateString(d.URL, 60),
			"`" + d.Rule + "`",
			overridden,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Rule", "Fetched Anyway"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeWarnings writes run-level warnings.
func (w *MarkdownWriter) writeWarnings(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Warnings) == 0 {
		return
	}

	md.H2("Warnings")
	md.PlainText("")
	md.BulletList(report.Warnings...)
	md.PlainText("")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
