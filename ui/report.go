package ui

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"postlift/domain/attribution"
)

// MethodologyMarkdown renders a result as a human-readable markdown report.
// The same document backs the CLI output and the HTML endpoint.
func MethodologyMarkdown(result *attribution.Result) string {
	var b strings.Builder

	b.WriteString("# Attribution Report\n\n")
	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Attributed revenue | %.2f |\n", result.TotalAttributedRevenue)
	fmt.Fprintf(&b, "| Attributed orders | %.2f |\n", result.TotalAttributedOrders)
	fmt.Fprintf(&b, "| Baseline revenue | %.2f |\n", result.BaselineRevenue)
	fmt.Fprintf(&b, "| Incremental revenue | %.2f |\n", result.IncrementalRevenue)
	fmt.Fprintf(&b, "| Confidence | %.1f%% |\n", result.ConfidenceScore*100)
	fmt.Fprintf(&b, "| Fingerprint | `%s` |\n\n", result.Fingerprint)

	if len(result.Influencers) > 0 {
		b.WriteString("## Influencers\n\n")
		b.WriteString("| Handle | Revenue | Orders | Confidence | Strong-signal revenue |\n|---|---|---|---|---|\n")
		for _, inf := range result.Influencers {
			fmt.Fprintf(&b, "| @%s | %.2f | %.2f | %.1f%% | %.2f |\n",
				inf.Username, inf.AttributedRevenue, inf.AttributedOrders,
				inf.AverageConfidence*100, inf.Signals.StrongRevenue())
		}
		b.WriteString("\n")
	}

	b.WriteString("## Methodology\n\n")
	for _, line := range result.Methodology {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

// RenderHTML converts a markdown report to a standalone HTML fragment
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(md), p, renderer)
}
