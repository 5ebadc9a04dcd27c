// Package normalize turns raw HTML into clean plain text suitable for LLM
// prompts, with field-targeted extraction for recognized structured sites.
package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelector matches elements that never carry page content.
const noiseSelector = "script, style, noscript, nav, footer, header, head"

// Text extracts clean text content from HTML. Scripts, styles, and
// navigation chrome are removed; the remaining text is emitted in document
// order, one line per text run, with whitespace collapsed.
func Text(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	doc.Find(noiseSelector).Remove()

	return collapseWhitespace(doc.Text())
}

// ForURL extracts text from HTML, applying site-specific structured
// extraction when the source URL is recognized. It never fails; unrecognized
// or malformed pages degrade to the generic Text path.
func ForURL(html, sourceURL string) string {
	if isGitHubRepoURL(sourceURL) {
		return githubContent(html)
	}
	return Text(html)
}

// collapseWhitespace trims each line and drops empty ones, splitting runs of
// internal double spacing into separate lines.
func collapseWhitespace(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, chunk := range strings.Split(line, "  ") {
			chunk = strings.TrimSpace(chunk)
			if chunk != "" {
				out = append(out, chunk)
			}
		}
	}
	return strings.Join(out, "\n")
}
