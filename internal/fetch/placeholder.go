package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MinVisibleTextLength is the minimum visible text length below which a page
// is assumed to be a JavaScript shell that needs rendering.
const MinVisibleTextLength = 100

// jsPlaceholderPhrases are substrings (matched case-sensitively) that
// JavaScript-only pages commonly show before hydration.
var jsPlaceholderPhrases = []string{
	"You need to enable JavaScript to run this app.",
	"Please enable JavaScript",
	"Loading...",
	"JavaScript is required",
	"Enable JavaScript to continue",
}

// IsJavaScriptPlaceholder reports whether the HTML looks like an unrendered
// JavaScript application shell: either a known placeholder phrase appears in
// the visible text, or there is too little visible text to be real content.
func IsJavaScriptPlaceholder(html string) bool {
	text := strings.TrimSpace(visibleText(html))

	for _, phrase := range jsPlaceholderPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}

	return len(text) < MinVisibleTextLength
}

// visibleText extracts the user-visible text of a document with script and
// style contents stripped, one line per text node.
func visibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable input has no visible text worth keeping.
		return ""
	}

	doc.Find("script, style").Remove()

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}
