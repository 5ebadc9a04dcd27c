// Package ingestion turns uploaded document bytes into clean text for the
// extraction pipeline. PDF conversion is delegated to an injected converter;
// this package owns only the dispatch and text normalization.
package ingestion

import (
	"regexp"
	"strings"
)

var spaceRuns = regexp.MustCompile(`\s+`)
var excessBlankLines = regexp.MustCompile(`\n\n\n+`)

// CleanText normalizes text content while preserving structure: line endings
// become LF, trailing whitespace and internal space runs collapse, and runs
// of blank lines shrink to at most one.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		cleaned = append(cleaned, cleanLine(line))
	}

	result := strings.Join(cleaned, "\n")
	result = excessBlankLines.ReplaceAllString(result, "\n\n")

	return strings.TrimSpace(result)
}

// cleanLine normalizes one line, preserving bullet markers and indentation.
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	// Bullet items keep their indentation as-is.
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") {
		indent := len(line) - len(trimmed)
		return strings.Repeat(" ", indent) + trimmed
	}

	indent := len(line) - len(trimmed)
	content := spaceRuns.ReplaceAllString(trimmed, " ")
	if indent > 0 {
		return strings.Repeat(" ", indent) + content
	}
	return content
}
