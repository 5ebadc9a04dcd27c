package normalize

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// isGitHubRepoURL reports whether the URL points at a GitHub repository page
// (a path under github.com, not the bare host).
func isGitHubRepoURL(url string) bool {
	if !strings.Contains(url, "github.com") {
		return false
	}
	rest := url[strings.Index(url, "github.com")+len("github.com"):]
	rest = strings.Trim(rest, "/")
	return strings.Contains(rest, "/") || rest != ""
}

// githubContent extracts the structured parts of a GitHub repository page:
// name, description, README body, topics, primary language, and counters.
// If no targeted selector matches anything, it falls back to generic text
// extraction so a markup change on GitHub's side degrades instead of failing.
func githubContent(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Text(html)
	}

	var parts []string

	if name := strings.TrimSpace(doc.Find(`strong[itemprop="name"]`).First().Text()); name != "" {
		parts = append(parts, fmt.Sprintf("Repository: %s", name))
	}

	if desc := strings.TrimSpace(doc.Find(".repository-description").First().Text()); desc != "" {
		parts = append(parts, fmt.Sprintf("Description: %s", desc))
	}

	if readme := doc.Find("#readme"); readme.Length() > 0 {
		readme.Find("script, style").Remove()
		body := collapseWhitespace(readme.Text())
		if body != "" {
			parts = append(parts, fmt.Sprintf("README:\n%s", body))
		}
	}

	var topics []string
	doc.Find("a.topic-tag").Each(func(_ int, s *goquery.Selection) {
		if topic := strings.TrimSpace(s.Text()); topic != "" {
			topics = append(topics, topic)
		}
	})
	if len(topics) > 0 {
		parts = append(parts, fmt.Sprintf("Topics: %s", strings.Join(topics, ", ")))
	}

	if lang := doc.Find("span.language-color").First(); lang.Length() > 0 {
		if name := strings.TrimSpace(lang.Next().Text()); name != "" {
			parts = append(parts, fmt.Sprintf("Primary Language: %s", name))
		}
	}

	doc.Find("a.social-count").Each(func(_ int, s *goquery.Selection) {
		if stat := strings.TrimSpace(s.Text()); stat != "" {
			parts = append(parts, fmt.Sprintf("Stats: %s", stat))
		}
	})

	if len(parts) == 0 {
		return Text(html)
	}

	return strings.Join(parts, "\n\n")
}
