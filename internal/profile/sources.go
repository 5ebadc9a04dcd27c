package profile

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/opportunity-tracker/internal/fetch"
	"github.com/jonathan/opportunity-tracker/internal/ingestion"
	"github.com/jonathan/opportunity-tracker/internal/normalize"
)

// Source is one labeled document fed into profile generation.
type Source struct {
	Name    string
	Content string
}

// FileInput is an uploaded document to extract text from.
type FileInput struct {
	Name string
	Data []byte
}

// FetchFunc resolves a URL to raw HTML; tests substitute the network fetcher.
type FetchFunc func(ctx context.Context, url string) (*fetch.Result, error)

// maxConcurrentFetches bounds parallel link fetching; rendering a page can
// hold a whole browser process.
const maxConcurrentFetches = 3

// CollectSources gathers labeled text content from links, uploaded files,
// and a free-text description. Link fetches run concurrently. A source that
// fails to fetch or extract is logged and skipped; collection itself never
// fails.
func CollectSources(ctx context.Context, fetchFn FetchFunc, logger *zap.Logger, links []string, files []FileInput, description string) []Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	if fetchFn == nil {
		fetchFn = func(ctx context.Context, url string) (*fetch.Result, error) {
			return fetch.Fetch(ctx, url, nil)
		}
	}

	linkContents := make([]string, len(links))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, link := range links {
		g.Go(func() error {
			result, err := fetchFn(gctx, link)
			if err != nil {
				logger.Warn("failed to extract content from link",
					zap.String("link", link), zap.Error(err))
				return nil // skip, never abort the batch
			}
			mu.Lock()
			linkContents[i] = normalize.ForURL(result.HTML, link)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var sources []Source
	for i, link := range links {
		if strings.TrimSpace(linkContents[i]) == "" {
			continue
		}
		sources = append(sources, Source{Name: link, Content: linkContents[i]})
	}

	for _, file := range files {
		content, err := ingestion.ExtractFileText(file.Name, file.Data)
		if err != nil {
			logger.Warn("failed to extract content from file",
				zap.String("file", file.Name), zap.Error(err))
			continue
		}
		if strings.TrimSpace(content) == "" {
			logger.Warn("no content extracted from file", zap.String("file", file.Name))
			continue
		}
		sources = append(sources, Source{Name: file.Name, Content: content})
	}

	if strings.TrimSpace(description) != "" {
		sources = append(sources, Source{Name: "description", Content: description})
	}

	return sources
}
