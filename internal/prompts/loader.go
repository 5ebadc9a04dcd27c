// Package prompts embeds the model prompt templates used for extraction,
// assessment, and profile generation. Templates live in JSON files keyed by
// prompt name and are parsed once, on first use.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

// loadAll parses every embedded prompt file exactly once.
var loadAll = sync.OnceValues(func() (map[string]map[string]string, error) {
	entries, err := promptFiles.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded prompts: %w", err)
	}

	files := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		data, err := promptFiles.ReadFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
		}
		var prompts map[string]string
		if err := json.Unmarshal(data, &prompts); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", entry.Name(), err)
		}
		files[entry.Name()] = prompts
	}
	return files, nil
})

// Get retrieves a prompt by filename and key. The filename carries no path
// (e.g., "parsing.json").
func Get(filename, key string) (string, error) {
	files, err := loadAll()
	if err != nil {
		return "", err
	}

	prompts, ok := files[filename]
	if !ok {
		return "", fmt.Errorf("prompt file %q not found", filename)
	}
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet retrieves a prompt by filename and key, panicking if not found.
// Use this for prompts that are required at initialization time.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format replaces template placeholders in the form {{.Key}} with values
// from data.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, fmt.Sprintf("{{.%s}}", key), value)
	}
	return result
}
