package ingestion

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Converter turns raw document bytes into plain text. It is a pure,
// fallible function; the PDF implementation lives outside this module.
type Converter func(data []byte) (string, error)

// pdfConverter converts PDF bytes to text. Nil until one is registered.
var pdfConverter Converter

// RegisterPDFConverter installs the PDF byte-to-text converter. Call once
// at startup, before any extraction.
func RegisterPDFConverter(c Converter) {
	pdfConverter = c
}

// ExtractFileText extracts clean text from an uploaded document, dispatching
// on the filename extension. Supported: .txt, .pdf (when a converter is
// registered).
func ExtractFileText(name string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("file %s is not valid UTF-8 text", name)
		}
		return CleanText(string(data)), nil
	case ".pdf":
		if pdfConverter == nil {
			return "", fmt.Errorf("no PDF converter registered")
		}
		text, err := pdfConverter(data)
		if err != nil {
			return "", fmt.Errorf("failed to convert PDF %s: %w", name, err)
		}
		return CleanText(text), nil
	default:
		return "", fmt.Errorf("unsupported file type: %s", name)
	}
}
