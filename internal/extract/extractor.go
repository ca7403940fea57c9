// Package extract provides plain-text extraction from uploaded document files.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrorMarker is the prefix of the in-band extraction failure string. Document
// content starting with it is treated as unusable by the analysis pipeline.
const ErrorMarker = "Error reading file:"

// supportedExts are the formats accepted by upload and the drop folder.
var supportedExts = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".pdf":  true,
	".docx": true,
	".xlsx": true,
}

// Supported reports whether ext (with leading dot, any case) is an accepted
// document format.
func Supported(ext string) bool {
	return supportedExts[strings.ToLower(ext)]
}

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content. Plain text
// formats (.txt, .md, .csv) are returned as-is after UTF-8 cleanup; PDF, DOCX,
// and XLSX are decoded from their binary formats.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, filepath.Ext(path))
}

// ExtractBytes extracts text from content based on the given extension.
// ext should include the leading dot (e.g. ".pdf"). Unknown extensions are
// treated as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".xlsx":
		return extractExcel(content)
	default:
		return extractPlain(content)
	}
}

// IsErrorMarker reports whether text is an extraction failure marker.
func IsErrorMarker(text string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), strings.ToLower(ErrorMarker))
}
