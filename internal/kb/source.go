package kb

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/sha1n/mcp-statute-server/internal/statute"
)

// utf8BOM is stripped from the start of a statute file
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadSource reads a statute text file. Oversized, binary and non UTF-8 files
// are rejected as malformed sources.
func ReadSource(path string, maxSize int64) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to access statute file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("statute path %s is a directory", path)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return "", fmt.Errorf("%w: statute file too large (%.2f KB). Maximum allowed size is %.2f KB",
			statute.ErrMalformedSource, float64(info.Size())/1024, float64(maxSize)/1024)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read statute file: %w", err)
	}

	if IsBinary(content) {
		return "", fmt.Errorf("%w: statute file is binary", statute.ErrMalformedSource)
	}
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: statute file is not valid UTF-8", statute.ErrMalformedSource)
	}

	return string(bytes.TrimPrefix(content, utf8BOM)), nil
}

// IsBinary checks if the content appears to be binary by looking for null bytes
// in the first 512 bytes. This is a heuristic used by git and other tools.
func IsBinary(content []byte) bool {
	checkLen := min(len(content), 512)

	for i := range checkLen {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
