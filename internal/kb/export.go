package kb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sha1n/mcp-statute-server/internal/statute"
	"gopkg.in/yaml.v3"
)

const (
	// SnapshotVersion is the current snapshot schema version
	SnapshotVersion = 1

	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Snapshot is a serializable knowledge base of one loaded statute.
type Snapshot struct {
	Version     int                       `json:"version" yaml:"version"`
	Name        string                    `json:"name" yaml:"name"`
	ID          string                    `json:"id" yaml:"id"`
	LoadedAt    time.Time                 `json:"loaded_at" yaml:"loaded_at"`
	Preamble    string                    `json:"preamble,omitempty" yaml:"preamble,omitempty"`
	Notes       []string                  `json:"notes,omitempty" yaml:"notes,omitempty"`
	Stats       statute.Stats             `json:"stats" yaml:"stats"`
	Sections    []statute.Section         `json:"sections" yaml:"sections"`
	Definitions []statute.Definition      `json:"definitions" yaml:"definitions"`
	Penalties   []statute.PenaltySection  `json:"penalties" yaml:"penalties"`
	Rights      []statute.Clause          `json:"rights" yaml:"rights"`
	Principles  []statute.Clause          `json:"principles" yaml:"principles"`
	Functions   []statute.Clause          `json:"functions" yaml:"functions"`
	Index       map[string]map[string]int `json:"index" yaml:"index"`
}

// NewSnapshot captures every derived structure of doc.
func NewSnapshot(doc *statute.Document, name string) *Snapshot {
	return &Snapshot{
		Version:     SnapshotVersion,
		Name:        name,
		ID:          doc.ID(),
		LoadedAt:    doc.LoadedAt(),
		Preamble:    doc.Preamble(),
		Notes:       doc.Notes(),
		Stats:       doc.Stats(),
		Sections:    doc.Sections(),
		Definitions: doc.Definitions(),
		Penalties:   doc.Penalties(),
		Rights:      doc.Rights(),
		Principles:  doc.Principles(),
		Functions:   doc.Functions(),
		Index:       doc.Index().Postings(),
	}
}

// FormatFromPath picks the snapshot format from a file extension, defaulting to JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Marshal encodes the snapshot in the given format.
func (s *Snapshot) Marshal(format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(s, "", "  ")
	case FormatYAML:
		return yaml.Marshal(s)
	default:
		return nil, fmt.Errorf("unsupported export format: %q", format)
	}
}

// Save writes the snapshot to disk atomically.
// Uses write-to-temp + rename pattern to prevent corruption.
func (s *Snapshot) Save(path, format string) error {
	if format == "" {
		format = FormatFromPath(path)
	}

	data, err := s.Marshal(format)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	// Write to temporary file first
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot temp file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}

	return nil
}

// Export writes a snapshot of the current document.
func (s *Service) Export(path, format string) error {
	doc, err := s.Document()
	if err != nil {
		return err
	}
	return NewSnapshot(doc, s.settings.Name).Save(path, format)
}
