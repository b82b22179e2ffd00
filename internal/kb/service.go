package kb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sha1n/mcp-statute-server/internal/config"
	"github.com/sha1n/mcp-statute-server/internal/statute"
)

// Service coordinates loading the statute, its derived structures and full-text search.
type Service struct {
	settings *config.StatuteSettings
	layout   statute.Layout
	indexer  *statute.Indexer
	cache    *lru.Cache[string, []FulltextHit]
	logger   *slog.Logger

	// reloadMu serializes loads; mu guards the full-text index swap.
	reloadMu sync.Mutex
	mu       sync.RWMutex
	fulltext bleve.Index
	ready    bool
}

// NewService creates a statute service. Nothing is loaded until Initialize.
func NewService(settings *config.StatuteSettings) (*Service, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}

	grammar, err := settings.Grammar()
	if err != nil {
		return nil, fmt.Errorf("invalid statute grammar: %w", err)
	}
	layout, err := settings.ParsedLayout()
	if err != nil {
		return nil, fmt.Errorf("invalid statute layout: %w", err)
	}

	var cache *lru.Cache[string, []FulltextHit]
	if settings.CacheSize > 0 {
		cache, err = lru.New[string, []FulltextHit](settings.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create query cache: %w", err)
		}
	}

	logger := slog.Default().With("statute", settings.Name)
	return &Service{
		settings: settings,
		layout:   layout,
		indexer:  statute.NewIndexer(statute.WithGrammar(grammar), statute.WithLayout(layout), statute.WithLogger(logger)),
		cache:    cache,
		logger:   logger,
	}, nil
}

// Initialize performs the first load. A failure here should abort startup.
func (s *Service) Initialize(ctx context.Context) error {
	doc, err := s.Reload(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("Statute ready",
		"path", s.settings.Path,
		"sections", len(doc.Sections()),
		"definitions", len(doc.Definitions()),
		"notes", len(doc.Notes()),
	)
	return nil
}

// Reload re-reads the statute file and swaps in a new document and full-text index.
// On failure the previously loaded state keeps serving.
func (s *Service) Reload(ctx context.Context) (*statute.Document, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := ReadSource(s.settings.Path, s.settings.MaxFileSize)
	if err != nil {
		return nil, err
	}

	doc, err := s.indexer.Build(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to load statute %s: %w", s.settings.Path, err)
	}

	fulltext, err := BuildFulltext(doc, s.layout)
	if err != nil {
		return nil, fmt.Errorf("failed to build full-text index: %w", err)
	}

	s.mu.Lock()
	previous := s.fulltext
	s.indexer.Swap(doc)
	s.fulltext = fulltext
	s.ready = true
	if s.cache != nil {
		s.cache.Purge()
	}
	s.mu.Unlock()

	// Searches hold the read lock, so nothing uses the previous index anymore.
	if previous != nil {
		if err := previous.Close(); err != nil {
			s.logger.Warn("Failed to close previous full-text index", "error", err)
		}
	}

	s.logger.Debug("Statute loaded", "id", doc.ID(), "sections", len(doc.Sections()))
	return doc, nil
}

// IsReady returns true once a statute has been loaded.
func (s *Service) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Indexer returns the statute indexer serving lookups.
func (s *Service) Indexer() *statute.Indexer {
	return s.indexer
}

// Document returns the current document.
func (s *Service) Document() (*statute.Document, error) {
	return s.indexer.Document()
}

// Layout returns the parsed statute layout.
func (s *Service) Layout() statute.Layout {
	return s.layout
}

// GetSettings returns the service settings.
func (s *Service) GetSettings() *config.StatuteSettings {
	return s.settings
}

// Fulltext searches section titles and bodies with relevance scoring and highlighting.
// A zero limit uses the configured maximum.
func (s *Service) Fulltext(q FulltextQuery) ([]FulltextHit, error) {
	if strings.TrimSpace(q.Query) == "" {
		return []FulltextHit{}, nil
	}
	if q.Limit <= 0 || q.Limit > s.settings.MaxResults {
		q.Limit = s.settings.MaxResults
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready || s.fulltext == nil {
		return nil, statute.ErrNotLoaded
	}

	key := q.key()
	if s.cache != nil {
		if hits, ok := s.cache.Get(key); ok {
			return hits, nil
		}
	}

	hits, err := searchFulltext(s.fulltext, q)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(key, hits)
	}
	return hits, nil
}

// Close releases all resources.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.fulltext != nil {
		if cerr := s.fulltext.Close(); cerr != nil {
			err = fmt.Errorf("failed to close full-text index: %w", cerr)
		}
		s.fulltext = nil
	}

	s.ready = false
	return err
}

// IsMalformed reports whether err stems from an unusable statute source.
func IsMalformed(err error) bool {
	return errors.Is(err, statute.ErrMalformedSource)
}
