package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/ajramos/hostinbox/internal/model"
)

// ImportServiceImpl implements ImportService
type ImportServiceImpl struct {
	repo   PropertyRepository
	source MessageSource
	logger *log.Logger
	now    func() time.Time
}

// NewImportService creates a new import service
func NewImportService(repo PropertyRepository, source MessageSource, logger *log.Logger) *ImportServiceImpl {
	return &ImportServiceImpl{
		repo:   repo,
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// SetLogger sets the logger for debug output
func (s *ImportServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Import fetches messages about the property, drops the ones already stored
// and persists the rest. The stored copies are returned newest first.
func (s *ImportServiceImpl) Import(ctx context.Context, propertyID string) ([]model.Message, error) {
	if s.source == nil {
		return nil, ErrImportUnavailable
	}
	if s.repo == nil {
		return nil, ErrStoreUnavailable
	}
	if strings.TrimSpace(propertyID) == "" {
		return nil, fmt.Errorf("property ID cannot be empty")
	}

	p, err := s.repo.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	fetched, err := s.source.FetchMessages(ctx, *p)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages from %s: %w", s.source.Name(), err)
	}

	fresh := s.dedupe(p.Messages, fetched)
	if len(fresh) == 0 {
		s.logf("import %s: %d fetched from %s, nothing new", propertyID, len(fetched), s.source.Name())
		return nil, nil
	}

	now := s.now()
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Timestamp.Time(now).After(fresh[j].Timestamp.Time(now))
	})

	stored, err := s.repo.AppendMessages(ctx, propertyID, fresh)
	if err != nil {
		return nil, err
	}
	s.logf("import %s: stored %d of %d fetched from %s", propertyID, len(stored), len(fetched), s.source.Name())
	return stored, nil
}

// dedupe keeps fetched messages not already present in existing or earlier in fetched
func (s *ImportServiceImpl) dedupe(existing, fetched []model.Message) []model.Message {
	seen := make([]model.Message, 0, len(existing)+len(fetched))
	seen = append(seen, existing...)

	var out []model.Message
	for _, m := range fetched {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		if m.Source == "" {
			m.Source = s.source.Name()
		}
		m.ID = ""
		dup := false
		for _, o := range seen {
			if m.SameAs(o) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen = append(seen, m)
		out = append(out, m)
	}
	return out
}

func (s *ImportServiceImpl) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
