package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/hostinbox/internal/db"
)

// CacheServiceImpl implements CacheService
type CacheServiceImpl struct {
	store *db.DraftStore
}

// NewCacheService creates a new cache service
func NewCacheService(store *db.DraftStore) *CacheServiceImpl {
	return &CacheServiceImpl{
		store: store,
	}
}

func (s *CacheServiceImpl) GetDraft(ctx context.Context, propertyID, messageKey string) (string, bool, error) {
	if s.store == nil {
		return "", false, fmt.Errorf("cache store not available")
	}

	if strings.TrimSpace(propertyID) == "" || strings.TrimSpace(messageKey) == "" {
		return "", false, fmt.Errorf("propertyID and messageKey cannot be empty")
	}

	draft, found, err := s.store.LoadDraft(ctx, propertyID, messageKey)
	if err != nil {
		return "", false, fmt.Errorf("failed to load draft from cache: %w", err)
	}

	return draft, found, nil
}

func (s *CacheServiceImpl) SaveDraft(ctx context.Context, propertyID, messageKey, draft string) error {
	if s.store == nil {
		return fmt.Errorf("cache store not available")
	}

	if strings.TrimSpace(propertyID) == "" || strings.TrimSpace(messageKey) == "" || strings.TrimSpace(draft) == "" {
		return fmt.Errorf("propertyID, messageKey, and draft cannot be empty")
	}

	if err := s.store.SaveDraft(ctx, propertyID, messageKey, draft, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save draft to cache: %w", err)
	}

	return nil
}

func (s *CacheServiceImpl) InvalidateDraft(ctx context.Context, propertyID, messageKey string) error {
	if s.store == nil {
		return fmt.Errorf("cache store not available")
	}

	if strings.TrimSpace(propertyID) == "" || strings.TrimSpace(messageKey) == "" {
		return fmt.Errorf("propertyID and messageKey cannot be empty")
	}

	if err := s.store.DeleteDraft(ctx, propertyID, messageKey); err != nil {
		return fmt.Errorf("failed to invalidate draft: %w", err)
	}

	return nil
}

func (s *CacheServiceImpl) ClearCache(ctx context.Context, propertyID string) error {
	if s.store == nil {
		return fmt.Errorf("cache store not available")
	}

	if strings.TrimSpace(propertyID) == "" {
		return fmt.Errorf("propertyID cannot be empty")
	}

	if err := s.store.ClearDrafts(ctx, propertyID); err != nil {
		return fmt.Errorf("failed to clear drafts: %w", err)
	}

	return nil
}
