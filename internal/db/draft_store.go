package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DraftStore handles AI reply draft cache operations
type DraftStore struct {
	db *sql.DB
}

// NewDraftStore creates a new draft store from a base store
func NewDraftStore(store *Store) *DraftStore {
	if store == nil {
		return nil
	}
	return &DraftStore{db: store.DB()}
}

// SaveDraft upserts a draft for (property_id, message_key)
func (ds *DraftStore) SaveDraft(ctx context.Context, propertyID, messageKey, draft string, updatedAt int64) error {
	if ds == nil || ds.db == nil {
		return fmt.Errorf("draft store not initialized")
	}
	if strings.TrimSpace(propertyID) == "" || strings.TrimSpace(messageKey) == "" || strings.TrimSpace(draft) == "" {
		return fmt.Errorf("invalid draft inputs")
	}
	_, err := ds.db.ExecContext(ctx, `INSERT INTO ai_drafts(property_id, message_key, draft, updated_at)
VALUES(?,?,?,?)
ON CONFLICT(property_id, message_key) DO UPDATE SET draft=excluded.draft, updated_at=excluded.updated_at;
`, propertyID, messageKey, draft, updatedAt)
	return err
}

// LoadDraft returns a cached draft if present
func (ds *DraftStore) LoadDraft(ctx context.Context, propertyID, messageKey string) (string, bool, error) {
	if ds == nil || ds.db == nil {
		return "", false, fmt.Errorf("draft store not initialized")
	}
	var out string
	err := ds.db.QueryRowContext(ctx, `SELECT draft FROM ai_drafts WHERE property_id=? AND message_key=?`, propertyID, messageKey).Scan(&out)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// DeleteDraft removes a cached draft for (property_id, message_key)
func (ds *DraftStore) DeleteDraft(ctx context.Context, propertyID, messageKey string) error {
	if ds == nil || ds.db == nil {
		return fmt.Errorf("draft store not initialized")
	}
	_, err := ds.db.ExecContext(ctx, `DELETE FROM ai_drafts WHERE property_id=? AND message_key=?`, propertyID, messageKey)
	return err
}

// ClearDrafts removes every cached draft of a property
func (ds *DraftStore) ClearDrafts(ctx context.Context, propertyID string) error {
	if ds == nil || ds.db == nil {
		return fmt.Errorf("draft store not initialized")
	}
	_, err := ds.db.ExecContext(ctx, `DELETE FROM ai_drafts WHERE property_id=?`, propertyID)
	return err
}
