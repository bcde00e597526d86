package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/hostinbox/internal/model"
	"github.com/google/uuid"
)

// PropertyStore handles properties and their embedded messages
type PropertyStore struct {
	db *sql.DB
}

// NewPropertyStore creates a new property store from a base store
func NewPropertyStore(store *Store) *PropertyStore {
	if store == nil {
		return nil
	}
	return &PropertyStore{db: store.DB()}
}

// ListProperties returns all properties in insertion order, each with its messages
func (ps *PropertyStore) ListProperties(ctx context.Context) ([]model.Property, error) {
	if ps == nil || ps.db == nil {
		return nil, fmt.Errorf("property store not initialized")
	}
	rows, err := ps.db.QueryContext(ctx, `SELECT id, name FROM properties ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	var props []model.Property
	index := map[string]int{}
	for rows.Next() {
		var p model.Property
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			rows.Close()
			return nil, err
		}
		index[p.ID] = len(props)
		props = append(props, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	msgRows, err := ps.db.QueryContext(ctx, `SELECT property_id, `+messageColumns+` FROM property_messages ORDER BY property_id, position ASC`)
	if err != nil {
		return nil, err
	}
	defer msgRows.Close()
	for msgRows.Next() {
		var propertyID string
		m, err := scanMessage(msgRows, &propertyID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[propertyID]; ok {
			props[i].Messages = append(props[i].Messages, m)
		}
	}
	return props, msgRows.Err()
}

// GetProperty loads one property with its messages. found is false when no
// property has that id.
func (ps *PropertyStore) GetProperty(ctx context.Context, id string) (*model.Property, bool, error) {
	if ps == nil || ps.db == nil {
		return nil, false, fmt.Errorf("property store not initialized")
	}
	p := &model.Property{}
	err := ps.db.QueryRowContext(ctx, `SELECT id, name FROM properties WHERE id=?`, id).Scan(&p.ID, &p.Name)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	msgs, err := ps.messages(ctx, id)
	if err != nil {
		return nil, false, err
	}
	p.Messages = msgs
	return p, true, nil
}

// UpsertProperty creates a property at the end of the list or renames an existing one
func (ps *PropertyStore) UpsertProperty(ctx context.Context, id, name string) error {
	if ps == nil || ps.db == nil {
		return fmt.Errorf("property store not initialized")
	}
	if strings.TrimSpace(id) == "" || strings.TrimSpace(name) == "" {
		return fmt.Errorf("invalid property inputs")
	}
	_, err := ps.db.ExecContext(ctx, `INSERT INTO properties(id, name, position, created_at)
VALUES(?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM properties), ?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name;
`, id, name, time.Now().Unix())
	return err
}

// AppendMessages stores msgs ahead of the property's existing messages, keeping
// their relative order. Messages without an ID get one; the stored copies are returned.
func (ps *PropertyStore) AppendMessages(ctx context.Context, propertyID string, msgs []model.Message) ([]model.Message, error) {
	if ps == nil || ps.db == nil {
		return nil, fmt.Errorf("property store not initialized")
	}
	if len(msgs) == 0 {
		return nil, nil
	}
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties WHERE id=?`, propertyID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, fmt.Errorf("property %q does not exist", propertyID)
	}

	var first int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MIN(position), 0) FROM property_messages WHERE property_id=?`, propertyID).Scan(&first); err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO property_messages(id, property_id, position, sender, receiver, content, ts_seconds, ts_nanos, ts_iso, source)
VALUES(?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	out := make([]model.Message, len(msgs))
	base := first - int64(len(msgs))
	for i, m := range msgs {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		ts := m.Timestamp
		if _, err := stmt.ExecContext(ctx, m.ID, propertyID, base+int64(i), m.Sender, m.Receiver, m.Content, ts.Seconds, ts.Nanos, ts.ISO, m.Source); err != nil {
			return nil, fmt.Errorf("insert message: %w", err)
		}
		out[i] = m
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProperty removes a property and its messages
func (ps *PropertyStore) DeleteProperty(ctx context.Context, id string) error {
	if ps == nil || ps.db == nil {
		return fmt.Errorf("property store not initialized")
	}
	_, err := ps.db.ExecContext(ctx, `DELETE FROM properties WHERE id=?`, id)
	return err
}

const messageColumns = `id, sender, receiver, content, ts_seconds, ts_nanos, ts_iso, source`

func (ps *PropertyStore) messages(ctx context.Context, propertyID string) ([]model.Message, error) {
	rows, err := ps.db.QueryContext(ctx, `SELECT property_id, `+messageColumns+` FROM property_messages WHERE property_id=? ORDER BY position ASC`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Message
	for rows.Next() {
		var pid string
		m, err := scanMessage(rows, &pid)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMessage(rows *sql.Rows, propertyID *string) (model.Message, error) {
	var m model.Message
	err := rows.Scan(propertyID, &m.ID, &m.Sender, &m.Receiver, &m.Content,
		&m.Timestamp.Seconds, &m.Timestamp.Nanos, &m.Timestamp.ISO, &m.Source)
	return m, err
}
