package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajramos/hostinbox/internal/db"
	"github.com/ajramos/hostinbox/internal/model"
)

// PropertyRepositoryImpl implements PropertyRepository
type PropertyRepositoryImpl struct {
	store *db.PropertyStore
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(store *db.PropertyStore) *PropertyRepositoryImpl {
	return &PropertyRepositoryImpl{
		store: store,
	}
}

func (r *PropertyRepositoryImpl) ListProperties(ctx context.Context) ([]model.Property, error) {
	if r.store == nil {
		return nil, ErrStoreUnavailable
	}

	props, err := r.store.ListProperties(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	return props, nil
}

func (r *PropertyRepositoryImpl) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("property ID cannot be empty: %w", ErrInvalidInput)
	}
	if r.store == nil {
		return nil, ErrStoreUnavailable
	}

	p, found, err := r.store.GetProperty(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get property %s: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, id)
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("property %s has no name: %w", id, ErrDataCorrupted)
	}

	return p, nil
}

func (r *PropertyRepositoryImpl) UpsertProperty(ctx context.Context, id, name string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("property ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("property name cannot be empty")
	}
	if r.store == nil {
		return ErrStoreUnavailable
	}

	if err := r.store.UpsertProperty(ctx, id, name); err != nil {
		return fmt.Errorf("failed to save property %s: %w", id, err)
	}

	return nil
}

// DeleteProperty removes a property and its stored messages
func (r *PropertyRepositoryImpl) DeleteProperty(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("property ID cannot be empty: %w", ErrInvalidInput)
	}
	if r.store == nil {
		return ErrStoreUnavailable
	}

	if err := r.store.DeleteProperty(ctx, id); err != nil {
		return fmt.Errorf("failed to delete property %s: %w", id, err)
	}

	return nil
}

func (r *PropertyRepositoryImpl) AppendMessages(ctx context.Context, propertyID string, msgs []model.Message) ([]model.Message, error) {
	if strings.TrimSpace(propertyID) == "" {
		return nil, fmt.Errorf("property ID cannot be empty")
	}
	if r.store == nil {
		return nil, ErrStoreUnavailable
	}

	for _, m := range msgs {
		if m.Source == model.SourceSampleData {
			return nil, fmt.Errorf("sample messages cannot be stored: %w", ErrInvalidInput)
		}
	}

	stored, err := r.store.AppendMessages(ctx, propertyID, msgs)
	if err != nil {
		return nil, fmt.Errorf("failed to append messages to %s: %w", propertyID, err)
	}

	return stored, nil
}
