package services

import (
	"context"
	"time"

	"github.com/ajramos/hostinbox/internal/model"
)

// PropertyRepository handles property and message persistence
type PropertyRepository interface {
	ListProperties(ctx context.Context) ([]model.Property, error)
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	UpsertProperty(ctx context.Context, id, name string) error
	AppendMessages(ctx context.Context, propertyID string, msgs []model.Message) ([]model.Message, error)
}

// MessageSource fetches guest messages about a property from a mail provider
type MessageSource interface {
	Name() string
	FetchMessages(ctx context.Context, property model.Property) ([]model.Message, error)
}

// ImportService pulls new guest messages into the property store
type ImportService interface {
	Import(ctx context.Context, propertyID string) ([]model.Message, error)
}

// DraftService generates reply drafts for guest messages
type DraftService interface {
	GenerateReply(ctx context.Context, property model.Property, msg model.Message, options DraftOptions) (*DraftResult, error)
}

// CacheService handles draft caching operations
type CacheService interface {
	GetDraft(ctx context.Context, propertyID, messageKey string) (string, bool, error)
	SaveDraft(ctx context.Context, propertyID, messageKey, draft string) error
	InvalidateDraft(ctx context.Context, propertyID, messageKey string) error
	ClearCache(ctx context.Context, propertyID string) error
}

// DraftOptions tune a single reply generation
type DraftOptions struct {
	Tone            string
	MaxLength       int
	UseCache        bool
	ForceRegenerate bool
}

// DraftResult is a generated or cached reply
type DraftResult struct {
	Draft     string
	FromCache bool
	Duration  time.Duration
}
