package services

import (
	"context"

	"github.com/ajramos/hostinbox/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockLLMProvider implements llm.Provider for testing
type MockLLMProvider struct {
	mock.Mock
}

func (m *MockLLMProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockLLMProvider) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockCacheService implements CacheService for testing
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetDraft(ctx context.Context, propertyID, messageKey string) (string, bool, error) {
	args := m.Called(ctx, propertyID, messageKey)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockCacheService) SaveDraft(ctx context.Context, propertyID, messageKey, draft string) error {
	args := m.Called(ctx, propertyID, messageKey, draft)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateDraft(ctx context.Context, propertyID, messageKey string) error {
	args := m.Called(ctx, propertyID, messageKey)
	return args.Error(0)
}

func (m *MockCacheService) ClearCache(ctx context.Context, propertyID string) error {
	args := m.Called(ctx, propertyID)
	return args.Error(0)
}

// MockPropertyRepository implements PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) ListProperties(ctx context.Context) ([]model.Property, error) {
	args := m.Called(ctx)
	props, _ := args.Get(0).([]model.Property)
	return props, args.Error(1)
}

func (m *MockPropertyRepository) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Property)
	return p, args.Error(1)
}

func (m *MockPropertyRepository) UpsertProperty(ctx context.Context, id, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockPropertyRepository) AppendMessages(ctx context.Context, propertyID string, msgs []model.Message) ([]model.Message, error) {
	args := m.Called(ctx, propertyID, msgs)
	stored, _ := args.Get(0).([]model.Message)
	return stored, args.Error(1)
}

// MockMessageSource implements MessageSource for testing
type MockMessageSource struct {
	mock.Mock
}

func (m *MockMessageSource) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockMessageSource) FetchMessages(ctx context.Context, property model.Property) ([]model.Message, error) {
	args := m.Called(ctx, property)
	msgs, _ := args.Get(0).([]model.Message)
	return msgs, args.Error(1)
}
