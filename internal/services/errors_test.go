package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
		permanent bool
	}{
		{"network", ErrNetworkUnavailable, true, false},
		{"store", ErrStoreUnavailable, true, false},
		{"ai_down", fmt.Errorf("generate: %w", ErrAIServiceDown), true, false},
		{"unauthorized", ErrUnauthorized, false, true},
		{"missing_property", fmt.Errorf("%w: %w", ErrMessageFetch, ErrPropertyNotFound), false, true},
		{"corrupted", ErrDataCorrupted, false, true},
		{"other", errors.New("boom"), false, false},
		{"nil", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryableError(tt.err))
			assert.Equal(t, tt.permanent, IsPermanentError(tt.err))
		})
	}
}
