package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/hostinbox/internal/config"
	"github.com/ajramos/hostinbox/internal/llm"
	"github.com/ajramos/hostinbox/internal/model"
)

const defaultDraftMaxLength = 8000

// DraftServiceImpl implements DraftService
type DraftServiceImpl struct {
	provider     llm.Provider
	cacheService CacheService
	config       *config.Config
}

// NewDraftService creates a new draft service
func NewDraftService(provider llm.Provider, cacheService CacheService, config *config.Config) *DraftServiceImpl {
	return &DraftServiceImpl{
		provider:     provider,
		cacheService: cacheService,
		config:       config,
	}
}

func (s *DraftServiceImpl) GenerateReply(ctx context.Context, property model.Property, msg model.Message, options DraftOptions) (*DraftResult, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("AI provider not available: %w", ErrAIServiceDown)
	}

	if strings.TrimSpace(msg.Content) == "" {
		return nil, fmt.Errorf("message content cannot be empty")
	}

	start := time.Now()
	// sample messages are regenerated every time; their key changes with the clock
	cacheable := options.UseCache && s.cacheService != nil && property.ID != "" && msg.Source != model.SourceSampleData

	if cacheable && options.ForceRegenerate {
		// the old draft is gone even when regeneration fails
		_ = s.cacheService.InvalidateDraft(ctx, property.ID, msg.Key())
	} else if cacheable {
		if cached, found, err := s.cacheService.GetDraft(ctx, property.ID, msg.Key()); err == nil && found {
			return &DraftResult{
				Draft:     cached,
				FromCache: true,
				Duration:  time.Since(start),
			}, nil
		}
	}

	prompt := s.buildPrompt(property, msg, options)

	draft, err := s.provider.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}
	draft = strings.TrimSpace(draft)
	if draft == "" {
		return nil, ErrEmptyDraft
	}

	if cacheable {
		// a failed cache write still returns the fresh draft
		_ = s.cacheService.SaveDraft(ctx, property.ID, msg.Key(), draft)
	}

	return &DraftResult{
		Draft:     draft,
		FromCache: false,
		Duration:  time.Since(start),
	}, nil
}

func (s *DraftServiceImpl) buildPrompt(property model.Property, msg model.Message, options DraftOptions) string {
	content := msg.Content
	maxLength := defaultDraftMaxLength
	if options.MaxLength > 0 {
		maxLength = options.MaxLength
	}
	if len([]rune(content)) > maxLength {
		content = string([]rune(content)[:maxLength])
	}

	prompt := config.DefaultReplyPrompt
	if s.config != nil {
		prompt = s.config.LLM.GetReplyPrompt()
	}

	prompt = strings.NewReplacer(
		"{{property}}", property.Name,
		"{{sender}}", msg.Sender,
		"{{message}}", content,
	).Replace(prompt)

	if options.Tone != "" {
		prompt += fmt.Sprintf("\n\nUse a %s tone.", options.Tone)
	}
	return prompt
}
