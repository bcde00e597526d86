package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ajramos/hostinbox/internal/config"
	"github.com/ajramos/hostinbox/internal/db"
	"github.com/ajramos/hostinbox/internal/gmail"
	"github.com/ajramos/hostinbox/internal/imap"
	"github.com/ajramos/hostinbox/internal/llm"
	"github.com/ajramos/hostinbox/internal/services"
	"github.com/ajramos/hostinbox/pkg/auth"
)

// environment is what every command opens: config, store and repository
type environment struct {
	cfg   *config.Config
	store *db.Store
	repo  *services.PropertyRepositoryImpl
}

func (e *environment) Close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

// open loads and validates the config, then opens the property store
func (o *rootOptions) open(ctx context.Context) (*environment, error) {
	cfg, err := config.LoadConfig(getConfigPath(o.configPath))
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	path := cfg.StorePath()
	if path == "" {
		return nil, fmt.Errorf("no store path configured: %w", services.ErrStoreUnavailable)
	}
	store, err := db.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("could not open store %s: %w", path, err)
	}
	return &environment{
		cfg:   cfg,
		store: store,
		repo:  services.NewPropertyRepository(db.NewPropertyStore(store)),
	}, nil
}

// newMessageSource builds the import provider named by import.provider.
// Gmail may run the OAuth consent flow in the terminal on first use.
func newMessageSource(ctx context.Context, cfg *config.Config, opts *rootOptions) (services.MessageSource, error) {
	switch cfg.Import.Provider {
	case "imap":
		return imap.NewSource(cfg.Import.IMAP, cfg.Import.MaxResults, nil), nil
	case "", "gmail":
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", services.ErrImportUnavailable, cfg.Import.Provider)
	}

	credPath := getCredentialsPath(opts.credentialsPath, cfg.Credentials)
	if credPath == "" {
		return nil, fmt.Errorf("%w: Gmail credentials file is required; provide it via --credentials or the config file", services.ErrImportUnavailable)
	}
	if _, err := os.Stat(credPath); err != nil {
		return nil, fmt.Errorf("%w: credentials file not found at %s; download client credentials from Google Cloud Console and place it there",
			services.ErrImportUnavailable, credPath)
	}
	tokenPath := getTokenPath("", cfg.Token)

	service, err := auth.NewGmailService(ctx, credPath, tokenPath, auth.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("could not initialize Gmail service: %w", err)
	}
	return gmail.NewGuestSource(gmail.NewClient(service), cfg.Import.Query, cfg.Import.MaxResults), nil
}

// newDraftService wires the LLM provider and the draft cache. It returns nil
// when AI replies are disabled; a provider that fails to start leaves the
// service reporting the AI as unavailable.
func newDraftService(cfg *config.Config, store *db.Store) services.DraftService {
	if !cfg.LLM.Enabled {
		return nil
	}

	region := cfg.LLM.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	provider, err := llm.NewProviderFromConfig(cfg.LLM.Provider, cfg.LLM.Endpoint, cfg.LLM.Model, region, cfg.GetLLMTimeout())
	if err != nil {
		log.Printf("Warning: could not initialize LLM provider (%s): %v", cfg.LLM.Provider, err)
		provider = nil
	}

	var cache services.CacheService
	if cfg.LLM.CacheEnabled && store != nil {
		cache = services.NewCacheService(db.NewDraftStore(store))
	}
	return services.NewDraftService(provider, cache, cfg)
}

// getConfigPath returns the configuration file path using the following priority:
// 1. CLI flag
// 2. Environment variable HOSTINBOX_CONFIG
// 3. Default path ~/.config/hostinbox/config.json
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv("HOSTINBOX_CONFIG"); envPath != "" {
		return config.ExpandPath(envPath)
	}

	return config.DefaultConfigPath()
}

// getCredentialsPath returns the credentials file path using the following priority:
// 1. CLI flag
// 2. Environment variable HOSTINBOX_CREDENTIALS
// 3. Config file setting
// 4. Default path ~/.config/hostinbox/credentials.json
func getCredentialsPath(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv("HOSTINBOX_CREDENTIALS"); envPath != "" {
		return config.ExpandPath(envPath)
	}

	if configValue != "" {
		return config.ExpandPath(configValue)
	}

	credPath, _ := config.DefaultCredentialPaths()
	return credPath
}

// getTokenPath returns the token file path using the following priority:
// 1. CLI flag
// 2. Environment variable HOSTINBOX_TOKEN
// 3. Config file setting
// 4. Default path ~/.config/hostinbox/token.json
func getTokenPath(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv("HOSTINBOX_TOKEN"); envPath != "" {
		return config.ExpandPath(envPath)
	}

	if configValue != "" {
		return config.ExpandPath(configValue)
	}

	_, tokenPath := config.DefaultCredentialPaths()
	return tokenPath
}
