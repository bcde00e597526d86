package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LLMConfig holds the reply draft generator settings
type LLMConfig struct {
	Enabled  bool   `json:"enabled"`
	Provider string `json:"provider"` // ollama, bedrock
	Model    string `json:"model"`
	Endpoint string `json:"endpoint"`
	Region   string `json:"region"` // For AWS Bedrock
	Timeout  string `json:"timeout"`

	// Drafts are cached per property and message when enabled
	CacheEnabled bool `json:"cache_enabled"`

	// Reply style: tone word added to the prompt ("warm", "formal") and the
	// number of message characters sent to the model (0 means 8000)
	Tone      string `json:"tone,omitempty"`
	MaxLength int    `json:"max_length,omitempty"`

	// Template file path (relative to config dir or absolute)
	ReplyTemplate string `json:"reply_template"`

	// Inline prompt override. Variables: {{property}}, {{sender}}, {{message}}
	ReplyPrompt string `json:"reply_prompt,omitempty"`
}

// IMAPConfig holds the mailbox used by the imap import provider
type IMAPConfig struct {
	Server   string `json:"server"` // host:port, TLS only
	Username string `json:"username"`
	Password string `json:"password"`
	Mailbox  string `json:"mailbox"`
}

// ImportConfig selects where guest messages are imported from
type ImportConfig struct {
	Provider   string     `json:"provider"` // gmail, imap
	Query      string     `json:"query"`    // Gmail search query; {{property}} expands to the property name
	MaxResults int64      `json:"max_results"`
	IMAP       IMAPConfig `json:"imap"`
}

// StoreConfig locates the local property database
type StoreConfig struct {
	Path string `json:"path"`
}

// KeyBindings defines keyboard shortcuts for the TUI
type KeyBindings struct {
	Search        string `json:"search"`
	Import        string `json:"import"`
	GenerateReply string `json:"generate_reply"`
	Regenerate    string `json:"regenerate"`
	Quit          string `json:"quit"`
}

// Config holds all configuration for hostinbox
type Config struct {
	Credentials string `json:"credentials"`
	Token       string `json:"token"`

	Store  StoreConfig  `json:"store"`
	Import ImportConfig `json:"import"`
	LLM    LLMConfig    `json:"llm"`

	// Keyboard shortcuts
	Keys KeyBindings `json:"keys"`

	// Optional YAML palette (relative to config dir or absolute)
	ThemeFile string `json:"theme_file"`

	// Logging
	LogFile string `json:"log_file"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Import:  DefaultImportConfig(),
		LLM:     DefaultLLMConfig(),
		Keys:    DefaultKeyBindings(),
		LogFile: "",
	}
}

// DefaultLLMConfig returns default LLM configuration
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Enabled:       true,
		Provider:      "ollama",
		Model:         "llama3.2:latest",
		Endpoint:      "http://localhost:11434/api/generate",
		Timeout:       "20s",
		CacheEnabled:  true,
		ReplyTemplate: "templates/ai/reply.md",
		ReplyPrompt:   "",
	}
}

// DefaultImportConfig returns default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		Provider:   "gmail",
		Query:      `in:inbox "{{property}}"`,
		MaxResults: 25,
		IMAP:       IMAPConfig{Mailbox: "INBOX"},
	}
}

// DefaultKeyBindings returns default keyboard shortcuts
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Search:        "/",
		Import:        "i",
		GenerateReply: "g",
		Regenerate:    "G",
		Quit:          "q",
	}
}

// LoadConfig loads configuration from file. A missing file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if data, err := os.ReadFile(ExpandPath(configPath)); err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills sections a partial config file left empty
func (c *Config) applyDefaults() {
	if c.Keys == (KeyBindings{}) {
		c.Keys = DefaultKeyBindings()
	}
	if c.Import.MaxResults <= 0 {
		c.Import.MaxResults = DefaultImportConfig().MaxResults
	}
	if strings.TrimSpace(c.Import.IMAP.Mailbox) == "" {
		c.Import.IMAP.Mailbox = "INBOX"
	}
}

// Validate reports settings that would fail later at startup
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if c.LLM.Enabled {
		if strings.TrimSpace(c.LLM.Model) == "" {
			return fmt.Errorf("LLM is enabled but no model specified")
		}
		if c.LLM.Timeout != "" {
			if _, err := time.ParseDuration(c.LLM.Timeout); err != nil {
				return fmt.Errorf("invalid LLM timeout: %w", err)
			}
		}
		if c.LLM.MaxLength < 0 {
			return fmt.Errorf("invalid LLM max_length %d", c.LLM.MaxLength)
		}
		switch c.LLM.Provider {
		case "", "ollama", "bedrock":
		default:
			return fmt.Errorf("unsupported LLM provider %q", c.LLM.Provider)
		}
	}

	switch c.Import.Provider {
	case "", "gmail":
	case "imap":
		if strings.TrimSpace(c.Import.IMAP.Server) == "" {
			return fmt.Errorf("imap import requires import.imap.server")
		}
	default:
		return fmt.Errorf("unsupported import provider %q", c.Import.Provider)
	}

	return nil
}

// DefaultConfigDir returns the directory holding config, credentials and data
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "hostinbox")
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.json")
}

// DefaultCredentialPaths returns the default paths for credentials and token
func DefaultCredentialPaths() (string, string) {
	dir := DefaultConfigDir()
	if dir == "" {
		return "", ""
	}
	return filepath.Join(dir, "credentials.json"), filepath.Join(dir, "token.json")
}

// DefaultStorePath returns the default sqlite database path
func DefaultStorePath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "hostinbox.sqlite3")
}

// DefaultLogDir returns the default log directory path
func DefaultLogDir() string {
	return DefaultConfigDir()
}

// StorePath returns the configured database path or the default one
func (c *Config) StorePath() string {
	if strings.TrimSpace(c.Store.Path) != "" {
		return ExpandPath(c.Store.Path)
	}
	return DefaultStorePath()
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetLLMTimeout returns parsed timeout for LLM
func (c *Config) GetLLMTimeout() time.Duration {
	if c.LLM.Timeout != "" {
		if d, err := time.ParseDuration(c.LLM.Timeout); err == nil {
			return d
		}
	}
	return 20 * time.Second
}

// ExpandPath expands a leading ~ to the home directory
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// resolveConfigRelative makes a path relative to the config directory if not absolute
func resolveConfigRelative(path string) string {
	path = ExpandPath(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(DefaultConfigDir(), path)
}

// LoadTemplate loads a template with proper priority: file first, then inline, then fallback
func LoadTemplate(templatePath, inlinePrompt, fallbackPrompt string) string {
	if strings.TrimSpace(templatePath) != "" {
		if content, err := os.ReadFile(resolveConfigRelative(templatePath)); err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if strings.TrimSpace(inlinePrompt) != "" {
		return inlinePrompt
	}

	return fallbackPrompt
}

// DefaultReplyPrompt is used when neither a template file nor an inline prompt is set
const DefaultReplyPrompt = "You help a short-term rental host answer guests of the property \"{{property}}\". " +
	"Write a friendly, concise reply to the guest message below from {{sender}}. " +
	"Keep the same language as the guest and do not invent facts about the property.\n\n{{message}}"

// GetReplyPrompt returns the reply prompt, loading from template file if needed
func (c *LLMConfig) GetReplyPrompt() string {
	return LoadTemplate(c.ReplyTemplate, c.ReplyPrompt, DefaultReplyPrompt)
}
