package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ajramos/hostinbox/internal/config"
	"github.com/ajramos/hostinbox/internal/db"
	"github.com/ajramos/hostinbox/internal/model"
	"github.com/ajramos/hostinbox/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const demoSeed = "../../internal/seed/testdata/demo.yaml"

func TestGetConfigPath_Priority(t *testing.T) {
	assert.Equal(t, "/custom/config.json", getConfigPath("/custom/config.json"))

	t.Setenv("HOSTINBOX_CONFIG", "/env/config.json")
	assert.Equal(t, "/env/config.json", getConfigPath(""))

	t.Setenv("HOSTINBOX_CONFIG", "")
	assert.Equal(t, config.DefaultConfigPath(), getConfigPath(""))
}

func TestGetCredentialsPath_Priority(t *testing.T) {
	t.Setenv("HOSTINBOX_CREDENTIALS", "")
	assert.Equal(t, "/custom/creds.json", getCredentialsPath("/custom/creds.json", "/config/creds.json"))
	assert.Equal(t, "/config/creds.json", getCredentialsPath("", "/config/creds.json"))
	assert.Contains(t, getCredentialsPath("", ""), "credentials.json")

	t.Setenv("HOSTINBOX_CREDENTIALS", "/env/creds.json")
	assert.Equal(t, "/env/creds.json", getCredentialsPath("", "/config/creds.json"))
}

func TestGetTokenPath_Priority(t *testing.T) {
	t.Setenv("HOSTINBOX_TOKEN", "")
	assert.Equal(t, "/custom/token.json", getTokenPath("/custom/token.json", "/config/token.json"))
	assert.Equal(t, "/config/token.json", getTokenPath("", "/config/token.json"))
	assert.Contains(t, getTokenPath("", ""), "token.json")

	t.Setenv("HOSTINBOX_TOKEN", "/env/token.json")
	assert.Equal(t, "/env/token.json", getTokenPath("", "/config/token.json"))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("HOSTINBOX_TOKEN", "~/tokens/t.json")
	assert.Equal(t, filepath.Join(home, "tokens", "t.json"), getTokenPath("", ""))
}

// writeConfig stores a config pointing the database into a temp dir
func writeConfig(t *testing.T, mutate func(cfg *config.Config)) string {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Store.Path = filepath.Join(dir, "hostinbox.sqlite3")
	cfg.LogFile = filepath.Join(dir, "hostinbox.log")
	cfg.LLM.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}
	path := filepath.Join(dir, "config.json")
	require.NoError(t, cfg.SaveConfig(path))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedAndListProperties(t *testing.T) {
	cfgPath := writeConfig(t, nil)

	out, err := run(t, "--config", cfgPath, "seed", demoSeed)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 2 properties, 2 new messages")

	out, err = run(t, "--config", cfgPath, "seed", demoSeed)
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded 2 properties, 0 new messages")

	out, err = run(t, "--config", cfgPath, "properties", "--json")
	require.NoError(t, err)
	var rows []propertyRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "lake-house", rows[0].ID)
	assert.Equal(t, 2, rows[0].Messages)
	assert.NotEmpty(t, rows[0].Latest)
	assert.Equal(t, "downtown-loft", rows[1].ID)
	assert.Zero(t, rows[1].Messages)
	assert.Empty(t, rows[1].Latest)

	out, err = run(t, "--config", cfgPath, "props")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "lake-house")
	assert.Contains(t, out, "downtown-loft")
}

func TestListProperties_Empty(t *testing.T) {
	cfgPath := writeConfig(t, nil)

	out, err := run(t, "--config", cfgPath, "properties")
	require.NoError(t, err)
	assert.Contains(t, out, "no properties")
}

func TestSeed_Errors(t *testing.T) {
	cfgPath := writeConfig(t, nil)

	_, err := run(t, "--config", cfgPath, "seed")
	assert.Error(t, err)

	_, err = run(t, "--config", cfgPath, "seed", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open seed file")
}

func TestInvalidConfigRejected(t *testing.T) {
	cfgPath := writeConfig(t, func(cfg *config.Config) {
		cfg.Import.Provider = "pigeon"
	})

	_, err := run(t, "--config", cfgPath, "properties")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestImport_Errors(t *testing.T) {
	t.Setenv("HOSTINBOX_CREDENTIALS", "")
	cfgPath := writeConfig(t, func(cfg *config.Config) {
		cfg.Credentials = filepath.Join(filepath.Dir(cfg.Store.Path), "missing-credentials.json")
	})
	_, err := run(t, "--config", cfgPath, "seed", demoSeed)
	require.NoError(t, err)

	_, err = run(t, "--config", cfgPath, "import", "nowhere")
	assert.ErrorIs(t, err, services.ErrPropertyNotFound)

	_, err = run(t, "--config", cfgPath, "import", "lake-house")
	assert.ErrorIs(t, err, services.ErrImportUnavailable)
	assert.Contains(t, err.Error(), "credentials file not found")
}

func TestImport_IMAPUnreachable(t *testing.T) {
	cfgPath := writeConfig(t, func(cfg *config.Config) {
		cfg.Import.Provider = "imap"
		cfg.Import.IMAP.Server = "127.0.0.1:1"
		cfg.Import.IMAP.Username = "host@example.com"
	})
	_, err := run(t, "--config", cfgPath, "seed", demoSeed)
	require.NoError(t, err)

	_, err = run(t, "--config", cfgPath, "import", "lake-house")
	assert.ErrorIs(t, err, services.ErrNetworkUnavailable)
}

func TestRemoveProperty(t *testing.T) {
	cfgPath := writeConfig(t, nil)
	_, err := run(t, "--config", cfgPath, "seed", demoSeed)
	require.NoError(t, err)

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	ctx := context.Background()
	store, err := db.Open(ctx, cfg.StorePath())
	require.NoError(t, err)
	drafts := db.NewDraftStore(store)
	require.NoError(t, drafts.SaveDraft(ctx, "lake-house", "k1", "See you soon!", 1))
	require.NoError(t, store.Close())

	out, err := run(t, "--config", cfgPath, "rm", "lake-house")
	require.NoError(t, err)
	assert.Contains(t, out, "(2 messages)")

	_, err = run(t, "--config", cfgPath, "remove", "lake-house")
	assert.ErrorIs(t, err, services.ErrPropertyNotFound)

	out, err = run(t, "--config", cfgPath, "properties", "--json")
	require.NoError(t, err)
	var rows []propertyRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "downtown-loft", rows[0].ID)

	store, err = db.Open(ctx, cfg.StorePath())
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	_, found, err := db.NewDraftStore(store).LoadDraft(ctx, "lake-house", "k1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "HostInbox")
	assert.Contains(t, out, "Go version:")

	out, err = run(t, "version", "--short")
	require.NoError(t, err)
	assert.NotContains(t, out, "Go version:")
}

func TestRootRejectsArgs(t *testing.T) {
	_, err := run(t, "lake-house")
	assert.Error(t, err)
}

func TestNewDraftService(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLM.Enabled = false
	assert.Nil(t, newDraftService(cfg, nil))

	cfg.LLM.Enabled = true
	cfg.LLM.Endpoint = ""
	svc := newDraftService(cfg, nil)
	require.NotNil(t, svc)

	_, err := svc.GenerateReply(context.Background(),
		model.Property{ID: "lake-house", Name: "Lake House"},
		model.Message{Sender: "Jane", Content: "Is parking available?"},
		services.DraftOptions{})
	assert.ErrorIs(t, err, services.ErrAIServiceDown)
}

func TestNewMessageSource(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Import.Provider = "imap"
	cfg.Import.IMAP.Server = "imap.example.com:993"

	src, err := newMessageSource(context.Background(), cfg, &rootOptions{})
	require.NoError(t, err)
	assert.Equal(t, model.SourceIMAP, src.Name())

	cfg.Import.Provider = "fax"
	_, err = newMessageSource(context.Background(), cfg, &rootOptions{})
	assert.ErrorIs(t, err, services.ErrImportUnavailable)
}
