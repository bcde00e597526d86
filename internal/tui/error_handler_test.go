package tui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/ajramos/hostinbox/internal/services"
	"github.com/derailed/tview"
	"github.com/stretchr/testify/assert"
)

func newTestErrorHandler() (*ErrorHandler, *bytes.Buffer) {
	var buf bytes.Buffer
	eh := NewErrorHandler(nil, nil, tview.NewTextView(), log.New(&buf, "", 0))
	return eh, &buf
}

func TestErrorHandler_HandleError(t *testing.T) {
	eh, buf := newTestErrorHandler()
	defer eh.stopTimer()
	ctx := context.Background()

	eh.HandleError(ctx, errors.New("boom"), "Failed to load properties")
	assert.Equal(t, "❌ Failed to load properties", eh.Status())
	assert.Contains(t, buf.String(), "ERROR: boom")

	eh.HandleError(ctx, errors.New("other"), "")
	assert.Equal(t, "❌ An error occurred", eh.Status())
}

func TestErrorHandler_ErrorClassification(t *testing.T) {
	eh, buf := newTestErrorHandler()
	defer eh.stopTimer()
	ctx := context.Background()

	eh.HandleError(ctx, fmt.Errorf("dial: %w", services.ErrNetworkUnavailable), "Failed to import messages")
	assert.Equal(t, "❌ Failed to import messages (press again to retry)", eh.Status())

	eh.HandleError(ctx, services.ErrUnauthorized, "Failed to import messages")
	assert.Equal(t, "❌ Failed to import messages", eh.Status())
	assert.Contains(t, buf.String(), "ERROR (permanent): unauthorized access")
}

func TestErrorHandler_NilErrorIgnored(t *testing.T) {
	eh, buf := newTestErrorHandler()
	eh.HandleError(context.Background(), nil, "nothing")
	assert.Equal(t, "HostInbox", eh.Status())
	assert.Empty(t, buf.String())
}

func TestErrorHandler_Levels(t *testing.T) {
	eh, _ := newTestErrorHandler()
	defer eh.stopTimer()
	ctx := context.Background()

	tests := []struct {
		name string
		show func(context.Context, string)
		want string
	}{
		{"info", eh.ShowInfo, "ℹ️ hello"},
		{"warning", eh.ShowWarning, "⚠️ hello"},
		{"error", eh.ShowError, "❌ hello"},
		{"success", eh.ShowSuccess, "✅ hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.show(ctx, "hello")
			assert.Equal(t, tt.want, eh.Status())
		})
	}
}

func TestErrorHandler_BlankMessageIgnored(t *testing.T) {
	eh, _ := newTestErrorHandler()
	eh.ShowInfo(context.Background(), "   ")
	assert.Equal(t, "HostInbox", eh.Status())
}

func TestErrorHandler_ProgressUnderTransient(t *testing.T) {
	eh, _ := newTestErrorHandler()
	defer eh.stopTimer()
	ctx := context.Background()

	eh.ShowProgress(ctx, "Importing…")
	assert.Equal(t, "ℹ️ Importing…", eh.Status())

	eh.ShowSuccess(ctx, "done")
	assert.Equal(t, "✅ done", eh.Status())

	eh.ClearProgress()
	assert.Equal(t, "✅ done", eh.Status())
}

func TestErrorHandler_MessageClearsAfterDelay(t *testing.T) {
	eh, _ := newTestErrorHandler()
	defer eh.stopTimer()
	eh.clearDelay = 10 * time.Millisecond

	eh.ShowWarning(context.Background(), "careful")
	assert.Eventually(t, func() bool {
		return eh.Status() == "HostInbox"
	}, time.Second, 5*time.Millisecond)
}

func TestErrorHandler_NewerMessageSurvivesOlderTimer(t *testing.T) {
	eh, _ := newTestErrorHandler()
	defer eh.stopTimer()
	ctx := context.Background()

	eh.clearDelay = 10 * time.Millisecond
	eh.ShowInfo(ctx, "first")
	eh.clearDelay = time.Hour
	eh.ShowInfo(ctx, "second")

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, "ℹ️ second", eh.Status())
}

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "• plain", formatMessage("plain", LogLevel(99)))
	assert.Equal(t, "UNKNOWN", levelToString(LogLevel(99)))
	assert.Equal(t, "WARN", levelToString(LogLevelWarning))
	assert.Equal(t, "SUCCESS", levelToString(LogLevelSuccess))
}
