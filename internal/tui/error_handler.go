package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/ajramos/hostinbox/internal/services"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

const retryHint = " (press again to retry)"

// LogLevel represents the severity of a message
type LogLevel int

const (
	LogLevelInfo LogLevel = iota
	LogLevelWarning
	LogLevelError
	LogLevelSuccess
)

const statusClearDelay = 5 * time.Second

// ErrorHandler shows notifications in the status bar and logs them
type ErrorHandler struct {
	mu         sync.Mutex
	appRef     *App
	statusView *tview.TextView
	logger     *log.Logger
	// queue runs UI updates on the event loop
	queue func(func())

	currentStatus    string
	persistentStatus string
	statusTimer      *time.Timer
	clearDelay       time.Duration
}

// NewErrorHandler creates a new error handler. app may be nil, in which case
// updates are applied immediately.
func NewErrorHandler(app *tview.Application, appRef *App, statusView *tview.TextView, logger *log.Logger) *ErrorHandler {
	eh := &ErrorHandler{
		appRef:     appRef,
		statusView: statusView,
		logger:     logger,
		clearDelay: statusClearDelay,
		queue:      func(fn func()) { fn() },
	}
	if app != nil {
		eh.queue = func(fn func()) { app.QueueUpdateDraw(fn) }
	}
	return eh
}

// HandleError logs err and shows userMsg
func (eh *ErrorHandler) HandleError(ctx context.Context, err error, userMsg string) {
	if err == nil {
		return
	}
	if eh.logger != nil {
		if services.IsPermanentError(err) {
			eh.logger.Printf("ERROR (permanent): %v", err)
		} else {
			eh.logger.Printf("ERROR: %v", err)
		}
	}
	if userMsg == "" {
		userMsg = "An error occurred"
	}
	if services.IsRetryableError(err) {
		userMsg += retryHint
	}
	eh.ShowMessage(ctx, userMsg, LogLevelError)
}

// ShowMessage displays a transient message
func (eh *ErrorHandler) ShowMessage(ctx context.Context, msg string, level LogLevel) {
	if strings.TrimSpace(msg) == "" {
		return
	}
	formatted := formatMessage(msg, level)
	if eh.logger != nil {
		eh.logger.Printf("%s: %s", levelToString(level), msg)
	}
	eh.queue(func() {
		eh.updateStatusMessage(formatted, level)
	})
}

// ShowProgress shows a message that stays until ClearProgress
func (eh *ErrorHandler) ShowProgress(ctx context.Context, msg string) {
	formatted := formatMessage(msg, LogLevelInfo)
	eh.queue(func() {
		eh.mu.Lock()
		defer eh.mu.Unlock()
		eh.persistentStatus = formatted
		eh.refreshStatusDisplay()
	})
}

// ClearProgress clears the persistent message
func (eh *ErrorHandler) ClearProgress() {
	eh.queue(func() {
		eh.mu.Lock()
		defer eh.mu.Unlock()
		eh.persistentStatus = ""
		eh.refreshStatusDisplay()
	})
}

// ShowInfo shows an info message
func (eh *ErrorHandler) ShowInfo(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelInfo)
}

// ShowWarning shows a warning message
func (eh *ErrorHandler) ShowWarning(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelWarning)
}

// ShowError shows an error message
func (eh *ErrorHandler) ShowError(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelError)
}

// ShowSuccess shows a success message
func (eh *ErrorHandler) ShowSuccess(ctx context.Context, msg string) {
	eh.ShowMessage(ctx, msg, LogLevelSuccess)
}

// Refresh redraws the status bar, picking up a changed baseline
func (eh *ErrorHandler) Refresh() {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	eh.refreshStatusDisplay()
}

// Status returns the text currently shown in the status bar
func (eh *ErrorHandler) Status() string {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	return eh.displayText()
}

func formatMessage(msg string, level LogLevel) string {
	var icon string
	switch level {
	case LogLevelInfo:
		icon = "ℹ️"
	case LogLevelWarning:
		icon = "⚠️"
	case LogLevelError:
		icon = "❌"
	case LogLevelSuccess:
		icon = "✅"
	default:
		icon = "•"
	}
	return fmt.Sprintf("%s %s", icon, msg)
}

func levelToString(level LogLevel) string {
	switch level {
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarning:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelSuccess:
		return "SUCCESS"
	default:
		return "UNKNOWN"
	}
}

// levelToColor maps a level to the palette's status colors
func (eh *ErrorHandler) levelToColor(level LogLevel) tcell.Color {
	if eh.appRef == nil || eh.appRef.palette == nil {
		return tcell.ColorDefault
	}
	p := eh.appRef.palette
	switch level {
	case LogLevelWarning:
		return p.Warning.Color()
	case LogLevelError:
		return p.Error.Color()
	case LogLevelSuccess:
		return p.Success.Color()
	default:
		return p.Info.Color()
	}
}

// updateStatusMessage shows msg and schedules its removal
func (eh *ErrorHandler) updateStatusMessage(msg string, level LogLevel) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	if eh.statusTimer != nil {
		eh.statusTimer.Stop()
	}
	eh.currentStatus = msg
	if eh.statusView != nil {
		eh.statusView.SetTextColor(eh.levelToColor(level))
	}
	eh.refreshStatusDisplay()

	// a newer message must survive the timer of an older one
	expected := msg
	eh.statusTimer = time.AfterFunc(eh.clearDelay, func() {
		eh.queue(func() {
			eh.mu.Lock()
			defer eh.mu.Unlock()
			if eh.currentStatus == expected {
				eh.currentStatus = ""
				eh.refreshStatusDisplay()
			}
		})
	})
}

// refreshStatusDisplay writes the highest-priority text; callers hold mu
func (eh *ErrorHandler) refreshStatusDisplay() {
	if eh.statusView == nil {
		return
	}
	eh.statusView.SetText(eh.displayText())
}

func (eh *ErrorHandler) displayText() string {
	switch {
	case eh.currentStatus != "":
		return eh.currentStatus
	case eh.persistentStatus != "":
		return eh.persistentStatus
	case eh.appRef != nil:
		return eh.appRef.statusBaseline()
	default:
		return "HostInbox"
	}
}

// stopTimer cancels a pending clear; used on shutdown
func (eh *ErrorHandler) stopTimer() {
	eh.mu.Lock()
	defer eh.mu.Unlock()
	if eh.statusTimer != nil {
		eh.statusTimer.Stop()
	}
}
