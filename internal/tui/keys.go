package tui

import (
	"errors"
	"fmt"

	"github.com/ajramos/hostinbox/internal/services"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// bindKeys installs the global shortcuts
func (a *App) bindKeys() {
	a.SetInputCapture(a.handleKey)
}

// handleKey routes a key event; returning nil consumes it
func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	// the search field keeps every key except the ones leaving it
	if _, ok := a.GetFocus().(*tview.InputField); ok {
		switch event.Key() {
		case tcell.KeyEsc, tcell.KeyTab, tcell.KeyBacktab:
			a.focus("messages")
			return nil
		}
		return event
	}

	switch event.Key() {
	case tcell.KeyTab:
		a.cycleFocus(true)
		return nil
	case tcell.KeyBacktab:
		a.cycleFocus(false)
		return nil
	case tcell.KeyRune:
	default:
		return event
	}

	switch string(event.Rune()) {
	case a.Keys.Search:
		a.focus("search")
	case a.Keys.Import:
		a.importSelected()
	case a.Keys.GenerateReply:
		a.generateDraft(false)
	case a.Keys.Regenerate:
		a.generateDraft(true)
	case a.Keys.Quit:
		a.Quit()
	default:
		return event
	}
	return nil
}

// importSelected starts an import for the selected property
func (a *App) importSelected() {
	a.importing.Add(1)
	err := a.controller.Import(a.ctx)
	if err != nil {
		a.importing.Add(-1)
	}
	switch {
	case err == nil:
		name := ""
		if s := a.state(); s.Selected != nil {
			name = s.Selected.Name
		}
		a.errorHandler.ShowInfo(a.ctx, fmt.Sprintf("Importing messages for %s…", name))
		a.renderIntegration()
	case errors.Is(err, services.ErrImportUnavailable):
		a.errorHandler.ShowWarning(a.ctx, "Import is not configured")
	default:
		a.errorHandler.ShowWarning(a.ctx, err.Error())
	}
}
