package tui

import (
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

const (
	senderColumnWidth = 18
	dateColumnWidth   = 10
	integrationHeight = 5
)

// initComponents builds the three panes and the status bar
func (a *App) initComponents() {
	// Left pane: property picker above the integration box
	properties := tview.NewList().ShowSecondaryText(false)
	properties.SetBorder(true).SetTitle(" 🏠 Properties ").SetTitleAlign(tview.AlignCenter)
	properties.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if a.rendering {
			return
		}
		a.onPropertyChanged(index)
	})
	properties.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		a.focus("messages")
	})

	integration := tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	integration.SetBorder(true).SetTitle(" 📥 Import ").SetTitleAlign(tview.AlignCenter)

	left := tview.NewFlex().SetDirection(tview.FlexRow)
	left.AddItem(properties, 0, 1, true)
	left.AddItem(integration, integrationHeight, 0, false)

	// Middle pane: search above the message table
	search := tview.NewInputField().SetLabel("🔍 ").SetPlaceholder("Search messages")
	search.SetBorder(true).SetTitle(" Search ").SetTitleAlign(tview.AlignLeft)
	search.SetChangedFunc(func(text string) {
		if a.rendering {
			return
		}
		a.controller.SetQuery(text)
		a.render()
	})
	search.SetDoneFunc(func(key tcell.Key) {
		a.focus("messages")
	})

	messages := tview.NewTable().SetSelectable(true, false).SetFixed(1, 0)
	messages.SetBorder(true).SetTitle(" 💬 Messages ").SetTitleAlign(tview.AlignCenter)
	messages.SetSelectionChangedFunc(func(row, column int) {
		if a.rendering {
			return
		}
		a.onMessageRow(row)
	})
	messages.SetSelectedFunc(func(row, column int) {
		a.onMessageRow(row)
		a.generateDraft(false)
	})

	middle := tview.NewFlex().SetDirection(tview.FlexRow)
	middle.AddItem(search, 3, 0, false)
	middle.AddItem(messages, 0, 1, false)

	// Right pane: reply drafts
	draft := tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetScrollable(true)
	draft.SetBorder(true).SetTitle(" 🤖 AI Response Generator ").SetTitleAlign(tview.AlignCenter)

	body := tview.NewFlex().SetDirection(tview.FlexColumn)
	body.AddItem(left, 0, 1, true)
	body.AddItem(middle, 0, 2, false)
	body.AddItem(draft, 0, 2, false)

	status := tview.NewTextView().SetDynamicColors(false)

	root := tview.NewFlex().SetDirection(tview.FlexRow)
	root.AddItem(body, 0, 1, true)
	root.AddItem(status, 1, 0, false)

	a.views["properties"] = properties
	a.views["integration"] = integration
	a.views["search"] = search
	a.views["messages"] = messages
	a.views["draft"] = draft
	a.views["status"] = status
	a.views["body"] = body
	a.views["root"] = root

	a.applyPalette()
}

func (a *App) initErrorHandler() {
	var statusView *tview.TextView
	if tv, ok := a.views["status"].(*tview.TextView); ok {
		statusView = tv
	}
	a.errorHandler = NewErrorHandler(a.Application, a, statusView, a.logger)
	a.errorHandler.queue = a.queue
	if statusView != nil {
		statusView.SetText(a.statusBaseline())
	}
}

// focusOrder is the Tab cycle
var focusOrder = []string{"properties", "search", "messages", "draft"}

// focus moves keyboard focus to a named view and highlights its border
func (a *App) focus(name string) {
	view, ok := a.views[name]
	if !ok {
		return
	}
	a.currentFocus = name
	a.SetFocus(view)
	a.applyFocusBorders()
}

// cycleFocus moves focus forward (or backward) through focusOrder
func (a *App) cycleFocus(forward bool) {
	idx := 0
	for i, name := range focusOrder {
		if name == a.currentFocus {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(focusOrder)
	} else {
		idx = (idx - 1 + len(focusOrder)) % len(focusOrder)
	}
	a.focus(focusOrder[idx])
}
