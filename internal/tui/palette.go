package tui

import (
	"github.com/ajramos/hostinbox/internal/config"
	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// loadPalette reads theme_file, falling back to the built-in colors
func (a *App) loadPalette() *config.Palette {
	path := ""
	if a.Config != nil {
		path = a.Config.ThemeFile
	}
	p, err := config.LoadPalette(path)
	if err != nil {
		if a.logger != nil {
			a.logger.Printf("WARN: theme %s: %v; using default colors", path, err)
		}
		return config.DefaultPalette()
	}
	return p
}

// colorTag returns a tview dynamic color tag for c
func colorTag(c config.Color) string {
	return "[" + c.String() + "]"
}

type boxed interface {
	SetBackgroundColor(tcell.Color) *tview.Box
	SetBorderColor(tcell.Color) *tview.Box
	SetTitleColor(tcell.Color) *tview.Box
}

// applyPalette colors every pane
func (a *App) applyPalette() {
	p := a.palette
	if p == nil {
		return
	}
	bg, fg := p.Background.Color(), p.Foreground.Color()

	for _, name := range []string{"properties", "integration", "search", "messages", "draft"} {
		if b, ok := a.views[name].(boxed); ok {
			b.SetBackgroundColor(bg)
			b.SetBorderColor(p.Border.Color())
			b.SetTitleColor(p.Title.Color())
		}
	}
	if list, ok := a.views["properties"].(*tview.List); ok {
		list.SetMainTextColor(fg)
		list.SetSelectedBackgroundColor(p.Selected.Color())
		list.SetSelectedTextColor(fg)
	}
	if search, ok := a.views["search"].(*tview.InputField); ok {
		search.SetFieldBackgroundColor(bg)
		search.SetFieldTextColor(fg)
		search.SetLabelColor(p.Title.Color())
	}
	if table, ok := a.views["messages"].(*tview.Table); ok {
		table.SetSelectedStyle(tcell.StyleDefault.Background(p.Selected.Color()).Foreground(fg).Attributes(tcell.AttrBold))
	}
	for _, name := range []string{"integration", "draft", "status"} {
		if tv, ok := a.views[name].(*tview.TextView); ok {
			tv.SetTextColor(fg)
			tv.SetBackgroundColor(bg)
		}
	}
	for _, name := range []string{"body", "root"} {
		if flex, ok := a.views[name].(*tview.Flex); ok {
			flex.SetBackgroundColor(bg)
		}
	}
	a.applyFocusBorders()
}

// applyFocusBorders highlights the border of the focused pane
func (a *App) applyFocusBorders() {
	if a.palette == nil {
		return
	}
	for _, name := range focusOrder {
		b, ok := a.views[name].(boxed)
		if !ok {
			continue
		}
		if name == a.currentFocus {
			b.SetBorderColor(a.palette.Focus.Color())
		} else {
			b.SetBorderColor(a.palette.Border.Color())
		}
	}
}
