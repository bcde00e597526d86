package tui

import (
	"fmt"
	"strings"
)

// statusBaseline is shown when no notification is active
func (a *App) statusBaseline() string {
	parts := []string{"HostInbox"}
	if s := a.state(); s != nil {
		switch {
		case s.Loading():
			parts = append(parts, "loading…")
		case len(s.Properties) == 1:
			parts = append(parts, "1 property")
		default:
			parts = append(parts, fmt.Sprintf("%d properties", len(s.Properties)))
		}
	}
	if n := a.importing.Load(); n > 0 {
		parts = append(parts, "importing…")
	}
	parts = append(parts, a.keyHints())
	return strings.Join(parts, " | ")
}

// keyHints lists the configured shortcuts
func (a *App) keyHints() string {
	hints := []string{
		a.Keys.Search + " search",
		a.Keys.Import + " import",
		a.Keys.GenerateReply + " reply",
		a.Keys.Regenerate + " regenerate",
		"Tab focus",
		a.Keys.Quit + " quit",
	}
	return strings.Join(hints, "  ")
}
