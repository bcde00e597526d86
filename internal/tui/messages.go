package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/hostinbox/internal/inbox"
	"github.com/ajramos/hostinbox/internal/model"
	"github.com/ajramos/hostinbox/internal/render"
	"github.com/derailed/tview"
)

const defaultPreviewWidth = 60

// render redraws every pane from the inbox state. Widget callbacks fired while
// rendering are ignored.
func (a *App) render() {
	if a.controller == nil {
		return
	}
	a.rendering = true
	defer func() { a.rendering = false }()

	a.renderProperties()
	a.renderIntegration()
	a.renderMessages()
	a.renderDraft()
	if a.errorHandler != nil {
		a.errorHandler.Refresh()
	}
}

func (a *App) renderProperties() {
	list, ok := a.views["properties"].(*tview.List)
	if !ok {
		return
	}
	s := a.state()

	if s.Phase != inbox.PhaseReady {
		list.Clear()
		list.AddItem("Loading properties…", "", 0, nil)
		a.propertyIDs = nil
		return
	}
	if len(s.Properties) == 0 {
		list.Clear()
		list.AddItem("No properties", "", 0, nil)
		a.propertyIDs = nil
		return
	}

	if !a.sameProperties(s.Properties, list) {
		list.Clear()
		a.propertyIDs = a.propertyIDs[:0]
		for _, p := range s.Properties {
			list.AddItem(p.Name, "", 0, nil)
			a.propertyIDs = append(a.propertyIDs, p.ID)
		}
	}
	for i, id := range a.propertyIDs {
		if id == s.SelectedID {
			list.SetCurrentItem(i)
			break
		}
	}
}

// sameProperties reports whether the list already shows props in order
func (a *App) sameProperties(props []model.Property, list *tview.List) bool {
	if len(props) != len(a.propertyIDs) || list.GetItemCount() != len(props) {
		return false
	}
	for i, p := range props {
		main, _ := list.GetItemText(i)
		if a.propertyIDs[i] != p.ID || main != p.Name {
			return false
		}
	}
	return true
}

// onPropertyChanged selects the property under the picker cursor
func (a *App) onPropertyChanged(index int) {
	if index < 0 || index >= len(a.propertyIDs) {
		return
	}
	if err := a.controller.SelectProperty(a.ctx, a.propertyIDs[index]); err != nil {
		a.errorHandler.ShowError(a.ctx, err.Error())
	}
	a.render()
}

// renderIntegration fills the import box; it stays empty until a property is selected
func (a *App) renderIntegration() {
	tv, ok := a.views["integration"].(*tview.TextView)
	if !ok {
		return
	}
	s := a.state()
	if s.Selected == nil {
		tv.SetText("")
		return
	}
	switch {
	case !a.canImport():
		tv.SetText(colorTag(a.palette.Sample) + "Import is not configured[-]")
	case a.importing.Load() > 0:
		tv.SetText(colorTag(a.palette.Info) + "Importing messages…[-]")
	default:
		tv.SetText(fmt.Sprintf("Press %s%s[-] to import from %s",
			colorTag(a.palette.Title), a.Keys.Import, a.importProviderName()))
	}
}

func (a *App) importProviderName() string {
	switch a.Config.Import.Provider {
	case "imap":
		return "IMAP"
	default:
		return "Gmail"
	}
}

// renderMessages fills the table with the filtered list
func (a *App) renderMessages() {
	table, ok := a.views["messages"].(*tview.Table)
	if !ok {
		return
	}
	s := a.state()
	table.Clear()

	headerColor := a.palette.Header.Color()
	for col, title := range []string{"Sender", "Date", "Message"} {
		table.SetCell(0, col, tview.NewTableCell(title).
			SetTextColor(headerColor).
			SetSelectable(false))
	}

	title := " 💬 Messages "
	switch {
	case s.Phase != inbox.PhaseReady:
		a.setPlaceholderRow(table, "Loading…")
	case s.Selected == nil:
		a.setPlaceholderRow(table, "Select a property")
	case s.MessagesPhase == inbox.MessagesLoading:
		a.setPlaceholderRow(table, "Loading messages…")
	case len(s.Filtered) == 0:
		a.setPlaceholderRow(table, "No messages found")
	default:
		a.fillMessageRows(table, s)
		title = fmt.Sprintf(" 💬 Messages (%d) ", len(s.Filtered))
		if s.Placeholder {
			title = " 💬 Messages (sample) "
		}
	}
	if strings.TrimSpace(s.Query) != "" {
		title = strings.TrimSuffix(title, " ") + fmt.Sprintf(" · %q ", s.Query)
	}
	table.SetTitle(title)
}

func (a *App) setPlaceholderRow(table *tview.Table, text string) {
	table.SetCell(1, 0, tview.NewTableCell(text).
		SetTextColor(a.palette.Sample.Color()).
		SetSelectable(false))
}

func (a *App) fillMessageRows(table *tview.Table, s *inbox.State) {
	now := time.Now()
	width := a.previewWidth(table)
	selectedRow := -1

	for i, m := range s.Filtered {
		row := i + 1
		color := a.palette.Foreground.Color()
		if m.Source == model.SourceSampleData {
			color = a.palette.Sample.Color()
		}
		table.SetCell(row, 0, tview.NewTableCell(render.FitWidth(m.Sender, senderColumnWidth)).SetTextColor(color))
		table.SetCell(row, 1, tview.NewTableCell(render.FormatDate(m.Timestamp.Time(now))).SetTextColor(color))
		table.SetCell(row, 2, tview.NewTableCell(render.Preview(m.Content, width)).SetTextColor(color).SetExpansion(1))
		if s.IsSelected(m) {
			selectedRow = row
		}
	}

	if selectedRow > 0 {
		table.Select(selectedRow, 0)
		return
	}
	if r, _ := table.GetSelection(); r < 1 || r > len(s.Filtered) {
		table.Select(1, 0)
	}
}

// previewWidth is what remains of the table after the sender and date columns
func (a *App) previewWidth(table *tview.Table) int {
	_, _, w, _ := table.GetInnerRect()
	if rest := w - senderColumnWidth - dateColumnWidth - 2; rest > 10 {
		return rest
	}
	return defaultPreviewWidth
}

// onMessageRow selects the message shown at a table row
func (a *App) onMessageRow(row int) {
	s := a.state()
	if s.MessagesPhase != inbox.MessagesReady {
		return
	}
	idx := row - 1
	if idx < 0 || idx >= len(s.Filtered) {
		return
	}
	a.controller.SelectMessage(s.Filtered[idx])
	a.renderDraft()
}
